package application

import (
	"sort"
	"sync"
	"time"
)

// debouncer is a table of scheduled tasks keyed by logical target. Scheduling
// a key that already has a task cancels the older one.
type debouncer struct {
	mu    sync.Mutex
	tasks map[string]*debounceTask
}

type debounceTask struct {
	timer *time.Timer
	fire  func()
}

func newDebouncer() *debouncer {
	return &debouncer{tasks: map[string]*debounceTask{}}
}

func (d *debouncer) schedule(key string, delay time.Duration, fire func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.tasks[key]; ok {
		prev.timer.Stop()
	}

	task := &debounceTask{fire: fire}
	task.timer = time.AfterFunc(delay, func() { d.run(key, task) })
	d.tasks[key] = task
}

func (d *debouncer) run(key string, task *debounceTask) {
	d.mu.Lock()
	if d.tasks[key] != task {
		d.mu.Unlock()
		return
	}
	delete(d.tasks, key)
	d.mu.Unlock()

	task.fire()
}

// flush fires every pending task now, in key order.
func (d *debouncer) flush() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.tasks))
	for key := range d.tasks {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pending := make([]*debounceTask, 0, len(keys))
	for _, key := range keys {
		task := d.tasks[key]
		task.timer.Stop()
		pending = append(pending, task)
	}
	d.tasks = map[string]*debounceTask{}
	d.mu.Unlock()

	for _, task := range pending {
		task.fire()
	}
}

// cancel drops the pending task for key, if any.
func (d *debouncer) cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if task, ok := d.tasks[key]; ok {
		task.timer.Stop()
		delete(d.tasks, key)
	}
}

func (d *debouncer) cancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, task := range d.tasks {
		task.timer.Stop()
		delete(d.tasks, key)
	}
}

func (d *debouncer) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}
