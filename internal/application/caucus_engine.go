package application

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

var caucusKinds = []domain.TimerKind{domain.TimerModerated, domain.TimerUnmoderated, domain.TimerReply}

type CaucusEngineOptions struct {
	Configs   map[domain.TimerKind]domain.TimerConfig
	Interval  time.Duration
	NewTicker ports.TickerFactory
	Cues      ports.CuePlayer
	Clock     ports.Clock
	Logger    *slog.Logger
}

type CaucusSnapshot struct {
	Timers      map[domain.TimerKind]domain.TimerState
	Topic       string
	ReplyTarget string
}

// CaucusEngine runs the moderated, unmoderated and right of reply timers and
// appends a log record for every start.
type CaucusEngine struct {
	log     *SyncEngine[domain.CaucusLogEntry]
	drivers map[domain.TimerKind]*timerDriver
	clock   ports.Clock
	logger  *slog.Logger

	mu           sync.Mutex
	topic        string
	replyTarget  string
	observers    map[int]func(domain.TimerKind, TimerUpdate)
	nextObserver int
}

func NewCaucusEngine(log *SyncEngine[domain.CaucusLogEntry], opts CaucusEngineOptions) (*CaucusEngine, error) {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &CaucusEngine{
		log:       log,
		drivers:   map[domain.TimerKind]*timerDriver{},
		clock:     opts.Clock,
		logger:    opts.Logger.With("component", "caucus"),
		observers: map[int]func(domain.TimerKind, TimerUpdate){},
	}

	for _, kind := range caucusKinds {
		cfg, ok := opts.Configs[kind]
		if !ok {
			cfg = domain.DefaultTimerConfig(kind)
		}
		timer, err := domain.NewTimer(kind, cfg)
		if err != nil {
			return nil, fmt.Errorf("new %s timer: %w", kind, err)
		}
		kind := kind
		e.drivers[kind] = newTimerDriver(timer, opts.NewTicker, opts.Interval, opts.Cues, e.logger.With("timer", kind), func(update TimerUpdate) {
			e.notify(kind, update)
		})
	}

	return e, nil
}

func (e *CaucusEngine) driver(kind domain.TimerKind) (*timerDriver, error) {
	d, ok := e.drivers[kind]
	if !ok {
		return nil, fmt.Errorf("caucus timer %q: %w", kind, domain.ErrInvalidTransition)
	}
	return d, nil
}

func (e *CaucusEngine) SetTopic(topic string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.topic = strings.TrimSpace(topic)
}

func (e *CaucusEngine) SetReplyTarget(country string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replyTarget = strings.TrimSpace(country)
}

// Start runs the timer and logs the start. A right of reply needs a target country.
func (e *CaucusEngine) Start(kind domain.TimerKind) error {
	d, err := e.driver(kind)
	if err != nil {
		return err
	}

	e.mu.Lock()
	topic, target := e.topic, e.replyTarget
	e.mu.Unlock()

	if kind == domain.TimerReply && target == "" {
		return domain.Required("country")
	}

	state, err := d.start()
	if err != nil {
		return err
	}

	entry := domain.CaucusLogEntry{Timestamp: e.clock.Now()}
	switch kind {
	case domain.TimerModerated:
		entry.Kind = domain.LogKindCaucus
		entry.Topic = topic
		entry.Duration = state.Total
		entry.CaucusType = domain.CaucusModerated
	case domain.TimerUnmoderated:
		entry.Kind = domain.LogKindCaucus
		entry.Topic = domain.UnmoderatedCaucusTopic
		entry.Duration = state.Total
		entry.CaucusType = domain.CaucusUnmoderated
	case domain.TimerReply:
		entry.Kind = domain.LogKindReply
		entry.Country = target
	}

	if _, err := e.log.Insert(entry); err != nil {
		e.logger.Warn("caucus start not logged", "timer", kind, "error", err)
	}
	return nil
}

func (e *CaucusEngine) Pause(kind domain.TimerKind) error {
	d, err := e.driver(kind)
	if err != nil {
		return err
	}
	return d.pause()
}

// Reset stops the timer and restores the configured durations.
func (e *CaucusEngine) Reset(kind domain.TimerKind) error {
	d, err := e.driver(kind)
	if err != nil {
		return err
	}
	d.reset()
	return nil
}

// Configure changes the durations of an idle or paused timer and resets it.
func (e *CaucusEngine) Configure(kind domain.TimerKind, cfg domain.TimerConfig) error {
	d, err := e.driver(kind)
	if err != nil {
		return err
	}
	return d.configure(cfg)
}

func (e *CaucusEngine) NextSpeaker() error {
	return e.drivers[domain.TimerModerated].nextSpeaker()
}

func (e *CaucusEngine) State(kind domain.TimerKind) (domain.TimerState, error) {
	d, err := e.driver(kind)
	if err != nil {
		return domain.TimerState{}, err
	}
	return d.state(), nil
}

func (e *CaucusEngine) Snapshot() CaucusSnapshot {
	timers := make(map[domain.TimerKind]domain.TimerState, len(e.drivers))
	for kind, d := range e.drivers {
		timers[kind] = d.state()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return CaucusSnapshot{Timers: timers, Topic: e.topic, ReplyTarget: e.replyTarget}
}

// Observe registers fn for every timer update. Updates arrive on the ticker
// goroutines. The returned function removes fn.
func (e *CaucusEngine) Observe(fn func(domain.TimerKind, TimerUpdate)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextObserver
	e.nextObserver++
	e.observers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}
}

func (e *CaucusEngine) notify(kind domain.TimerKind, update TimerUpdate) {
	e.mu.Lock()
	ids := make([]int, 0, len(e.observers))
	for id := range e.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(domain.TimerKind, TimerUpdate), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, e.observers[id])
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(kind, update)
	}
}

func (e *CaucusEngine) Caucuses() []domain.CaucusLogEntry {
	return e.log.Filter(ports.Filter{"kind": domain.LogKindCaucus})
}

func (e *CaucusEngine) Replies() []domain.CaucusLogEntry {
	return e.log.Filter(ports.Filter{"kind": domain.LogKindReply})
}

func (e *CaucusEngine) ClearCaucuses() int {
	return e.log.RemoveWhere(ports.Filter{"kind": domain.LogKindCaucus})
}

func (e *CaucusEngine) ClearReplies() int {
	return e.log.RemoveWhere(ports.Filter{"kind": domain.LogKindReply})
}

// Close stops every running timer.
func (e *CaucusEngine) Close() {
	for _, d := range e.drivers {
		d.close()
	}
}
