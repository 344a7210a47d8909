package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/logging"
	"github.com/Subha2009/kamun-software/internal/ports"
	"github.com/google/uuid"
)

var errEngineClosed = errors.New("sync engine is closed")

const (
	writeTimeout   = 30 * time.Second
	errorQueueSize = 32
)

// Origin tells observers whether a change came from this process or from the change channel.
type Origin string

const (
	OriginLoad   Origin = "load"
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

type ChangeEvent struct {
	Collection ports.Collection
	Origin     Origin
	IDs        []string
}

type EngineOptions[T any] struct {
	Collection ports.Collection
	Backend    ports.SyncBackend
	// Defaults seeds a session whose collection has never been stored.
	Defaults func(sessionID string) []T
	Less     func(a, b T) bool
	// Global marks a collection that is not narrowed by session id.
	Global bool
	NewID  func() string
	Logger *slog.Logger
}

// SyncEngine keeps one collection in memory and persists it through a
// SyncBackend. Mutations apply to memory immediately; persistence runs on a
// per-engine queue, and failures are reported on Errors instead of being
// returned.
type SyncEngine[T any] struct {
	collection ports.Collection
	backend    ports.SyncBackend
	defaults   func(string) []T
	less       func(a, b T) bool
	global     bool
	newID      func() string
	logger     *slog.Logger

	mu           sync.Mutex
	scope        ports.Scope
	bound        bool
	loaded       bool
	closed       bool
	generation   uint64
	items        []T
	tombstones   map[string]struct{}
	sub          ports.Subscription
	observers    map[int]func(ChangeEvent)
	nextObserver int

	debounce *debouncer
	queue    *writeQueue
	errs     chan error
}

func NewSyncEngine[T any](opts EngineOptions[T]) *SyncEngine[T] {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &SyncEngine[T]{
		collection: opts.Collection,
		backend:    opts.Backend,
		defaults:   opts.Defaults,
		less:       opts.Less,
		global:     opts.Global,
		newID:      opts.NewID,
		logger:     opts.Logger.With("component", "sync", "collection", opts.Collection),
		scope:      ports.Scope{Collection: opts.Collection},
		tombstones: map[string]struct{}{},
		observers:  map[int]func(ChangeEvent){},
		debounce:   newDebouncer(),
		queue:      newWriteQueue(),
		errs:       make(chan error, errorQueueSize),
	}
}

func NewSyncEngineChecked[T any](opts EngineOptions[T]) (*SyncEngine[T], error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("new %s engine: backend is nil", opts.Collection)
	}
	if opts.Collection == "" {
		return nil, errors.New("new sync engine: collection is required")
	}

	return NewSyncEngine(opts), nil
}

func (e *SyncEngine[T]) Collection() ports.Collection {
	return e.collection
}

func (e *SyncEngine[T]) Mode() ports.BackendMode {
	return e.backend.Mode()
}

// Load binds the engine to sessionID and replaces the collection. An empty
// session id clears a session scoped collection. Backend failures fall back
// to the defaults and are reported on Errors.
func (e *SyncEngine[T]) Load(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return errEngineClosed
	}
	e.generation++
	gen := e.generation
	e.debounce.cancelAll()
	sub := e.sub
	e.sub = nil
	e.tombstones = map[string]struct{}{}
	e.items = nil
	e.loaded = false

	if e.global {
		sessionID = ""
	}
	e.scope = ports.Scope{Collection: e.collection, SessionID: sessionID}
	e.bound = e.global || sessionID != ""
	scope := e.scope
	bound := e.bound
	e.mu.Unlock()

	closeSubscription(sub, e.logger)

	if !bound {
		e.notify(ChangeEvent{Collection: e.collection, Origin: OriginLoad})
		return nil
	}

	items, seeded, err := e.fetch(ctx, scope)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return nil
	}
	e.items = items
	e.sortLocked()
	e.loaded = true
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	if seeded && len(items) > 0 && e.backend.Mode() == ports.ModeCacheOnly {
		e.enqueue("seed", func(ctx context.Context) error {
			_, err := e.backend.Insert(ctx, scope, snapshot, snapshot)
			return err
		})
	}

	e.logger.Debug("collection loaded", "session_id", sessionID, "items", len(items), "seeded", seeded)
	e.notify(ChangeEvent{Collection: e.collection, Origin: OriginLoad})
	return nil
}

func (e *SyncEngine[T]) fetch(ctx context.Context, scope ports.Scope) ([]T, bool, error) {
	records, err := e.backend.Load(ctx, scope)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, fmt.Errorf("load %s: %w", e.collection, ctxErr)
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			e.report(fmt.Errorf("load %s: %w", e.collection, err))
		}
		return e.seed(scope.SessionID), true, nil
	}

	items := make([]T, 0, len(records))
	for _, raw := range records {
		item, err := decodeRecord[T](raw)
		if err != nil {
			e.report(fmt.Errorf("decode %s record: %w", e.collection, err))
			continue
		}
		items = append(items, item)
	}
	return items, false, nil
}

func (e *SyncEngine[T]) seed(sessionID string) []T {
	if e.defaults == nil {
		return nil
	}
	return e.defaults(sessionID)
}

func (e *SyncEngine[T]) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

func (e *SyncEngine[T]) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scope.SessionID
}

// Items returns a copy of the collection in display order.
func (e *SyncEngine[T]) Items() []T {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]T, len(e.items))
	copy(out, e.items)
	return out
}

func (e *SyncEngine[T]) Find(id string) (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx := e.indexLocked(id); idx >= 0 {
		return e.items[idx], true
	}
	var zero T
	return zero, false
}

// Filter returns the items matching filter.
func (e *SyncEngine[T]) Filter(filter ports.Filter) []T {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []T
	for _, item := range e.items {
		doc, err := encodeDoc(item)
		if err == nil && filter.Matches(doc) {
			out = append(out, item)
		}
	}
	return out
}

// Mutate patches every item matching filter and queues the write. It
// returns the number of items changed; zero means nothing was persisted.
func (e *SyncEngine[T]) Mutate(filter ports.Filter, patch ports.Patch) int {
	e.mu.Lock()
	if !e.bound || e.closed {
		e.mu.Unlock()
		return 0
	}
	ids := e.applyLocked(filter, patch)
	if len(ids) == 0 {
		e.mu.Unlock()
		return 0
	}
	scope := e.scope
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	for field := range patch {
		e.debounce.cancel(e.debounceKey(filter, field))
	}
	e.enqueue("update", func(ctx context.Context) error {
		return e.backend.Update(ctx, scope, filter, patch, snapshot)
	})
	e.notify(ChangeEvent{Collection: e.collection, Origin: OriginLocal, IDs: ids})
	return len(ids)
}

// DebouncedMutate applies the change now and persists only the last value
// written to the same filter and field within delay. The write carries the
// field's value at the time it fires, so a later Mutate is never undone.
func (e *SyncEngine[T]) DebouncedMutate(filter ports.Filter, field string, value any, delay time.Duration) int {
	e.mu.Lock()
	if !e.bound || e.closed {
		e.mu.Unlock()
		return 0
	}
	ids := e.applyLocked(filter, ports.Patch{field: value})
	if len(ids) == 0 {
		e.mu.Unlock()
		return 0
	}
	gen := e.generation
	scope := e.scope
	e.mu.Unlock()

	e.debounce.schedule(e.debounceKey(filter, field), delay, func() {
		e.mu.Lock()
		if gen != e.generation {
			e.mu.Unlock()
			return
		}
		current, ok := e.fieldLocked(filter, field)
		if !ok {
			e.mu.Unlock()
			return
		}
		patch := ports.Patch{field: current}
		snapshot := e.snapshotLocked()
		e.mu.Unlock()

		e.enqueue("update", func(ctx context.Context) error {
			return e.backend.Update(ctx, scope, filter, patch, snapshot)
		})
	})

	e.notify(ChangeEvent{Collection: e.collection, Origin: OriginLocal, IDs: ids})
	return len(ids)
}

// Insert appends item, assigning an id when it has none. The record the
// backend returns replaces the placeholder once the write settles.
func (e *SyncEngine[T]) Insert(item T) (T, error) {
	var zero T

	doc, err := encodeDoc(item)
	if err != nil {
		return zero, fmt.Errorf("encode %s record: %w", e.collection, err)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return zero, errEngineClosed
	}
	if !e.bound {
		e.mu.Unlock()
		return zero, fmt.Errorf("insert into %s: %w", e.collection, domain.ErrNoActiveSession)
	}

	id := ports.FormatValue(doc["id"])
	if id == "" {
		id = e.newID()
		doc["id"] = id
	}
	if !e.global {
		doc["session_id"] = e.scope.SessionID
	}
	item, err = decodeDoc[T](doc)
	if err != nil {
		e.mu.Unlock()
		return zero, fmt.Errorf("decode %s record: %w", e.collection, err)
	}
	if e.indexLocked(id) >= 0 {
		e.mu.Unlock()
		return zero, fmt.Errorf("insert into %s: duplicate id %q", e.collection, id)
	}

	delete(e.tombstones, id)
	e.items = append(e.items, item)
	e.sortLocked()
	gen := e.generation
	scope := e.scope
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	raw, err := json.Marshal(item)
	if err != nil {
		return zero, fmt.Errorf("encode %s record: %w", e.collection, err)
	}

	e.enqueue("insert", func(ctx context.Context) error {
		stored, err := e.backend.Insert(ctx, scope, []json.RawMessage{raw}, snapshot)
		if err != nil {
			return err
		}
		for _, record := range stored {
			e.replace(gen, record)
		}
		return nil
	})
	e.notify(ChangeEvent{Collection: e.collection, Origin: OriginLocal, IDs: []string{id}})
	return item, nil
}

func (e *SyncEngine[T]) Remove(id string) bool {
	return e.RemoveWhere(ports.Filter{"id": id}) > 0
}

// RemoveWhere deletes every item matching filter and returns how many went.
func (e *SyncEngine[T]) RemoveWhere(filter ports.Filter) int {
	e.mu.Lock()
	if !e.bound || e.closed {
		e.mu.Unlock()
		return 0
	}

	kept := e.items[:0:0]
	var ids []string
	for _, item := range e.items {
		doc, err := encodeDoc(item)
		if err != nil || !filter.Matches(doc) {
			kept = append(kept, item)
			continue
		}
		id := ports.FormatValue(doc["id"])
		e.tombstones[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		e.mu.Unlock()
		return 0
	}
	e.items = kept
	scope := e.scope
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.enqueue("delete", func(ctx context.Context) error {
		return e.backend.Delete(ctx, scope, filter, snapshot)
	})
	e.notify(ChangeEvent{Collection: e.collection, Origin: OriginLocal, IDs: ids})
	return len(ids)
}

// Subscribe opens the change channel for the session the engine is bound
// to. Failures are reported on Errors; the engine keeps working locally.
func (e *SyncEngine[T]) Subscribe(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return errEngineClosed
	}
	if e.global {
		sessionID = ""
	}
	if !e.bound || e.scope.SessionID != sessionID {
		e.mu.Unlock()
		return fmt.Errorf("subscribe %s to session %q: engine is bound to %q", e.collection, sessionID, e.scope.SessionID)
	}
	prev := e.sub
	e.sub = nil
	gen := e.generation
	scope := e.scope
	e.mu.Unlock()

	closeSubscription(prev, e.logger)

	sub, err := e.backend.Watch(ctx, scope, func(change ports.Change) {
		e.apply(gen, change)
	})
	if err != nil {
		e.report(fmt.Errorf("subscribe %s: %w", e.collection, err))
		return nil
	}

	e.mu.Lock()
	if gen != e.generation || e.closed {
		e.mu.Unlock()
		closeSubscription(sub, e.logger)
		return nil
	}
	e.sub = sub
	e.mu.Unlock()
	return nil
}

// Flush fires pending debounced writes and waits for the queue to drain.
func (e *SyncEngine[T]) Flush(ctx context.Context) error {
	e.debounce.flush()
	return e.queue.wait(ctx)
}

// Close releases the subscription and drops pending debounces. Writes
// already queued still run before Close returns.
func (e *SyncEngine[T]) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.generation++
	sub := e.sub
	e.sub = nil
	e.observers = map[int]func(ChangeEvent){}
	e.mu.Unlock()

	e.debounce.cancelAll()
	closeSubscription(sub, e.logger)
	e.queue.close()
	return nil
}

// Errors delivers persistence failures. Nothing blocks on it; failures are
// dropped when the buffer is full and nobody is reading.
func (e *SyncEngine[T]) Errors() <-chan error {
	return e.errs
}

// Observe registers fn for every change to the collection. The returned
// function removes it.
func (e *SyncEngine[T]) Observe(fn func(ChangeEvent)) func() {
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

func (e *SyncEngine[T]) apply(gen uint64, change ports.Change) {
	doc, err := decodeRaw(change.Record)
	if err != nil {
		e.logger.Warn("drop malformed change", "kind", change.Kind, "error", err)
		return
	}
	id := ports.FormatValue(doc["id"])
	if id == "" {
		return
	}

	e.mu.Lock()
	if gen != e.generation || e.closed {
		e.mu.Unlock()
		return
	}
	if sid, ok := doc["session_id"]; ok && !e.global && ports.FormatValue(sid) != e.scope.SessionID {
		e.mu.Unlock()
		return
	}

	switch change.Kind {
	case ports.ChangeInsert, ports.ChangeUpdate:
		if _, gone := e.tombstones[id]; gone {
			e.mu.Unlock()
			return
		}
		item, err := decodeDoc[T](doc)
		if err != nil {
			e.mu.Unlock()
			e.logger.Warn("drop undecodable change", "kind", change.Kind, "id", id, "error", err)
			return
		}
		if idx := e.indexLocked(id); idx >= 0 {
			e.items[idx] = item
		} else {
			e.items = append(e.items, item)
		}
		e.sortLocked()
	case ports.ChangeDelete:
		e.tombstones[id] = struct{}{}
		if idx := e.indexLocked(id); idx >= 0 {
			e.items = append(e.items[:idx:idx], e.items[idx+1:]...)
		}
	default:
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	e.notify(ChangeEvent{Collection: e.collection, Origin: OriginRemote, IDs: []string{id}})
}

func (e *SyncEngine[T]) replace(gen uint64, raw json.RawMessage) {
	item, err := decodeRecord[T](raw)
	if err != nil {
		e.logger.Warn("drop undecodable stored record", "error", err)
		return
	}
	doc, err := encodeDoc(item)
	if err != nil {
		return
	}
	id := ports.FormatValue(doc["id"])

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return
	}
	if current, err := json.Marshal(e.items[idx]); err == nil {
		if next, err := json.Marshal(item); err == nil && bytes.Equal(current, next) {
			e.mu.Unlock()
			return
		}
	}
	e.items[idx] = item
	e.sortLocked()
	e.mu.Unlock()

	e.notify(ChangeEvent{Collection: e.collection, Origin: OriginLocal, IDs: []string{id}})
}

func (e *SyncEngine[T]) applyLocked(filter ports.Filter, patch ports.Patch) []string {
	var ids []string
	for i, item := range e.items {
		doc, err := encodeDoc(item)
		if err != nil || !filter.Matches(doc) {
			continue
		}
		for field, value := range patch {
			doc[field] = value
		}
		updated, err := decodeDoc[T](doc)
		if err != nil {
			e.logger.Warn("skip unpatchable record", "id", doc["id"], "error", err)
			continue
		}
		e.items[i] = updated
		ids = append(ids, ports.FormatValue(doc["id"]))
	}
	if len(ids) > 0 {
		e.sortLocked()
	}
	return ids
}

func (e *SyncEngine[T]) enqueue(op string, job func(ctx context.Context) error) {
	ok := e.queue.push(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		ctx = logging.ContextWithLogger(ctx, e.logger)

		if err := job(ctx); err != nil {
			e.report(fmt.Errorf("%s %s: %w", op, e.collection, err))
		}
	})
	if !ok {
		e.logger.Debug("write dropped after close", "op", op)
	}
}

func (e *SyncEngine[T]) report(err error) {
	e.logger.Warn("persistence failed", "error", err)
	select {
	case e.errs <- err:
	default:
	}
}

func (e *SyncEngine[T]) notify(event ChangeEvent) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(e.observers))
	for id := range e.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(ChangeEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, e.observers[id])
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (e *SyncEngine[T]) debounceKey(filter ports.Filter, field string) string {
	return string(e.collection) + "|" + filter.Key() + "|" + field
}

// fieldLocked reads field from the first item matching filter.
func (e *SyncEngine[T]) fieldLocked(filter ports.Filter, field string) (any, bool) {
	for _, item := range e.items {
		doc, err := encodeDoc(item)
		if err != nil || !filter.Matches(doc) {
			continue
		}
		value, ok := doc[field]
		return value, ok
	}
	return nil, false
}

func (e *SyncEngine[T]) indexLocked(id string) int {
	for i, item := range e.items {
		doc, err := encodeDoc(item)
		if err == nil && ports.FormatValue(doc["id"]) == id {
			return i
		}
	}
	return -1
}

func (e *SyncEngine[T]) sortLocked() {
	if e.less == nil {
		return
	}
	sort.SliceStable(e.items, func(i, j int) bool {
		return e.less(e.items[i], e.items[j])
	})
}

func (e *SyncEngine[T]) snapshotLocked() []json.RawMessage {
	out := make([]json.RawMessage, 0, len(e.items))
	for _, item := range e.items {
		raw, err := json.Marshal(item)
		if err != nil {
			e.logger.Warn("skip unencodable record in snapshot", "error", err)
			continue
		}
		out = append(out, raw)
	}
	return out
}

func closeSubscription(sub ports.Subscription, logger *slog.Logger) {
	if sub == nil {
		return
	}
	if err := sub.Close(); err != nil {
		logger.Debug("close subscription", "error", err)
	}
}

func encodeDoc(item any) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	return decodeRaw(raw)
}

func decodeRaw(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("record is null")
	}
	return doc, nil
}

func decodeDoc[T any](doc map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(doc)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

func decodeRecord[T any](raw json.RawMessage) (T, error) {
	var out T
	err := json.Unmarshal(raw, &out)
	return out, err
}
