// Package memory implements an in-process RemoteStore. Every Store value is
// one shared "server": engines that point at the same Store see each other's
// writes through their subscriptions, which makes it the multi-client
// backend for tests. The CLI never wires it.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Subha2009/kamun-software/internal/ports"
	"github.com/google/uuid"
)

const (
	OpSelect    = "select"
	OpInsert    = "insert"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpSubscribe = "subscribe"
)

type record = map[string]any

type Store struct {
	mu       sync.Mutex
	tables   map[ports.Collection][]record
	subs     map[int]*subscription
	nextSub  int
	calls    map[string]int
	failures map[string][]error
	now      func() time.Time
}

var _ ports.RemoteStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		tables:   map[ports.Collection][]record{},
		subs:     map[int]*subscription{},
		calls:    map[string]int{},
		failures: map[string][]error{},
		now:      time.Now,
	}
}

// FailNext makes the next call of op return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// Calls reports how many times op was invoked, failed calls included.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Store) Select(ctx context.Context, collection ports.Collection, filter ports.Filter) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpSelect); err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0)
	for _, row := range s.tables[collection] {
		if filter.Matches(row) {
			encoded, err := json.Marshal(row)
			if err != nil {
				return nil, fmt.Errorf("encode %s row: %w", collection, err)
			}
			out = append(out, encoded)
		}
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, collection ports.Collection, records []json.RawMessage) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.begin(OpInsert); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	rows := make([]record, 0, len(records))
	for _, raw := range records {
		row, err := decode(raw)
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("decode %s row: %w", collection, err)
		}
		if id := ports.FormatValue(row["id"]); id == "" {
			row["id"] = uuid.NewString()
		} else if s.indexOf(collection, id) >= 0 {
			s.mu.Unlock()
			return nil, fmt.Errorf("duplicate key %q in %s", id, collection)
		}
		if stamp := ports.FormatValue(row["created_at"]); stamp == "" || stamp == (time.Time{}).Format(time.RFC3339) {
			row["created_at"] = s.now().UTC().Format(time.RFC3339Nano)
		}
		rows = append(rows, row)
	}

	s.tables[collection] = append(s.tables[collection], rows...)
	out, deliveries, err := s.changes(collection, ports.ChangeInsert, rows)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	deliver(deliveries)
	return out, nil
}

func (s *Store) Update(ctx context.Context, collection ports.Collection, filter ports.Filter, patch ports.Patch) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.begin(OpUpdate); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var updated []record
	for _, row := range s.tables[collection] {
		if !filter.Matches(row) {
			continue
		}
		for field, value := range patch {
			row[field] = normalize(value)
		}
		updated = append(updated, row)
	}

	out, deliveries, err := s.changes(collection, ports.ChangeUpdate, updated)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	deliver(deliveries)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, collection ports.Collection, filter ports.Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.begin(OpDelete); err != nil {
		s.mu.Unlock()
		return err
	}

	kept := s.tables[collection][:0]
	var removed []record
	for _, row := range s.tables[collection] {
		if filter.Matches(row) {
			removed = append(removed, row)
			continue
		}
		kept = append(kept, row)
	}
	s.tables[collection] = kept

	_, deliveries, err := s.changes(collection, ports.ChangeDelete, removed)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	deliver(deliveries)
	return nil
}

func (s *Store) Subscribe(ctx context.Context, collection ports.Collection, filter ports.Filter, onChange func(ports.Change)) (ports.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(OpSubscribe); err != nil {
		return nil, err
	}

	s.nextSub++
	sub := &subscription{store: s, id: s.nextSub, collection: collection, filter: filter, onChange: onChange}
	s.subs[sub.id] = sub
	return sub, nil
}

func (s *Store) begin(op string) error {
	s.calls[op]++
	queued := s.failures[op]
	if len(queued) == 0 {
		return nil
	}
	s.failures[op] = queued[1:]
	return queued[0]
}

func (s *Store) indexOf(collection ports.Collection, id string) int {
	for i, row := range s.tables[collection] {
		if ports.FormatValue(row["id"]) == id {
			return i
		}
	}
	return -1
}

type delivery struct {
	sub    *subscription
	change ports.Change
}

func (s *Store) changes(collection ports.Collection, kind ports.ChangeKind, rows []record) ([]json.RawMessage, []delivery, error) {
	out := make([]json.RawMessage, 0, len(rows))
	var deliveries []delivery
	for _, row := range rows {
		encoded, err := json.Marshal(row)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s row: %w", collection, err)
		}
		out = append(out, encoded)

		for _, sub := range s.subs {
			if sub.collection == collection && sub.filter.Matches(row) {
				deliveries = append(deliveries, delivery{
					sub:    sub,
					change: ports.Change{Kind: kind, Collection: collection, Record: encoded},
				})
			}
		}
	}
	return out, deliveries, nil
}

func deliver(deliveries []delivery) {
	for _, d := range deliveries {
		d.sub.dispatch(d.change)
	}
}

type subscription struct {
	store      *Store
	id         int
	collection ports.Collection
	filter     ports.Filter
	onChange   func(ports.Change)

	mu     sync.Mutex
	closed bool
}

func (s *subscription) dispatch(change ports.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.onChange(change)
}

// Close waits for an in-flight callback to return; none start afterwards.
func (s *subscription) Close() error {
	s.store.mu.Lock()
	delete(s.store.subs, s.id)
	s.store.mu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func decode(raw json.RawMessage) (record, error) {
	var row record
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, err
	}
	if row == nil {
		row = record{}
	}
	return row, nil
}

// normalize round-trips a patch value through JSON so stored rows only hold
// JSON shaped values, the same as rows that arrived through Insert.
func normalize(value any) any {
	encoded, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return value
	}
	return out
}
