package cacheonly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Subha2009/kamun-software/internal/ports"
)

var errNilCache = errors.New("cache is nil")

// Backend keeps every collection as one JSON array per scope in the cache.
// There is no change feed, so Watch hands back an inert subscription.
type Backend struct {
	cache ports.Cache
}

var _ ports.SyncBackend = (*Backend)(nil)

func New(cache ports.Cache) *Backend {
	backend, err := NewChecked(cache)
	if err != nil {
		panic(err)
	}
	return backend
}

func NewChecked(cache ports.Cache) (*Backend, error) {
	if cache == nil {
		return nil, errNilCache
	}
	return &Backend{cache: cache}, nil
}

func (b *Backend) Mode() ports.BackendMode {
	return ports.ModeCacheOnly
}

func (b *Backend) Load(ctx context.Context, scope ports.Scope) ([]json.RawMessage, error) {
	raw, err := b.cache.Get(ctx, scope.CacheKey())
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", scope.CacheKey(), err)
	}

	return records, nil
}

func (b *Backend) Insert(ctx context.Context, scope ports.Scope, records []json.RawMessage, snapshot []json.RawMessage) ([]json.RawMessage, error) {
	if err := b.Store(ctx, scope, snapshot); err != nil {
		return nil, err
	}
	return records, nil
}

func (b *Backend) Update(ctx context.Context, scope ports.Scope, _ ports.Filter, _ ports.Patch, snapshot []json.RawMessage) error {
	return b.Store(ctx, scope, snapshot)
}

func (b *Backend) Delete(ctx context.Context, scope ports.Scope, _ ports.Filter, snapshot []json.RawMessage) error {
	return b.Store(ctx, scope, snapshot)
}

func (b *Backend) Watch(context.Context, ports.Scope, func(ports.Change)) (ports.Subscription, error) {
	return inertSubscription{}, nil
}

func (b *Backend) Purge(ctx context.Context, sessionID string) error {
	var errs []error
	for _, collection := range ports.SessionScoped {
		scope := ports.Scope{Collection: collection, SessionID: sessionID}
		if err := b.cache.Delete(ctx, scope.CacheKey()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Store rewrites the whole collection for scope.
func (b *Backend) Store(ctx context.Context, scope ports.Scope, snapshot []json.RawMessage) error {
	if snapshot == nil {
		snapshot = []json.RawMessage{}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", scope.Collection, err)
	}

	if err := b.cache.Put(ctx, scope.CacheKey(), string(data)); err != nil {
		return fmt.Errorf("write %s snapshot: %w", scope.Collection, err)
	}

	return nil
}

type inertSubscription struct{}

func (inertSubscription) Close() error {
	return nil
}
