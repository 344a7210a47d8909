package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Subha2009/kamun-software/internal/adapters/backend/cacheonly"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

var (
	errNilRemoteStore = errors.New("remote store is nil")
	errNilMirror      = errors.New("cache mirror is nil")
)

// Backend writes through to the remote store and mirrors every snapshot into
// the local cache, which also serves loads while the remote is unreachable.
type Backend struct {
	remote ports.RemoteStore
	mirror *cacheonly.Backend
	logger *slog.Logger
}

var _ ports.SyncBackend = (*Backend)(nil)

func New(remote ports.RemoteStore, mirror *cacheonly.Backend, logger *slog.Logger) *Backend {
	backend, err := NewChecked(remote, mirror, logger)
	if err != nil {
		panic(err)
	}
	return backend
}

func NewChecked(remote ports.RemoteStore, mirror *cacheonly.Backend, logger *slog.Logger) (*Backend, error) {
	if remote == nil {
		return nil, errNilRemoteStore
	}
	if mirror == nil {
		return nil, errNilMirror
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Backend{remote: remote, mirror: mirror, logger: logger.With("component", "remote_backend")}, nil
}

func (b *Backend) Mode() ports.BackendMode {
	return ports.ModeRemote
}

func (b *Backend) Load(ctx context.Context, scope ports.Scope) ([]json.RawMessage, error) {
	records, err := b.remote.Select(ctx, scope.Collection, scope.Filter())
	if err == nil {
		b.refreshMirror(ctx, scope, records)
		return records, nil
	}
	if shouldSkipFallback(err) {
		return nil, err
	}

	b.logger.Warn("remote load failed, using cache", "collection", scope.Collection, "session_id", scope.SessionID, "error", err)

	cached, cacheErr := b.mirror.Load(ctx, scope)
	if cacheErr == nil {
		return cached, nil
	}

	return nil, fmt.Errorf("remote load failed: %w; cache load failed: %w", err, cacheErr)
}

func (b *Backend) Insert(ctx context.Context, scope ports.Scope, records []json.RawMessage, snapshot []json.RawMessage) ([]json.RawMessage, error) {
	b.refreshMirror(ctx, scope, snapshot)

	stored, err := b.remote.Insert(ctx, scope.Collection, records)
	if err != nil {
		return nil, &domain.RemoteWriteError{Collection: string(scope.Collection), Op: "insert", Err: err}
	}

	return stored, nil
}

func (b *Backend) Update(ctx context.Context, scope ports.Scope, filter ports.Filter, patch ports.Patch, snapshot []json.RawMessage) error {
	b.refreshMirror(ctx, scope, snapshot)

	if _, err := b.remote.Update(ctx, scope.Collection, scopedFilter(scope, filter), patch); err != nil {
		return &domain.RemoteWriteError{Collection: string(scope.Collection), Op: "update", Err: err}
	}

	return nil
}

func (b *Backend) Delete(ctx context.Context, scope ports.Scope, filter ports.Filter, snapshot []json.RawMessage) error {
	b.refreshMirror(ctx, scope, snapshot)

	if err := b.remote.Delete(ctx, scope.Collection, scopedFilter(scope, filter)); err != nil {
		return &domain.RemoteWriteError{Collection: string(scope.Collection), Op: "delete", Err: err}
	}

	return nil
}

func (b *Backend) Watch(ctx context.Context, scope ports.Scope, onChange func(ports.Change)) (ports.Subscription, error) {
	sub, err := b.remote.Subscribe(ctx, scope.Collection, scope.Filter(), onChange)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", scope.Collection, err)
	}
	return sub, nil
}

// Purge removes every session scoped row. Backends with cascading foreign
// keys make the remote deletes redundant but harmless.
func (b *Backend) Purge(ctx context.Context, sessionID string) error {
	var errs []error
	for _, collection := range ports.SessionScoped {
		if err := b.remote.Delete(ctx, collection, ports.Filter{"session_id": sessionID}); err != nil {
			errs = append(errs, &domain.RemoteWriteError{Collection: string(collection), Op: "delete", Err: err})
		}
	}
	if err := b.mirror.Purge(ctx, sessionID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *Backend) refreshMirror(ctx context.Context, scope ports.Scope, snapshot []json.RawMessage) {
	if err := b.mirror.Store(ctx, scope, snapshot); err != nil {
		b.logger.Warn("cache mirror write failed", "collection", scope.Collection, "error", err)
	}
}

func scopedFilter(scope ports.Scope, filter ports.Filter) ports.Filter {
	out := scope.Filter()
	for field, value := range filter {
		out[field] = value
	}
	return out
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
