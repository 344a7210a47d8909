package ports

import (
	"context"
	"encoding/json"
)

type BackendMode string

const (
	ModeRemote    BackendMode = "remote"
	ModeCacheOnly BackendMode = "cache_only"
)

// Scope names one collection, optionally narrowed to a session.
type Scope struct {
	Collection Collection
	SessionID  string
}

func (s Scope) CacheKey() string {
	if s.SessionID == "" {
		return "kamun:" + string(s.Collection)
	}
	return "kamun:" + string(s.Collection) + ":" + s.SessionID
}

func (s Scope) Filter() Filter {
	if s.SessionID == "" {
		return Filter{}
	}
	return Filter{"session_id": s.SessionID}
}

// SyncBackend is where a SyncEngine persists. Every write carries the full
// collection snapshot after the change so implementations that can only
// store whole values stay consistent.
type SyncBackend interface {
	Mode() BackendMode
	Load(ctx context.Context, scope Scope) ([]json.RawMessage, error)
	Insert(ctx context.Context, scope Scope, records []json.RawMessage, snapshot []json.RawMessage) ([]json.RawMessage, error)
	Update(ctx context.Context, scope Scope, filter Filter, patch Patch, snapshot []json.RawMessage) error
	Delete(ctx context.Context, scope Scope, filter Filter, snapshot []json.RawMessage) error
	Watch(ctx context.Context, scope Scope, onChange func(Change)) (Subscription, error)
	Purge(ctx context.Context, sessionID string) error
}
