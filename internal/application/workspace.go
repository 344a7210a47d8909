package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
	"golang.org/x/sync/errgroup"
)

// SessionBinder receives the active session id published by the SessionController.
type SessionBinder interface {
	Bind(ctx context.Context, sessionID string) error
	Seed(ctx context.Context, sessionID string) error
}

type engine interface {
	Collection() ports.Collection
	Load(ctx context.Context, sessionID string) error
	Subscribe(ctx context.Context, sessionID string) error
	Flush(ctx context.Context) error
	Close() error
	Errors() <-chan error
}

type WorkspaceOptions struct {
	Delegations []domain.Delegation
	// Realtime opens change channels after every bind.
	Realtime bool
	Logger   *slog.Logger
}

// Workspace owns the session scoped engines and rebinds them together.
type Workspace struct {
	Roster      *SyncEngine[domain.RosterEntry]
	Resolutions *SyncEngine[domain.Resolution]
	State       *SyncEngine[domain.SessionState]
	CaucusLog   *SyncEngine[domain.CaucusLogEntry]

	delegations []domain.Delegation
	realtime    bool
	logger      *slog.Logger
}

var _ SessionBinder = (*Workspace)(nil)

func NewWorkspace(backend ports.SyncBackend, opts WorkspaceOptions) *Workspace {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.Delegations) == 0 {
		opts.Delegations = domain.DefaultDelegations
	}
	delegations := opts.Delegations

	return &Workspace{
		Roster: NewSyncEngine(EngineOptions[domain.RosterEntry]{
			Collection: ports.CollectionRoster,
			Backend:    backend,
			Defaults: func(sessionID string) []domain.RosterEntry {
				return domain.NewRoster(sessionID, delegations)
			},
			Less:   rosterLess,
			Logger: opts.Logger,
		}),
		Resolutions: NewSyncEngine(EngineOptions[domain.Resolution]{
			Collection: ports.CollectionResolutions,
			Backend:    backend,
			Less:       resolutionLess,
			Logger:     opts.Logger,
		}),
		State: NewSyncEngine(EngineOptions[domain.SessionState]{
			Collection: ports.CollectionSessionState,
			Backend:    backend,
			Logger:     opts.Logger,
		}),
		CaucusLog: NewSyncEngine(EngineOptions[domain.CaucusLogEntry]{
			Collection: ports.CollectionCaucusLog,
			Backend:    backend,
			Less:       caucusLogLess,
			Logger:     opts.Logger,
		}),
		delegations: delegations,
		realtime:    opts.Realtime,
		logger:      opts.Logger.With("component", "workspace"),
	}
}

func (w *Workspace) engines() []engine {
	return []engine{w.Roster, w.Resolutions, w.State, w.CaucusLog}
}

// Bind settles outstanding writes of the previous session and loads every
// collection for sessionID concurrently.
func (w *Workspace) Bind(ctx context.Context, sessionID string) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, e := range w.engines() {
		e := e
		group.Go(func() error {
			if err := e.Flush(groupCtx); err != nil {
				return fmt.Errorf("flush %s: %w", e.Collection(), err)
			}
			if err := e.Load(groupCtx, sessionID); err != nil {
				return err
			}
			if w.realtime && sessionID != "" {
				return e.Subscribe(groupCtx, sessionID)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("bind session %q: %w", sessionID, err)
	}

	w.logger.Info("session bound", "session_id", sessionID, "realtime", w.realtime)
	return nil
}

// Seed fills a freshly created session with the default roster and an empty
// agenda. Collections that already hold records are left alone.
func (w *Workspace) Seed(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("seed session: %w", domain.ErrNoActiveSession)
	}

	if len(w.Roster.Items()) == 0 {
		for _, entry := range domain.NewRoster(sessionID, w.delegations) {
			entry.ID = ""
			if _, err := w.Roster.Insert(entry); err != nil {
				return fmt.Errorf("seed roster: %w", err)
			}
		}
	}

	if len(w.State.Items()) == 0 {
		if _, err := w.State.Insert(domain.SessionState{SessionID: sessionID}); err != nil {
			return fmt.Errorf("seed session state: %w", err)
		}
	}

	return nil
}

func (w *Workspace) Flush(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, e := range w.engines() {
		e := e
		group.Go(func() error { return e.Flush(groupCtx) })
	}
	return group.Wait()
}

func (w *Workspace) Close() error {
	for _, e := range w.engines() {
		_ = e.Close()
	}
	return nil
}

// DrainErrors collects the persistence failures reported so far.
func (w *Workspace) DrainErrors() []error {
	var out []error
	for _, e := range w.engines() {
		out = append(out, drain(e.Errors())...)
	}
	return out
}

func drain(ch <-chan error) []error {
	var out []error
	for {
		select {
		case err := <-ch:
			out = append(out, err)
		default:
			return out
		}
	}
}

func rosterLess(a, b domain.RosterEntry) bool {
	return a.Country < b.Country
}

func resolutionLess(a, b domain.Resolution) bool {
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	return a.Code < b.Code
}

func caucusLogLess(a, b domain.CaucusLogEntry) bool {
	return a.Timestamp.Before(b.Timestamp)
}
