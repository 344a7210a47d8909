package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

type SessionPurger interface {
	Purge(ctx context.Context, sessionID string) error
}

type AgendaClearer interface {
	Clear() error
}

type SessionControllerOptions struct {
	PassphraseHash string
	Agenda         AgendaClearer
	Clock          ports.Clock
	Logger         *slog.Logger
}

// SessionController owns the presentation stage and the active session
// identity. Lifecycle operations are serialized.
type SessionController struct {
	sessions       *SyncEngine[domain.Session]
	binder         SessionBinder
	purger         SessionPurger
	agenda         AgendaClearer
	passphraseHash string
	clock          ports.Clock
	logger         *slog.Logger

	mu       sync.Mutex
	stage    domain.Stage
	activeID string
	unlocked bool
}

func NewSessionController(sessions *SyncEngine[domain.Session], binder SessionBinder, purger SessionPurger, opts SessionControllerOptions) *SessionController {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &SessionController{
		sessions:       sessions,
		binder:         binder,
		purger:         purger,
		agenda:         opts.Agenda,
		passphraseHash: strings.TrimSpace(opts.PassphraseHash),
		clock:          opts.Clock,
		logger:         opts.Logger.With("component", "session"),
		stage:          domain.StageLoading,
	}
}

func NewSessionsEngine(backend ports.SyncBackend, logger *slog.Logger) *SyncEngine[domain.Session] {
	return NewSyncEngine(EngineOptions[domain.Session]{
		Collection: ports.CollectionSessions,
		Backend:    backend,
		Global:     true,
		Less: func(a, b domain.Session) bool {
			return a.CreatedAt.After(b.CreatedAt)
		},
		Logger: logger,
	})
}

func (c *SessionController) Stage() domain.Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Init loads the session list and resolves the first stage.
func (c *SessionController) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.sessions.Load(ctx, ""); err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	if c.passphraseHash != "" && !c.unlocked {
		return c.moveLocked(domain.StageLocked)
	}
	return c.resolveLocked(ctx)
}

func (c *SessionController) Unlock(ctx context.Context, passphrase string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stage != domain.StageLocked {
		return fmt.Errorf("unlock in stage %s: %w", c.stage, domain.ErrInvalidTransition)
	}
	if err := VerifyPassphrase(c.passphraseHash, passphrase); err != nil {
		if errors.Is(err, ErrMalformedPassphraseHash) {
			return &domain.ConfigurationError{Key: "auth.passphrase_hash", Reason: err.Error()}
		}
		return err
	}

	c.unlocked = true
	c.logger.Info("unlocked")
	return c.resolveLocked(ctx)
}

func (c *SessionController) resolveLocked(ctx context.Context) error {
	active, ok := c.activeLocked()
	if !ok {
		if err := c.binder.Bind(ctx, ""); err != nil {
			return err
		}
		c.activeID = ""
		return c.moveLocked(domain.StageNeedsSession)
	}

	if err := c.binder.Bind(ctx, active.ID); err != nil {
		return err
	}
	c.activeID = active.ID
	c.logger.Info("resumed session", "session_id", active.ID, "name", active.Name)
	return c.moveLocked(domain.StageAdmin)
}

// CreateSession deactivates the current session, creates a new active one
// and seeds it with the default roster.
func (c *SessionController) CreateSession(ctx context.Context, name string) (domain.Session, error) {
	session := domain.Session{
		Name:      strings.TrimSpace(name),
		CreatedAt: c.clock.Now(),
		Active:    true,
	}
	if err := session.Validate(); err != nil {
		return domain.Session{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireSessionsLocked("create session"); err != nil {
		return domain.Session{}, err
	}

	c.sessions.Mutate(ports.Filter{"is_active": true}, ports.Patch{"is_active": false})
	created, err := c.sessions.Insert(session)
	if err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}

	if err := c.binder.Bind(ctx, created.ID); err != nil {
		return domain.Session{}, err
	}
	if err := c.binder.Seed(ctx, created.ID); err != nil {
		return domain.Session{}, err
	}

	c.activeID = created.ID
	c.logger.Info("created session", "session_id", created.ID, "name", created.Name)
	return created, c.moveLocked(domain.StageAdmin)
}

func (c *SessionController) SwitchSession(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireSessionsLocked("switch session"); err != nil {
		return err
	}
	if id == c.activeID && id != "" {
		return nil
	}
	if _, ok := c.sessions.Find(id); !ok {
		return fmt.Errorf("switch to session %q: %w", id, domain.ErrSessionNotFound)
	}

	c.sessions.Mutate(ports.Filter{"is_active": true}, ports.Patch{"is_active": false})
	c.sessions.Mutate(ports.Filter{"id": id}, ports.Patch{"is_active": true})

	if err := c.binder.Bind(ctx, id); err != nil {
		return err
	}

	c.activeID = id
	c.logger.Info("switched session", "session_id", id)
	return c.moveLocked(domain.StageAdmin)
}

// EndSession deactivates the active session without deleting it.
func (c *SessionController) EndSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stage == domain.StageNeedsSession {
		return nil
	}
	if err := c.requireSessionsLocked("end session"); err != nil {
		return err
	}

	if c.activeID != "" {
		c.sessions.Mutate(ports.Filter{"id": c.activeID}, ports.Patch{"is_active": false})
	}
	if err := c.binder.Bind(ctx, ""); err != nil {
		return err
	}

	c.logger.Info("ended session", "session_id", c.activeID)
	c.activeID = ""
	return c.moveLocked(domain.StageNeedsSession)
}

// DeleteSession removes the session and everything scoped to it. Deleting
// the active session clears the local identity but keeps the stage.
func (c *SessionController) DeleteSession(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireSessionsLocked("delete session"); err != nil {
		return err
	}
	if _, ok := c.sessions.Find(id); !ok {
		return fmt.Errorf("delete session %q: %w", id, domain.ErrSessionNotFound)
	}

	if id == c.activeID {
		if err := c.binder.Bind(ctx, ""); err != nil {
			return err
		}
		c.activeID = ""
	}

	c.sessions.Remove(id)
	if err := c.purger.Purge(ctx, id); err != nil {
		return fmt.Errorf("purge session %q: %w", id, err)
	}

	c.logger.Info("deleted session", "session_id", id)
	return nil
}

// Advance moves through the presentation stages admin, splash, video, dashboard.
func (c *SessionController) Advance() (domain.Stage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, ok := c.stage.Next()
	if !ok {
		return c.stage, fmt.Errorf("advance from %s: %w", c.stage, domain.ErrInvalidTransition)
	}
	return next, c.moveLocked(next)
}

func (c *SessionController) ResetToAdmin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.moveLocked(domain.StageAdmin); err != nil {
		return err
	}
	if c.agenda != nil && c.activeID != "" {
		if err := c.agenda.Clear(); err != nil {
			return fmt.Errorf("clear agenda: %w", err)
		}
	}
	return nil
}

// Sessions lists known sessions, newest first.
func (c *SessionController) Sessions() []domain.Session {
	items := c.sessions.Items()
	if len(items) > domain.MaxListedSessions {
		items = items[:domain.MaxListedSessions]
	}
	return items
}

func (c *SessionController) Active() (domain.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeID == "" {
		return domain.Session{}, false
	}
	return c.sessions.Find(c.activeID)
}

func (c *SessionController) activeLocked() (domain.Session, bool) {
	active := c.sessions.Filter(ports.Filter{"is_active": true})
	if len(active) == 0 {
		return domain.Session{}, false
	}
	newest := active[0]
	for _, session := range active[1:] {
		if session.CreatedAt.After(newest.CreatedAt) {
			newest = session
		}
	}
	return newest, true
}

func (c *SessionController) requireSessionsLocked(op string) error {
	switch c.stage {
	case domain.StageLoading, domain.StageLocked:
		return fmt.Errorf("%s in stage %s: %w", op, c.stage, domain.ErrInvalidTransition)
	}
	if !c.sessions.Loaded() {
		return fmt.Errorf("%s: sessions are not loaded", op)
	}
	return nil
}

func (c *SessionController) moveLocked(next domain.Stage) error {
	if c.stage != next && !c.stage.CanTransitionTo(next) {
		return fmt.Errorf("move from %s to %s: %w", c.stage, next, domain.ErrInvalidTransition)
	}
	if c.stage != next {
		c.logger.Debug("stage changed", "from", c.stage, "to", next)
	}
	c.stage = next
	return nil
}
