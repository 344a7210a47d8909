package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

type ServiceOptions struct {
	Delegations    []domain.Delegation
	Realtime       bool
	PassphraseHash string
	NameDebounce   time.Duration
	TimerInterval  time.Duration
	TimerConfigs   map[domain.TimerKind]domain.TimerConfig
	NewTicker      ports.TickerFactory
	Cues           ports.CuePlayer
	Clock          ports.Clock
	Logger         *slog.Logger
}

// Service assembles the engines and services of one dashboard process over
// a single SyncBackend.
type Service struct {
	Sessions    *SessionController
	Workspace   *Workspace
	Roster      *RosterService
	Resolutions *ResolutionService
	Voting      *VotingService
	Agenda      *AgendaService
	Caucus      *CaucusEngine
	Speakers    *SpeakersList

	backend  ports.SyncBackend
	sessions *SyncEngine[domain.Session]
	logger   *slog.Logger
}

func NewService(backend ports.SyncBackend, opts ServiceOptions) (*Service, error) {
	if backend == nil {
		return nil, errors.New("sync backend is nil")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}

	workspace := NewWorkspace(backend, WorkspaceOptions{
		Delegations: opts.Delegations,
		Realtime:    opts.Realtime,
		Logger:      opts.Logger,
	})
	sessions := NewSessionsEngine(backend, opts.Logger)

	roster := NewRosterService(workspace.Roster, opts.NameDebounce)
	resolutions := NewResolutionService(workspace.Resolutions)
	agenda := NewAgendaService(workspace.State)

	caucus, err := NewCaucusEngine(workspace.CaucusLog, CaucusEngineOptions{
		Configs:   opts.TimerConfigs,
		Interval:  opts.TimerInterval,
		NewTicker: opts.NewTicker,
		Cues:      opts.Cues,
		Clock:     opts.Clock,
		Logger:    opts.Logger,
	})
	if err != nil {
		_ = workspace.Close()
		_ = sessions.Close()
		return nil, fmt.Errorf("new caucus engine: %w", err)
	}

	speakers, err := NewSpeakersList(roster, SpeakersListOptions{
		Config:    opts.TimerConfigs[domain.TimerSpeaker],
		Interval:  opts.TimerInterval,
		NewTicker: opts.NewTicker,
		Cues:      opts.Cues,
		Logger:    opts.Logger,
	})
	if err != nil {
		caucus.Close()
		_ = workspace.Close()
		_ = sessions.Close()
		return nil, fmt.Errorf("new speakers list: %w", err)
	}

	controller := NewSessionController(sessions, workspace, backend, SessionControllerOptions{
		PassphraseHash: opts.PassphraseHash,
		Agenda:         agenda,
		Clock:          opts.Clock,
		Logger:         opts.Logger,
	})

	return &Service{
		Sessions:    controller,
		Workspace:   workspace,
		Roster:      roster,
		Resolutions: resolutions,
		Voting:      NewVotingService(roster, resolutions),
		Agenda:      agenda,
		Caucus:      caucus,
		Speakers:    speakers,
		backend:     backend,
		sessions:    sessions,
		logger:      opts.Logger,
	}, nil
}

func (s *Service) Mode() ports.BackendMode {
	return s.backend.Mode()
}

// Dashboard collects the current view of the active session.
func (s *Service) Dashboard() Dashboard {
	view := Dashboard{
		Mode:        s.backend.Mode(),
		Stage:       s.Sessions.Stage(),
		Agenda:      s.Agenda.Current(),
		Stats:       s.Roster.Stats(),
		Roster:      s.Roster.Entries(),
		Resolutions: s.Resolutions.List(),
		Caucus:      s.Caucus.Snapshot(),
		Caucuses:    s.Caucus.Caucuses(),
		Replies:     s.Caucus.Replies(),
		Speaker: SpeakerSnapshot{
			Current: s.Speakers.Current(),
			Queue:   s.Speakers.Queue(),
			Timer:   s.Speakers.Timer(),
		},
	}

	if active, ok := s.Sessions.Active(); ok {
		view.Session = &active
	}
	if s.Voting.IsOpen() {
		if r, tally, ok := s.Voting.Current(); ok {
			view.Vote = &VoteSnapshot{Resolution: r, Tally: tally}
		}
	}

	return view
}

// Flush waits until every queued write of every engine has settled.
func (s *Service) Flush(ctx context.Context) error {
	if err := s.Workspace.Flush(ctx); err != nil {
		return err
	}
	return s.sessions.Flush(ctx)
}

// Errors drains the persistence failures reported so far.
func (s *Service) Errors() []error {
	errs := s.Workspace.DrainErrors()
	return append(errs, drain(s.sessions.Errors())...)
}

// Close flushes pending writes, stops every timer and releases the engines.
func (s *Service) Close(ctx context.Context) error {
	s.Caucus.Close()
	s.Speakers.Close()

	flushErr := s.Flush(ctx)
	_ = s.Workspace.Close()
	_ = s.sessions.Close()

	if flushErr != nil {
		return fmt.Errorf("flush pending writes: %w", flushErr)
	}
	return nil
}
