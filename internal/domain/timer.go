package domain

import (
	"fmt"
	"strings"
)

type TimerKind string

const (
	TimerModerated   TimerKind = "moderated"
	TimerUnmoderated TimerKind = "unmoderated"
	TimerReply       TimerKind = "reply"
	TimerSpeaker     TimerKind = "speaker"
)

func ParseTimerKind(raw string) (TimerKind, error) {
	switch TimerKind(strings.ToLower(strings.TrimSpace(raw))) {
	case TimerModerated, "mod":
		return TimerModerated, nil
	case TimerUnmoderated, "unmod":
		return TimerUnmoderated, nil
	case TimerReply, "ror", "right-of-reply":
		return TimerReply, nil
	case TimerSpeaker, "gsl":
		return TimerSpeaker, nil
	}

	return "", fmt.Errorf("unknown timer %q", raw)
}

type TimerPhase string

const (
	PhaseIdle    TimerPhase = "idle"
	PhaseRunning TimerPhase = "running"
	PhasePaused  TimerPhase = "paused"
	PhaseExpired TimerPhase = "expired"
)

type TimerEvent string

const (
	EventWarning         TimerEvent = "warning"
	EventExpired         TimerEvent = "expired"
	EventSpeakerRollover TimerEvent = "speaker_rollover"
)

// TimerConfig durations are in seconds. WarnAt zero means no warning cue.
type TimerConfig struct {
	Total   int
	Speaker int
	WarnAt  int
}

// KeepWarning as TimerConfig.WarnAt tells Configure to keep the current threshold.
const KeepWarning = -1

func DefaultTimerConfig(kind TimerKind) TimerConfig {
	switch kind {
	case TimerModerated:
		return TimerConfig{Total: 600, Speaker: 60, WarnAt: 30}
	case TimerUnmoderated:
		return TimerConfig{Total: 300, WarnAt: 30}
	case TimerReply:
		return TimerConfig{Total: 60, WarnAt: 10}
	default:
		return TimerConfig{Total: 90, WarnAt: 10}
	}
}

type TimerState struct {
	Kind             TimerKind
	Phase            TimerPhase
	Total            int
	Remaining        int
	SpeakerTotal     int
	SpeakerRemaining int
}

func (s TimerState) Running() bool {
	return s.Phase == PhaseRunning
}

// Timer is a countdown in whole seconds. The warning and expiry events are
// produced only on the tick that crosses into them, so callers can map events
// to cues without guards of their own.
type Timer struct {
	kind             TimerKind
	cfg              TimerConfig
	remaining        int
	speakerRemaining int
	phase            TimerPhase
	warned           bool
}

func NewTimer(kind TimerKind, cfg TimerConfig) (*Timer, error) {
	if err := validateTimerConfig(kind, cfg); err != nil {
		return nil, err
	}

	t := &Timer{kind: kind, cfg: cfg}
	t.Reset()
	return t, nil
}

func validateTimerConfig(kind TimerKind, cfg TimerConfig) error {
	v := NewValidationError()
	if cfg.Total <= 0 {
		v.Add("total", "must be positive")
	}
	if cfg.WarnAt < 0 {
		v.Add("warn_at", "must not be negative")
	}
	if kind == TimerModerated {
		if cfg.Speaker <= 0 {
			v.Add("speaker", "must be positive")
		} else if cfg.Speaker > cfg.Total {
			v.Add("speaker", "must not exceed the total")
		}
	}
	return v.Err()
}

func (t *Timer) State() TimerState {
	state := TimerState{
		Kind:      t.kind,
		Phase:     t.phase,
		Total:     t.cfg.Total,
		Remaining: t.remaining,
	}
	if t.kind == TimerModerated {
		state.SpeakerTotal = t.cfg.Speaker
		state.SpeakerRemaining = t.speakerRemaining
	}
	return state
}

func (t *Timer) Start() error {
	switch t.phase {
	case PhaseRunning:
		return fmt.Errorf("start %s timer: already running: %w", t.kind, ErrInvalidTransition)
	case PhaseExpired:
		return fmt.Errorf("start %s timer: %w", t.kind, ErrTimerExpired)
	}
	if t.remaining <= 0 {
		return fmt.Errorf("start %s timer: %w", t.kind, ErrTimerExpired)
	}

	t.phase = PhaseRunning
	return nil
}

func (t *Timer) Pause() error {
	if t.phase != PhaseRunning {
		return fmt.Errorf("pause %s timer in phase %s: %w", t.kind, t.phase, ErrInvalidTransition)
	}

	t.phase = PhasePaused
	return nil
}

// Reset returns the timer to idle with the configured durations and re-arms the warning.
func (t *Timer) Reset() {
	t.phase = PhaseIdle
	t.remaining = t.cfg.Total
	t.speakerRemaining = t.cfg.Speaker
	t.warned = false
}

func (t *Timer) Configure(cfg TimerConfig) error {
	if t.phase == PhaseRunning {
		return fmt.Errorf("configure %s timer: %w", t.kind, ErrTimerRunning)
	}
	if cfg.WarnAt == KeepWarning {
		cfg.WarnAt = t.cfg.WarnAt
	}
	if t.kind == TimerModerated && cfg.Speaker == 0 {
		cfg.Speaker = t.cfg.Speaker
	}
	if err := validateTimerConfig(t.kind, cfg); err != nil {
		return err
	}

	t.cfg = cfg
	t.Reset()
	return nil
}

// NextSpeaker restarts the per-speaker countdown without touching the total.
func (t *Timer) NextSpeaker() error {
	if t.kind != TimerModerated {
		return fmt.Errorf("next speaker on %s timer: %w", t.kind, ErrInvalidTransition)
	}

	t.speakerRemaining = t.cfg.Speaker
	return nil
}

// Tick advances a running timer by one second and reports the edges it crossed.
func (t *Timer) Tick() []TimerEvent {
	if t.phase != PhaseRunning || t.remaining <= 0 {
		return nil
	}

	var events []TimerEvent
	t.remaining--

	if t.kind == TimerModerated {
		t.speakerRemaining--
		if t.speakerRemaining <= 0 {
			t.speakerRemaining = t.cfg.Speaker
			events = append(events, EventSpeakerRollover)
		}
	}

	if t.cfg.WarnAt > 0 && t.remaining == t.cfg.WarnAt && !t.warned {
		t.warned = true
		events = append(events, EventWarning)
	}

	if t.remaining == 0 {
		t.phase = PhaseExpired
		events = append(events, EventExpired)
	}

	return events
}
