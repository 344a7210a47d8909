package domain

import (
	"fmt"
	"strings"
	"time"
)

type Stage string

const (
	StageLoading      Stage = "loading"
	StageLocked       Stage = "locked"
	StageNeedsSession Stage = "needsSession"
	StageAdmin        Stage = "admin"
	StageSplash       Stage = "splash"
	StageVideo        Stage = "video"
	StageDashboard    Stage = "dashboard"
)

var stageTransitions = map[Stage][]Stage{
	StageLoading:      {StageLocked, StageNeedsSession, StageAdmin},
	StageLocked:       {StageNeedsSession, StageAdmin},
	StageNeedsSession: {StageAdmin},
	StageAdmin:        {StageSplash, StageNeedsSession, StageAdmin},
	StageSplash:       {StageVideo, StageAdmin, StageNeedsSession},
	StageVideo:        {StageDashboard, StageAdmin, StageNeedsSession},
	StageDashboard:    {StageAdmin, StageNeedsSession},
}

func (s Stage) CanTransitionTo(next Stage) bool {
	for _, allowed := range stageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next returns the presentation stage that follows s, if any.
func (s Stage) Next() (Stage, bool) {
	switch s {
	case StageAdmin:
		return StageSplash, true
	case StageSplash:
		return StageVideo, true
	case StageVideo:
		return StageDashboard, true
	default:
		return "", false
	}
}

type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"is_active"`
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Required("name")
	}
	if len(s.Name) > MaxSessionNameLength {
		v := NewValidationError()
		v.Add("name", fmt.Sprintf("must be at most %d characters", MaxSessionNameLength))
		return v
	}
	return nil
}

const (
	MaxSessionNameLength = 120
	MaxListedSessions    = 50
)

// SessionState carries the mutable metadata of a session.
type SessionState struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Agenda    string `json:"current_agenda"`
}
