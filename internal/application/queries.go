package application

import (
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

// Dashboard is a read only snapshot of everything the chair's screen shows.
type Dashboard struct {
	Mode        ports.BackendMode
	Stage       domain.Stage
	Session     *domain.Session
	Agenda      string
	Stats       domain.RosterStats
	Roster      []domain.RosterEntry
	Resolutions []domain.Resolution
	Caucus      CaucusSnapshot
	Caucuses    []domain.CaucusLogEntry
	Replies     []domain.CaucusLogEntry
	Speaker     SpeakerSnapshot
	Vote        *VoteSnapshot
}

type SpeakerSnapshot struct {
	Current string
	Queue   []string
	Timer   domain.TimerState
}

type VoteSnapshot struct {
	Resolution domain.Resolution
	Tally      domain.Tally
}
