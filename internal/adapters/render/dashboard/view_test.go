package dashboard

import (
	"testing"
	"time"

	"github.com/Subha2009/kamun-software/internal/application"
	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDashboard() application.Dashboard {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	roster := []domain.RosterEntry{
		{ID: "1", Country: "France", Status: domain.StatusPresent, DelegateName: "Mme Laurent"},
		{ID: "2", Country: "Japan", Status: domain.StatusPresentAndVoting, HasSpoken: true},
		{ID: "3", Country: "Peru", Status: domain.StatusAbsent},
	}

	return application.Dashboard{
		Mode:    ports.ModeCacheOnly,
		Stage:   domain.StageDashboard,
		Session: &domain.Session{ID: "s1", Name: "General Assembly", Active: true},
		Agenda:  "Climate finance",
		Stats:   domain.ComputeRosterStats(roster),
		Roster:  roster,
		Resolutions: []domain.Resolution{
			{Code: "A/1", Title: "Ocean plastics", Status: domain.ResolutionDraft, Sponsors: []string{"France"}},
			{Code: "A/2", Title: "Debt relief", Status: domain.ResolutionWorkingPaper, Position: 1},
		},
		Caucus: application.CaucusSnapshot{
			Topic:       "Carbon markets",
			ReplyTarget: "Peru",
			Timers: map[domain.TimerKind]domain.TimerState{
				domain.TimerModerated:   {Kind: domain.TimerModerated, Phase: domain.PhaseRunning, Total: 600, Remaining: 545, SpeakerTotal: 60, SpeakerRemaining: 5},
				domain.TimerUnmoderated: {Kind: domain.TimerUnmoderated, Phase: domain.PhaseIdle, Total: 300, Remaining: 300},
				domain.TimerReply:       {Kind: domain.TimerReply, Phase: domain.PhaseExpired, Total: 60, Remaining: 0},
			},
		},
		Caucuses: []domain.CaucusLogEntry{
			{Kind: domain.LogKindCaucus, Topic: "Carbon markets", Duration: 600, CaucusType: domain.CaucusModerated, Timestamp: start.Add(time.Minute)},
		},
		Replies: []domain.CaucusLogEntry{
			{Kind: domain.LogKindReply, Country: "Peru", Timestamp: start},
		},
		Speaker: application.SpeakerSnapshot{
			Current: "Japan",
			Queue:   []string{"France", "Peru"},
			Timer:   domain.TimerState{Kind: domain.TimerSpeaker, Phase: domain.PhasePaused, Total: 90, Remaining: 42},
		},
		Vote: &application.VoteSnapshot{
			Resolution: domain.Resolution{Code: "A/1"},
			Tally:      domain.Tally{Yes: 1, No: 0, Abstain: 0, Eligible: 2},
		},
	}
}

func TestRenderDashboard(t *testing.T) {
	output, err := Render(sampleDashboard(), RenderOptions{Location: time.UTC})

	require.NoError(t, err)
	assert.Contains(t, output, "kamun: General Assembly")
	assert.Contains(t, output, "stage: dashboard | storage: local cache only")
	assert.Contains(t, output, "Agenda: Climate finance")
	assert.Contains(t, output, "present 1 | present and voting 1 | absent 1 | spoken 1/3")
	assert.Contains(t, output, "simple majority 2 | two-thirds majority 2")
	assert.Contains(t, output, "Moderated (Carbon markets)")
	assert.Contains(t, output, "9:05")
	assert.Contains(t, output, "0:05")
	assert.Contains(t, output, "Right of reply (Peru)")
	assert.Contains(t, output, "time!")
	assert.Contains(t, output, "next: France, Peru")
	assert.Contains(t, output, "0:42")
	assert.Contains(t, output, "working paper")
	assert.Contains(t, output, "sponsors: France")
	assert.Contains(t, output, "Voting on A/1: yes 1 | no 0 | abstain 0 | 1 of 2 cast | 1 needed")
	assert.Contains(t, output, "09:00 right of reply: Peru")
	assert.Contains(t, output, "09:01 moderated caucus: Carbon markets (10:00)")
	assert.NotContains(t, output, "Mme Laurent", "roster rows are hidden by default")
}

func TestRenderDashboardWithRoster(t *testing.T) {
	output, err := Render(sampleDashboard(), RenderOptions{ShowRoster: true, Location: time.UTC})

	require.NoError(t, err)
	assert.Contains(t, output, "France")
	assert.Contains(t, output, "Mme Laurent")
	assert.Contains(t, output, "(spoken)")
}

func TestRenderDashboardWithoutSession(t *testing.T) {
	output, err := Render(application.Dashboard{Mode: ports.ModeRemote, Stage: domain.StageNeedsSession}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "stage: needsSession | storage: remote")
	assert.Contains(t, output, "No active session")
	assert.NotContains(t, output, "Timers")
}

func TestRenderLogKeepsNewestEntries(t *testing.T) {
	view := sampleDashboard()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	view.Caucuses = nil
	view.Replies = nil
	for i := 0; i < 4; i++ {
		view.Replies = append(view.Replies, domain.CaucusLogEntry{
			Kind:      domain.LogKindReply,
			Country:   []string{"Chile", "Kenya", "Ghana", "Nepal"}[i],
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	output, err := Render(view, RenderOptions{LogSize: 2, Location: time.UTC})

	require.NoError(t, err)
	assert.NotContains(t, output, "Chile")
	assert.NotContains(t, output, "Kenya")
	assert.Contains(t, output, "10:02 right of reply: Ghana")
	assert.Contains(t, output, "10:03 right of reply: Nepal")
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 0, want: "0:00"},
		{seconds: 9, want: "0:09"},
		{seconds: 90, want: "1:30"},
		{seconds: 600, want: "10:00"},
		{seconds: -3, want: "0:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.seconds))
	}
}

func TestRenderTimer(t *testing.T) {
	line := RenderTimer("Moderated", domain.TimerState{Kind: domain.TimerModerated, Phase: domain.PhaseRunning, Total: 60, Remaining: 30})

	assert.Contains(t, line, "Moderated")
	assert.Contains(t, line, "0:30")
	assert.Contains(t, line, "running")
	assert.Contains(t, line, "============")
}
