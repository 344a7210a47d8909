package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceCycle(t *testing.T) {
	status := StatusAbsent
	var seen []AttendanceStatus
	for i := 0; i < 4; i++ {
		status = status.Next()
		seen = append(seen, status)
	}

	assert.Equal(t, []AttendanceStatus{StatusPresent, StatusPresentAndVoting, StatusAbsent, StatusPresent}, seen)
}

func TestComputeRosterStats(t *testing.T) {
	entries := []RosterEntry{
		{Status: StatusAbsent},
		{Status: StatusPresent, HasSpoken: true},
		{Status: StatusPresentAndVoting},
		{Status: StatusPresentAndVoting, HasSpoken: true},
		{Status: StatusPresent},
	}

	stats := ComputeRosterStats(entries)

	assert.Equal(t, RosterStats{Total: 5, Present: 2, PresentAndVoting: 2, Absent: 1, Spoken: 2}, stats)
	assert.Equal(t, 4, stats.TotalPresent())
	assert.Equal(t, 3, stats.SimpleMajority())
	assert.Equal(t, 3, stats.TwoThirdsMajority())
}

func TestMajorities(t *testing.T) {
	tests := []struct {
		present   int
		simple    int
		twoThirds int
	}{
		{present: 0, simple: 0, twoThirds: 0},
		{present: 1, simple: 1, twoThirds: 1},
		{present: 3, simple: 2, twoThirds: 2},
		{present: 10, simple: 6, twoThirds: 7},
		{present: 24, simple: 13, twoThirds: 16},
	}

	for _, tt := range tests {
		stats := RosterStats{Present: tt.present}
		assert.Equal(t, tt.simple, stats.SimpleMajority(), "simple majority of %d", tt.present)
		assert.Equal(t, tt.twoThirds, stats.TwoThirdsMajority(), "two thirds of %d", tt.present)
	}
}

func TestNewRoster(t *testing.T) {
	roster := NewRoster("s1", DefaultDelegations)

	require.Len(t, roster, 24)
	assert.Equal(t, "1", roster[0].ID)
	assert.Equal(t, "United States", roster[0].Country)
	assert.Equal(t, "https://flagcdn.com/w80/us.png", roster[0].FlagURL)
	for _, entry := range roster {
		assert.Equal(t, StatusAbsent, entry.Status)
		assert.Equal(t, "s1", entry.SessionID)
		assert.False(t, entry.HasSpoken)
	}
}

func TestParseAttendanceStatus(t *testing.T) {
	got, err := ParseAttendanceStatus("Voting")
	require.NoError(t, err)
	assert.Equal(t, StatusPresentAndVoting, got)

	_, err = ParseAttendanceStatus("late")
	require.Error(t, err)
}
