package domain

import (
	"fmt"
	"strings"
)

type AttendanceStatus string

const (
	StatusAbsent           AttendanceStatus = "absent"
	StatusPresent          AttendanceStatus = "present"
	StatusPresentAndVoting AttendanceStatus = "present_and_voting"
)

func ParseAttendanceStatus(raw string) (AttendanceStatus, error) {
	switch AttendanceStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusAbsent:
		return StatusAbsent, nil
	case StatusPresent:
		return StatusPresent, nil
	case StatusPresentAndVoting, "present_voting", "voting":
		return StatusPresentAndVoting, nil
	}

	return "", fmt.Errorf("unknown attendance status %q", raw)
}

// Next follows the roll call cycle absent -> present -> present_and_voting -> absent.
func (s AttendanceStatus) Next() AttendanceStatus {
	switch s {
	case StatusAbsent:
		return StatusPresent
	case StatusPresent:
		return StatusPresentAndVoting
	default:
		return StatusAbsent
	}
}

func (s AttendanceStatus) IsPresent() bool {
	return s == StatusPresent || s == StatusPresentAndVoting
}

type RosterEntry struct {
	ID           string           `json:"id"`
	SessionID    string           `json:"session_id"`
	Country      string           `json:"country_name"`
	FlagURL      string           `json:"flag_url"`
	Status       AttendanceStatus `json:"status"`
	DelegateName string           `json:"delegate_name"`
	HasSpoken    bool             `json:"has_spoken"`
}

type RosterStats struct {
	Total            int
	Present          int
	PresentAndVoting int
	Absent           int
	Spoken           int
}

func (s RosterStats) TotalPresent() int {
	return s.Present + s.PresentAndVoting
}

func (s RosterStats) SimpleMajority() int {
	n := s.TotalPresent()
	if n == 0 {
		return 0
	}
	return n/2 + 1
}

func (s RosterStats) TwoThirdsMajority() int {
	n := s.TotalPresent()
	return (2*n + 2) / 3
}

func ComputeRosterStats(entries []RosterEntry) RosterStats {
	stats := RosterStats{Total: len(entries)}
	for _, entry := range entries {
		switch entry.Status {
		case StatusPresent:
			stats.Present++
		case StatusPresentAndVoting:
			stats.PresentAndVoting++
		default:
			stats.Absent++
		}
		if entry.HasSpoken {
			stats.Spoken++
		}
	}
	return stats
}

type Delegation struct {
	Country string `toml:"country"`
	Code    string `toml:"code"`
}

func (d Delegation) FlagURL() string {
	if d.Code == "" {
		return ""
	}
	return fmt.Sprintf("https://flagcdn.com/w80/%s.png", strings.ToLower(d.Code))
}

var DefaultDelegations = []Delegation{
	{Country: "United States", Code: "us"},
	{Country: "United Kingdom", Code: "gb"},
	{Country: "France", Code: "fr"},
	{Country: "Russia", Code: "ru"},
	{Country: "China", Code: "cn"},
	{Country: "Germany", Code: "de"},
	{Country: "Japan", Code: "jp"},
	{Country: "India", Code: "in"},
	{Country: "Brazil", Code: "br"},
	{Country: "South Africa", Code: "za"},
	{Country: "Australia", Code: "au"},
	{Country: "Canada", Code: "ca"},
	{Country: "Italy", Code: "it"},
	{Country: "Spain", Code: "es"},
	{Country: "Mexico", Code: "mx"},
	{Country: "South Korea", Code: "kr"},
	{Country: "Indonesia", Code: "id"},
	{Country: "Saudi Arabia", Code: "sa"},
	{Country: "Turkey", Code: "tr"},
	{Country: "Argentina", Code: "ar"},
	{Country: "Nigeria", Code: "ng"},
	{Country: "Egypt", Code: "eg"},
	{Country: "Pakistan", Code: "pk"},
	{Country: "Bangladesh", Code: "bd"},
}

// NewRoster builds an all-absent roster for sessionID. Entries get positional
// ids ("1", "2", ...) so a freshly seeded roster is stable across reloads.
func NewRoster(sessionID string, delegations []Delegation) []RosterEntry {
	entries := make([]RosterEntry, 0, len(delegations))
	for i, d := range delegations {
		entries = append(entries, RosterEntry{
			ID:        fmt.Sprintf("%d", i+1),
			SessionID: sessionID,
			Country:   d.Country,
			FlagURL:   d.FlagURL(),
			Status:    StatusAbsent,
		})
	}
	return entries
}
