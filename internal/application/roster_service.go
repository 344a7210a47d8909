package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

const DefaultNameDebounce = 500 * time.Millisecond

// RosterService is roll call on top of the attendance engine. Delegates are
// addressed by country name, case insensitively.
type RosterService struct {
	roster   *SyncEngine[domain.RosterEntry]
	debounce time.Duration
}

func NewRosterService(roster *SyncEngine[domain.RosterEntry], debounce time.Duration) *RosterService {
	if debounce <= 0 {
		debounce = DefaultNameDebounce
	}
	return &RosterService{roster: roster, debounce: debounce}
}

func (s *RosterService) Entries() []domain.RosterEntry {
	return s.roster.Items()
}

func (s *RosterService) Find(country string) (domain.RosterEntry, error) {
	want := strings.TrimSpace(country)
	for _, entry := range s.roster.Items() {
		if strings.EqualFold(entry.Country, want) {
			return entry, nil
		}
	}
	return domain.RosterEntry{}, fmt.Errorf("find delegate %q: %w", country, domain.ErrDelegateNotFound)
}

// ToggleStatus advances the delegate one step through the roll call cycle.
func (s *RosterService) ToggleStatus(country string) (domain.AttendanceStatus, error) {
	entry, err := s.Find(country)
	if err != nil {
		return "", err
	}

	next := entry.Status.Next()
	s.roster.Mutate(ports.Filter{"id": entry.ID}, ports.Patch{"status": next})
	return next, nil
}

func (s *RosterService) SetStatus(country string, status domain.AttendanceStatus) error {
	entry, err := s.Find(country)
	if err != nil {
		return err
	}

	s.roster.Mutate(ports.Filter{"id": entry.ID}, ports.Patch{"status": status})
	return nil
}

// SetDelegateName updates the label at once and persists it after the debounce window.
func (s *RosterService) SetDelegateName(country, name string) error {
	entry, err := s.Find(country)
	if err != nil {
		return err
	}

	s.roster.DebouncedMutate(ports.Filter{"id": entry.ID}, "delegate_name", name, s.debounce)
	return nil
}

func (s *RosterService) MarkSpoken(country string) error {
	entry, err := s.Find(country)
	if err != nil {
		return err
	}

	s.roster.Mutate(ports.Filter{"id": entry.ID}, ports.Patch{"has_spoken": true})
	return nil
}

func (s *RosterService) ResetSpoken() int {
	return s.roster.Mutate(ports.Filter{"has_spoken": true}, ports.Patch{"has_spoken": false})
}

// ResetAll marks every delegate absent.
func (s *RosterService) ResetAll() int {
	return s.roster.Mutate(ports.Filter{}, ports.Patch{"status": domain.StatusAbsent})
}

func (s *RosterService) Stats() domain.RosterStats {
	return domain.ComputeRosterStats(s.roster.Items())
}

// Eligible lists the delegates allowed to vote.
func (s *RosterService) Eligible() []domain.RosterEntry {
	var out []domain.RosterEntry
	for _, entry := range s.roster.Items() {
		if entry.Status.IsPresent() {
			out = append(out, entry)
		}
	}
	return out
}
