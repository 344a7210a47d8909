package application

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Subha2009/kamun-software/internal/domain"
)

// VotingService runs one roll call vote at a time on a draft resolution.
// Eligibility is fixed when the vote opens.
type VotingService struct {
	roster      *RosterService
	resolutions *ResolutionService

	mu         sync.Mutex
	open       bool
	resolution domain.Resolution
	eligible   map[string]domain.AttendanceStatus
	votes      map[string]domain.VoteChoice
}

type VoteResult struct {
	Resolution domain.Resolution
	Tally      domain.Tally
}

func NewVotingService(roster *RosterService, resolutions *ResolutionService) *VotingService {
	return &VotingService{roster: roster, resolutions: resolutions}
}

func (s *VotingService) Open(resolutionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return fmt.Errorf("open vote: %s is already being voted on: %w", s.resolution.Code, domain.ErrInvalidTransition)
	}

	r, err := s.resolutions.Get(resolutionID)
	if err != nil {
		return err
	}
	if r.Status != domain.ResolutionDraft {
		return fmt.Errorf("open vote on %s in status %s: %w", r.Code, r.Status, domain.ErrInvalidTransition)
	}

	eligible := map[string]domain.AttendanceStatus{}
	for _, entry := range s.roster.Eligible() {
		eligible[strings.ToLower(entry.Country)] = entry.Status
	}
	if len(eligible) == 0 {
		return fmt.Errorf("open vote on %s: nobody is present: %w", r.Code, domain.ErrNotEligible)
	}

	s.open = true
	s.resolution = r
	s.eligible = eligible
	s.votes = map[string]domain.VoteChoice{}
	return nil
}

func (s *VotingService) Cast(country string, choice domain.VoteChoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return fmt.Errorf("cast vote for %s: %w", country, domain.ErrVotingClosed)
	}

	key := strings.ToLower(strings.TrimSpace(country))
	status, ok := s.eligible[key]
	if !ok {
		return fmt.Errorf("cast vote for %s: not present at roll call: %w", country, domain.ErrNotEligible)
	}
	if !domain.CanCast(status, choice) {
		return fmt.Errorf("cast %s for %s while %s: %w", choice, country, status, domain.ErrNotEligible)
	}

	s.votes[key] = choice
	return nil
}

func (s *VotingService) Tally() domain.Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CountVotes(s.votes, len(s.eligible))
}

// Current returns the resolution under vote and its running tally.
func (s *VotingService) Current() (domain.Resolution, domain.Tally, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return domain.Resolution{}, domain.Tally{}, false
	}
	return s.resolution, domain.CountVotes(s.votes, len(s.eligible)), true
}

func (s *VotingService) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Close ends the vote and records the outcome on the resolution.
func (s *VotingService) Close() (VoteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return VoteResult{}, fmt.Errorf("close vote: %w", domain.ErrVotingClosed)
	}

	tally := domain.CountVotes(s.votes, len(s.eligible))
	decided, err := s.resolutions.RecordOutcome(s.resolution.ID, tally.Passed())
	if err != nil {
		return VoteResult{}, err
	}

	s.resetLocked()
	return VoteResult{Resolution: decided, Tally: tally}, nil
}

func (s *VotingService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *VotingService) resetLocked() {
	s.open = false
	s.resolution = domain.Resolution{}
	s.eligible = nil
	s.votes = nil
}
