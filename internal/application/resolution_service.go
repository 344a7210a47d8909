package application

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

type ResolutionService struct {
	resolutions *SyncEngine[domain.Resolution]
}

func NewResolutionService(resolutions *SyncEngine[domain.Resolution]) *ResolutionService {
	return &ResolutionService{resolutions: resolutions}
}

// Add files a new working paper at the end of the list.
func (s *ResolutionService) Add(code, title string, sponsors, signatories []string) (domain.Resolution, error) {
	r := domain.Resolution{
		Code:        strings.TrimSpace(code),
		Title:       strings.TrimSpace(title),
		Sponsors:    []string{},
		Signatories: []string{},
		Status:      domain.ResolutionWorkingPaper,
		Position:    len(s.resolutions.Items()),
	}
	for _, country := range sponsors {
		if !contains(r.Sponsors, country) {
			r = r.ToggleSponsor(country)
		}
	}
	for _, country := range signatories {
		if !contains(r.Sponsors, country) && !contains(r.Signatories, country) {
			r = r.ToggleSignatory(country)
		}
	}
	if err := r.Validate(); err != nil {
		return domain.Resolution{}, err
	}
	if _, err := s.FindByCode(r.Code); err == nil {
		v := domain.NewValidationError()
		v.Add("code", fmt.Sprintf("%s already exists", r.Code))
		return domain.Resolution{}, v
	}

	created, err := s.resolutions.Insert(r)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("add resolution: %w", err)
	}
	return created, nil
}

func (s *ResolutionService) Get(id string) (domain.Resolution, error) {
	r, ok := s.resolutions.Find(id)
	if !ok {
		return domain.Resolution{}, fmt.Errorf("get resolution %q: %w", id, domain.ErrResolutionNotFound)
	}
	return r, nil
}

func (s *ResolutionService) FindByCode(code string) (domain.Resolution, error) {
	want := strings.TrimSpace(code)
	for _, r := range s.resolutions.Items() {
		if strings.EqualFold(r.Code, want) {
			return r, nil
		}
	}
	return domain.Resolution{}, fmt.Errorf("find resolution %q: %w", code, domain.ErrResolutionNotFound)
}

func (s *ResolutionService) List() []domain.Resolution {
	return s.resolutions.Items()
}

func (s *ResolutionService) ByStatus(status domain.ResolutionStatus) []domain.Resolution {
	return s.resolutions.Filter(ports.Filter{"status": status})
}

func (s *ResolutionService) Drafts() []domain.Resolution {
	return s.ByStatus(domain.ResolutionDraft)
}

// Move switches a resolution between working paper and draft.
func (s *ResolutionService) Move(id string, status domain.ResolutionStatus) error {
	r, err := s.Get(id)
	if err != nil {
		return err
	}
	if _, err := r.MoveTo(status); err != nil {
		return err
	}

	s.resolutions.Mutate(ports.Filter{"id": id}, ports.Patch{"status": status})
	return nil
}

// Reorder places the resolution at position and renumbers the rest.
func (s *ResolutionService) Reorder(id string, position int) error {
	r, err := s.Get(id)
	if err != nil {
		return err
	}
	if !r.Status.Reorderable() {
		return fmt.Errorf("reorder resolution %s in status %s: %w", r.Code, r.Status, domain.ErrInvalidTransition)
	}

	items := s.resolutions.Items()
	sort.SliceStable(items, func(i, j int) bool { return resolutionLess(items[i], items[j]) })

	ordered := make([]domain.Resolution, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			ordered = append(ordered, item)
		}
	}
	if position < 0 {
		position = 0
	}
	if position > len(ordered) {
		position = len(ordered)
	}
	ordered = append(ordered[:position], append([]domain.Resolution{r}, ordered[position:]...)...)

	for i, item := range ordered {
		if item.Position != i {
			s.resolutions.Mutate(ports.Filter{"id": item.ID}, ports.Patch{"position": i})
		}
	}
	return nil
}

// Delete removes a resolution that has not been voted on.
func (s *ResolutionService) Delete(id string) error {
	r, err := s.Get(id)
	if err != nil {
		return err
	}
	if r.Status.Terminal() {
		return fmt.Errorf("delete resolution %s in status %s: %w", r.Code, r.Status, domain.ErrInvalidTransition)
	}

	s.resolutions.Remove(id)
	return nil
}

func (s *ResolutionService) ToggleSponsor(id, country string) (domain.Resolution, error) {
	r, err := s.Get(id)
	if err != nil {
		return domain.Resolution{}, err
	}
	return s.saveParties(r.ToggleSponsor(country)), nil
}

func (s *ResolutionService) ToggleSignatory(id, country string) (domain.Resolution, error) {
	r, err := s.Get(id)
	if err != nil {
		return domain.Resolution{}, err
	}
	return s.saveParties(r.ToggleSignatory(country)), nil
}

func (s *ResolutionService) saveParties(r domain.Resolution) domain.Resolution {
	s.resolutions.Mutate(ports.Filter{"id": r.ID}, ports.Patch{
		"sponsors":    nonNil(r.Sponsors),
		"signatories": nonNil(r.Signatories),
	})
	return r
}

// RecordOutcome closes a draft as passed or failed. Only voting calls it.
func (s *ResolutionService) RecordOutcome(id string, passed bool) (domain.Resolution, error) {
	r, err := s.Get(id)
	if err != nil {
		return domain.Resolution{}, err
	}
	decided, err := r.Decide(passed)
	if err != nil {
		return domain.Resolution{}, err
	}

	s.resolutions.Mutate(ports.Filter{"id": id}, ports.Patch{"status": decided.Status})
	return decided, nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == strings.TrimSpace(value) {
			return true
		}
	}
	return false
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
