package domain

import (
	"fmt"
	"strings"
)

type ResolutionStatus string

const (
	ResolutionWorkingPaper ResolutionStatus = "working_paper"
	ResolutionDraft        ResolutionStatus = "draft"
	ResolutionPassed       ResolutionStatus = "passed"
	ResolutionFailed       ResolutionStatus = "failed"
)

func ParseResolutionStatus(raw string) (ResolutionStatus, error) {
	switch ResolutionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ResolutionWorkingPaper, "wp", "working-paper":
		return ResolutionWorkingPaper, nil
	case ResolutionDraft:
		return ResolutionDraft, nil
	case ResolutionPassed:
		return ResolutionPassed, nil
	case ResolutionFailed:
		return ResolutionFailed, nil
	}

	return "", fmt.Errorf("unknown resolution status %q", raw)
}

// Reorderable reports whether a chair may move or reorder a resolution in this status.
func (s ResolutionStatus) Reorderable() bool {
	return s == ResolutionWorkingPaper || s == ResolutionDraft
}

func (s ResolutionStatus) Terminal() bool {
	return s == ResolutionPassed || s == ResolutionFailed
}

type Resolution struct {
	ID          string           `json:"id"`
	SessionID   string           `json:"session_id"`
	Code        string           `json:"code"`
	Title       string           `json:"title"`
	Sponsors    []string         `json:"sponsors"`
	Signatories []string         `json:"signatories"`
	Status      ResolutionStatus `json:"status"`
	Position    int              `json:"position"`
}

func (r Resolution) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(r.Code) == "" {
		v.Add("code", "is required")
	}
	for _, sponsor := range r.Sponsors {
		if containsCountry(r.Signatories, sponsor) {
			v.Add("signatories", fmt.Sprintf("%s is already a sponsor", sponsor))
			break
		}
	}
	return v.Err()
}

// MoveTo returns an error unless both the current and the target status are user reorderable.
func (r Resolution) MoveTo(status ResolutionStatus) (Resolution, error) {
	if !r.Status.Reorderable() || !status.Reorderable() {
		return r, fmt.Errorf("move resolution %s from %s to %s: %w", r.Code, r.Status, status, ErrInvalidTransition)
	}
	r.Status = status
	return r, nil
}

// Decide moves a draft to passed or failed once voting closes.
func (r Resolution) Decide(passed bool) (Resolution, error) {
	if r.Status != ResolutionDraft {
		return r, fmt.Errorf("decide resolution %s in status %s: %w", r.Code, r.Status, ErrInvalidTransition)
	}
	if passed {
		r.Status = ResolutionPassed
	} else {
		r.Status = ResolutionFailed
	}
	return r, nil
}

// ToggleSponsor adds or removes country from the sponsors and drops it from the signatories.
func (r Resolution) ToggleSponsor(country string) Resolution {
	r.Sponsors, r.Signatories = toggleDisjoint(r.Sponsors, r.Signatories, country)
	return r
}

func (r Resolution) ToggleSignatory(country string) Resolution {
	r.Signatories, r.Sponsors = toggleDisjoint(r.Signatories, r.Sponsors, country)
	return r
}

func toggleDisjoint(target, other []string, country string) ([]string, []string) {
	country = strings.TrimSpace(country)
	if country == "" {
		return target, other
	}

	if containsCountry(target, country) {
		return removeCountry(target, country), other
	}

	next := make([]string, 0, len(target)+1)
	next = append(next, target...)
	next = append(next, country)
	return next, removeCountry(other, country)
}

func containsCountry(list []string, country string) bool {
	for _, item := range list {
		if item == country {
			return true
		}
	}
	return false
}

func removeCountry(list []string, country string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != country {
			out = append(out, item)
		}
	}
	return out
}
