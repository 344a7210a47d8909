package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionToggleKeepsPartiesDisjoint(t *testing.T) {
	countries := []string{"France", "Japan", "Chile", "Kenya"}
	rng := rand.New(rand.NewSource(7))

	r := Resolution{Code: "A/1"}
	for i := 0; i < 500; i++ {
		country := countries[rng.Intn(len(countries))]
		if rng.Intn(2) == 0 {
			r = r.ToggleSponsor(country)
		} else {
			r = r.ToggleSignatory(country)
		}

		for _, sponsor := range r.Sponsors {
			require.NotContains(t, r.Signatories, sponsor, "step %d", i)
		}
		require.NoError(t, r.Validate())
	}
}

func TestResolutionToggleSponsorMovesSignatory(t *testing.T) {
	r := Resolution{Code: "A/1", Signatories: []string{"Chile"}}

	r = r.ToggleSponsor("Chile")
	assert.Equal(t, []string{"Chile"}, r.Sponsors)
	assert.Empty(t, r.Signatories)

	r = r.ToggleSponsor("Chile")
	assert.Empty(t, r.Sponsors)
}

func TestResolutionMoveTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ResolutionStatus
		to      ResolutionStatus
		allowed bool
	}{
		{name: "working paper to draft", from: ResolutionWorkingPaper, to: ResolutionDraft, allowed: true},
		{name: "draft back to working paper", from: ResolutionDraft, to: ResolutionWorkingPaper, allowed: true},
		{name: "draft to passed by hand", from: ResolutionDraft, to: ResolutionPassed},
		{name: "passed is terminal", from: ResolutionPassed, to: ResolutionDraft},
		{name: "failed is terminal", from: ResolutionFailed, to: ResolutionWorkingPaper},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moved, err := Resolution{Code: "A/1", Status: tt.from}.MoveTo(tt.to)
			if !tt.allowed {
				require.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, moved.Status)
		})
	}
}

func TestResolutionDecide(t *testing.T) {
	passed, err := Resolution{Code: "A/1", Status: ResolutionDraft}.Decide(true)
	require.NoError(t, err)
	assert.Equal(t, ResolutionPassed, passed.Status)

	failed, err := Resolution{Code: "A/2", Status: ResolutionDraft}.Decide(false)
	require.NoError(t, err)
	assert.Equal(t, ResolutionFailed, failed.Status)

	_, err = Resolution{Code: "A/3", Status: ResolutionWorkingPaper}.Decide(true)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResolutionValidate(t *testing.T) {
	err := Resolution{Code: "  "}.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "code is required")

	err = Resolution{Code: "A/1", Sponsors: []string{"Peru"}, Signatories: []string{"Peru"}}.Validate()
	require.ErrorIs(t, err, ErrValidation)
}
