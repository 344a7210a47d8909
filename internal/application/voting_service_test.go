package application

import (
	"testing"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type votingFixture struct {
	roster      *RosterService
	resolutions *ResolutionService
	voting      *VotingService
	draft       domain.Resolution
}

func newVotingFixture(t *testing.T) votingFixture {
	t.Helper()

	workspace := boundWorkspace(t, cacheOnlyBackend(t))
	roster := NewRosterService(workspace.Roster, 0)
	resolutions := NewResolutionService(workspace.Resolutions)

	for _, country := range []string{"France", "Japan", "Egypt", "Russia"} {
		require.NoError(t, roster.SetStatus(country, domain.StatusPresent))
	}
	require.NoError(t, roster.SetStatus("Nigeria", domain.StatusPresentAndVoting))

	r, err := resolutions.Add("A/1", "Ocean plastics", nil, nil)
	require.NoError(t, err)
	require.NoError(t, resolutions.Move(r.ID, domain.ResolutionDraft))
	draft, err := resolutions.Get(r.ID)
	require.NoError(t, err)

	return votingFixture{
		roster:      roster,
		resolutions: resolutions,
		voting:      NewVotingService(roster, resolutions),
		draft:       draft,
	}
}

func TestVotingServiceSimpleMajorityPasses(t *testing.T) {
	t.Parallel()

	f := newVotingFixture(t)
	require.NoError(t, f.voting.Open(f.draft.ID))
	require.True(t, f.voting.IsOpen())

	require.NoError(t, f.voting.Cast("france", domain.VoteYes))
	require.NoError(t, f.voting.Cast("Japan", domain.VoteYes))
	require.NoError(t, f.voting.Cast("Nigeria", domain.VoteYes))
	require.NoError(t, f.voting.Cast("Russia", domain.VoteNo))
	require.NoError(t, f.voting.Cast("Egypt", domain.VoteAbstain))

	tally := f.voting.Tally()
	assert.Equal(t, domain.Tally{Yes: 3, No: 1, Abstain: 1, Eligible: 5}, tally)
	assert.True(t, tally.Complete())

	result, err := f.voting.Close()
	require.NoError(t, err)

	assert.Equal(t, 3, result.Tally.Required())
	assert.Equal(t, domain.ResolutionPassed, result.Resolution.Status)
	stored, err := f.resolutions.Get(f.draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ResolutionPassed, stored.Status)
	assert.False(t, f.voting.IsOpen())
}

func TestVotingServiceTieFails(t *testing.T) {
	t.Parallel()

	f := newVotingFixture(t)
	require.NoError(t, f.voting.Open(f.draft.ID))
	require.NoError(t, f.voting.Cast("France", domain.VoteYes))
	require.NoError(t, f.voting.Cast("Japan", domain.VoteNo))

	result, err := f.voting.Close()
	require.NoError(t, err)

	assert.Equal(t, domain.ResolutionFailed, result.Resolution.Status)
}

func TestVotingServiceEnforcesEligibility(t *testing.T) {
	t.Parallel()

	f := newVotingFixture(t)
	require.NoError(t, f.voting.Open(f.draft.ID))

	require.ErrorIs(t, f.voting.Cast("Nigeria", domain.VoteAbstain), domain.ErrNotEligible)
	require.ErrorIs(t, f.voting.Cast("China", domain.VoteYes), domain.ErrNotEligible)

	require.NoError(t, f.roster.SetStatus("China", domain.StatusPresent))
	require.ErrorIs(t, f.voting.Cast("China", domain.VoteYes), domain.ErrNotEligible, "eligibility is fixed when the vote opens")

	require.NoError(t, f.roster.SetStatus("France", domain.StatusAbsent))
	require.NoError(t, f.voting.Cast("France", domain.VoteYes))
	assert.Equal(t, 5, f.voting.Tally().Eligible)
}

func TestVotingServiceRevotesReplaceEarlierChoice(t *testing.T) {
	t.Parallel()

	f := newVotingFixture(t)
	require.NoError(t, f.voting.Open(f.draft.ID))

	require.NoError(t, f.voting.Cast("France", domain.VoteNo))
	require.NoError(t, f.voting.Cast("France", domain.VoteYes))

	assert.Equal(t, domain.Tally{Yes: 1, Eligible: 5}, f.voting.Tally())
}

func TestVotingServiceOpenRequiresDraft(t *testing.T) {
	t.Parallel()

	f := newVotingFixture(t)
	paper, err := f.resolutions.Add("A/2", "", nil, nil)
	require.NoError(t, err)

	require.ErrorIs(t, f.voting.Open(paper.ID), domain.ErrInvalidTransition)
	require.ErrorIs(t, f.voting.Open("missing"), domain.ErrResolutionNotFound)

	require.NoError(t, f.voting.Open(f.draft.ID))
	require.ErrorIs(t, f.voting.Open(f.draft.ID), domain.ErrInvalidTransition)
}

func TestVotingServiceOpenRequiresAttendance(t *testing.T) {
	t.Parallel()

	f := newVotingFixture(t)
	f.roster.ResetAll()

	require.ErrorIs(t, f.voting.Open(f.draft.ID), domain.ErrNotEligible)
}

func TestVotingServiceClosedBallot(t *testing.T) {
	t.Parallel()

	f := newVotingFixture(t)

	require.ErrorIs(t, f.voting.Cast("France", domain.VoteYes), domain.ErrVotingClosed)
	_, err := f.voting.Close()
	require.ErrorIs(t, err, domain.ErrVotingClosed)

	require.NoError(t, f.voting.Open(f.draft.ID))
	f.voting.Cancel()

	assert.False(t, f.voting.IsOpen())
	stored, err := f.resolutions.Get(f.draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ResolutionDraft, stored.Status)
}
