package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestStatusWithoutSession(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stage: needsSession")
	assert.Contains(t, stdout, "local cache only")
	assert.Contains(t, stdout, "No active session")
}

func TestEditingCommandsNeedASession(t *testing.T) {
	home := t.TempDir()

	for _, args := range [][]string{
		{"roster", "list"},
		{"agenda", "set", "Climate"},
		{"resolution", "add", "A/1"},
	} {
		_, _, err := executeCLI(t, home, args...)
		require.ErrorIs(t, err, domain.ErrNoActiveSession, strings.Join(args, " "))
	}
}

func TestSessionNewSeedsRosterAndResumes(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "session", "new", "General", "Assembly")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created session General Assembly")
	assert.Contains(t, stdout, "roster: 24 delegations")

	stdout, _, err = executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "kamun: General Assembly")
	assert.Contains(t, stdout, "stage: admin")

	stdout, _, err = executeCLI(t, home, "stage")
	require.NoError(t, err)
	assert.Contains(t, stdout, "presentation: admin -> splash -> video -> dashboard")
}

func TestSessionListSwitchAndDelete(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "Day one")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "session", "new", "Day two")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "session", "list", "--json")
	require.NoError(t, err)
	var sessions []domain.Session
	require.NoError(t, json.Unmarshal([]byte(stdout), &sessions))
	require.Len(t, sessions, 2)
	assert.Equal(t, "Day two", sessions[0].Name)
	assert.True(t, sessions[0].Active)
	assert.False(t, sessions[1].Active)

	_, _, err = executeCLI(t, home, "session", "switch", "day one")
	require.NoError(t, err)
	stdout, _, err = executeCLI(t, home, "session", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "session: Day one")

	_, _, err = executeCLI(t, home, "session", "delete", sessions[0].ID)
	require.NoError(t, err)
	stdout, _, err = executeCLI(t, home, "session", "list")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Day two")
	assert.Contains(t, stdout, "* "+sessions[1].ID)

	_, _, err = executeCLI(t, home, "session", "switch", "Day three")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = executeCLI(t, home, "session", "end")
	require.NoError(t, err)
	stdout, _, err = executeCLI(t, home, "stage")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stage: needsSession")
}

func TestRollCallAndStats(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "roster", "set", "present", "France", "japan")
	require.NoError(t, err)
	stdout, _, err := executeCLI(t, home, "roster", "toggle", "Egypt", "Egypt")
	require.NoError(t, err)
	assert.Equal(t, "Egypt: present\nEgypt: present_and_voting\n", stdout)
	_, _, err = executeCLI(t, home, "roster", "name", "Japan", "Ambassador", "Ito")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "roster", "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "present: 2\n")
	assert.Contains(t, stdout, "present and voting: 1\n")
	assert.Contains(t, stdout, "simple majority: 2\n")

	stdout, _, err = executeCLI(t, home, "roster", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ambassador Ito")

	_, _, err = executeCLI(t, home, "roster", "toggle", "Atlantis")
	require.ErrorIs(t, err, domain.ErrDelegateNotFound)

	stdout, _, err = executeCLI(t, home, "roster", "reset")
	require.NoError(t, err)
	assert.Equal(t, "24 delegations marked absent\n", stdout)
}

func TestAgendaSetAndClear(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "agenda", "set", "Ocean", "plastics")
	require.NoError(t, err)
	stdout, _, err := executeCLI(t, home, "agenda")
	require.NoError(t, err)
	assert.Equal(t, "agenda: Ocean plastics\n", stdout)

	_, _, err = executeCLI(t, home, "agenda", "clear")
	require.NoError(t, err)
	stdout, _, err = executeCLI(t, home, "agenda")
	require.NoError(t, err)
	assert.Equal(t, "agenda: none\n", stdout)
}

func TestResolutionVoteRecordsOutcome(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "roster", "set", "present", "France", "Japan", "Russia", "Egypt")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "resolution", "add", "A/1", "--title", "Ocean plastics", "--sponsor", "France", "--signatory", "Japan")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "vote", "A/1", "--yes", "France")
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "working papers are not voted on")

	_, _, err = executeCLI(t, home, "resolution", "move", "A/1", "draft")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "vote", "A/1", "--yes", "France,Japan", "--no", "Russia", "--abstain", "Egypt")
	require.NoError(t, err)
	assert.Contains(t, stdout, "A/1: yes 2 | no 1 | abstain 1")
	assert.Contains(t, stdout, "cast 4 of 4, 2 needed")
	assert.Contains(t, stdout, "A/1 passed")

	stdout, _, err = executeCLI(t, home, "resolution", "list", "--status", "passed")
	require.NoError(t, err)
	assert.Contains(t, stdout, "A/1")
	assert.Contains(t, stdout, "sponsors: France")

	_, _, err = executeCLI(t, home, "resolution", "delete", "A/1")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestVoteRejectsIneligibleDelegation(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "roster", "set", "present", "France")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "resolution", "add", "A/1")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "resolution", "move", "A/1", "draft")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "vote", "A/1", "--yes", "France,Chile")
	require.ErrorIs(t, err, domain.ErrNotEligible)

	stdout, _, err := executeCLI(t, home, "resolution", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "draft", "a cancelled vote leaves the draft undecided")
}

func TestResolutionReorderAndParties(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)
	for _, code := range []string{"A/1", "A/2", "A/3"} {
		_, _, err = executeCLI(t, home, "resolution", "add", code)
		require.NoError(t, err)
	}

	stdout, _, err := executeCLI(t, home, "resolution", "reorder", "A/3", "1")
	require.NoError(t, err)
	assert.Equal(t, "A/3 is now at position 1\n", stdout)

	_, _, err = executeCLI(t, home, "resolution", "sponsor", "A/2", "Kenya")
	require.NoError(t, err)
	stdout, _, err = executeCLI(t, home, "resolution", "signatory", "A/2", "Kenya")
	require.NoError(t, err)
	assert.Contains(t, stdout, "A/2 sponsors: none")
	assert.Contains(t, stdout, "A/2 signatories: Kenya")

	stdout, _, err = executeCLI(t, home, "resolution", "list", "--json")
	require.NoError(t, err)
	var listed []domain.Resolution
	require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
	require.Len(t, listed, 3)
	assert.Equal(t, []string{"A/3", "A/1", "A/2"}, []string{listed[0].Code, listed[1].Code, listed[2].Code})
}

func TestCaucusRunLogsAndExpires(t *testing.T) {
	home := t.TempDir()
	t.Setenv("KAMUN_TIMER_TICK", "1ms")
	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)

	stdout, stderr, err := executeCLI(t, home, "caucus", "run", "moderated", "--topic", "Funding", "--total", "2", "--speaker", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Moderated caucus: Funding ended after 0:02")
	assert.Contains(t, stderr, "\a\a")

	_, _, err = executeCLI(t, home, "caucus", "run", "reply", "--country", "chile", "--total", "1")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "caucus", "run", "reply", "--total", "1")
	require.ErrorIs(t, err, domain.ErrValidation, "a right of reply needs a country")

	stdout, _, err = executeCLI(t, home, "caucus", "log")
	require.NoError(t, err)
	assert.Contains(t, stdout, "caucuses: 1\n")
	assert.Contains(t, stdout, "Funding")
	assert.Contains(t, stdout, "rights of reply: 1\n")
	assert.Contains(t, stdout, "Chile")

	stdout, _, err = executeCLI(t, home, "caucus", "clear")
	require.NoError(t, err)
	assert.Equal(t, "1 caucuses cleared\n", stdout)
}

func TestSpeakersRunMarksEachSpeaker(t *testing.T) {
	home := t.TempDir()
	t.Setenv("KAMUN_TIMER_TICK", "1ms")
	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "speakers", "run", "France", "Japan", "--total", "1")
	require.NoError(t, err)
	assert.Equal(t, "spoke: France, Japan\n", stdout)

	stdout, _, err = executeCLI(t, home, "roster", "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "spoken: 2\n")

	stdout, _, err = executeCLI(t, home, "roster", "reset", "--spoken")
	require.NoError(t, err)
	assert.Equal(t, "2 spoken flags cleared\n", stdout)
}

func TestPassphraseLocksDashboard(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "auth", "hash", "open sesame")
	require.NoError(t, err)
	hash := strings.TrimSpace(stdout)
	assert.Regexp(t, regexp.MustCompile(`^\$argon2id\$v=19\$`), hash)
	t.Setenv("KAMUN_AUTH_PASSPHRASE_HASH", hash)

	_, _, err = executeCLI(t, home, "status")
	require.ErrorIs(t, err, errLocked)

	_, _, err = executeCLI(t, home, "status", "--passphrase", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidPassphrase)

	stdout, _, err = executeCLI(t, home, "stage", "--passphrase", "open sesame")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stage: needsSession")

	t.Setenv(passphraseEnv, "open sesame")
	_, _, err = executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)
}

func TestAuthHashReadsStdin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader("from stdin\n"))
	root.SetArgs([]string{"auth", "hash", "--stdin"})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(stdout.String(), "$argon2id$"))
}

func TestRosterSeedFileSeedsNewSessions(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "roster", "seed", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 24 delegations")

	rosterPath := filepath.Join(home, ".kamun", "roster.toml")
	require.NoError(t, os.WriteFile(rosterPath, []byte(`version = 1

[[delegations]]
country = "Iceland"
code = "IS"

[[delegations]]
country = "Norway"
code = "no"
`), 0o600))

	_, _, err = executeCLI(t, home, "roster", "seed", "init")
	require.Error(t, err, "a customized roster is not overwritten without --force")

	stdout, _, err = executeCLI(t, home, "session", "new", "Nordic council")
	require.NoError(t, err)
	assert.Contains(t, stdout, "roster: 2 delegations")

	stdout, _, err = executeCLI(t, home, "roster", "list", "--json")
	require.NoError(t, err)
	var entries []domain.RosterEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "https://flagcdn.com/w80/is.png", entries[0].FlagURL)
}

func TestSQLiteCacheDriver(t *testing.T) {
	home := t.TempDir()
	t.Setenv("KAMUN_CACHE_DRIVER", "sqlite")

	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "agenda", "set", "Disarmament")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Disarmament")
	assert.FileExists(t, filepath.Join(home, ".kamun", "cache", "kamun.db"))
}

func TestWatchShowsPresentationDashboard(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "session", "new", "Plenary")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "watch", "--for", "50ms", "--interval", "10ms")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stage: dashboard")
	assert.Equal(t, 1, strings.Count(stdout, "kamun: Plenary"), "an unchanged dashboard is painted once")
}

func TestUnknownCacheDriverFailsWiring(t *testing.T) {
	t.Setenv("KAMUN_CACHE_DRIVER", "redis")

	_, _, err := executeCLI(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported cache driver "redis"`)
}

func TestAuthRemoteKeyFallsBackToPrivateFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PATH", t.TempDir())
	keyPath := filepath.Join(home, ".kamun", "credentials", "remote-key.json")

	_, _, err := executeCLI(t, home, "auth", "remote-key", "set")
	require.ErrorIs(t, err, domain.ErrValidation)

	stdout, _, err := executeCLI(t, home, "auth", "remote-key", "set", "service-role-key-0123456789")
	require.NoError(t, err)
	assert.Equal(t, "Stored remote key\n", stdout)

	data, err := os.ReadFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, "service-role-key-0123456789", string(data))
	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	stdout, _, err = executeCLI(t, home, "auth", "remote-key", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Cleared remote key\n", stdout)
	assert.NoFileExists(t, keyPath)
}

func TestTimerFlagsWarningThreshold(t *testing.T) {
	tests := []struct {
		name  string
		flags timerFlags
		kind  domain.TimerKind
		want  domain.TimerConfig
	}{
		{name: "defaults", flags: timerFlags{warnAt: domain.KeepWarning}, kind: domain.TimerUnmoderated, want: domain.TimerConfig{Total: 300, WarnAt: 30}},
		{name: "warn zero turns the cue off", flags: timerFlags{warnAt: 0}, kind: domain.TimerReply, want: domain.TimerConfig{Total: 60}},
		{name: "short total drops the default warning", flags: timerFlags{total: 20, warnAt: domain.KeepWarning}, kind: domain.TimerUnmoderated, want: domain.TimerConfig{Total: 20}},
		{name: "explicit warning wins", flags: timerFlags{total: 20, warnAt: 5}, kind: domain.TimerModerated, want: domain.TimerConfig{Total: 20, Speaker: 20, WarnAt: 5}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.flags.config(tc.kind))
		})
	}
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
