package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passCall struct {
	input string
	args  []string
}

func recordingStore(prefix, stdout, stderr string, err error) (*Store, *[]passCall) {
	var calls []passCall
	return &Store{
		prefix: prefix,
		run: func(_ context.Context, input string, args ...string) (string, string, error) {
			calls = append(calls, passCall{input: input, args: args})
			return stdout, stderr, err
		},
	}, &calls
}

func TestStoreCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func(*Store) error
		want passCall
	}{
		{
			name: "put inserts a multiline entry",
			call: func(s *Store) error { return s.Put(context.Background(), "remote-key", "service-role-key") },
			want: passCall{input: "service-role-key\n", args: []string{"insert", "--multiline", "--force", "kamun/remote-key"}},
		},
		{
			name: "get shows the entry",
			call: func(s *Store) error {
				_, err := s.Get(context.Background(), "remote-key")
				return err
			},
			want: passCall{args: []string{"show", "kamun/remote-key"}},
		},
		{
			name: "delete removes the entry",
			call: func(s *Store) error { return s.Delete(context.Background(), "remote-key") },
			want: passCall{args: []string{"rm", "--force", "kamun/remote-key"}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store, calls := recordingStore(DefaultPrefix, "", "", nil)
			require.NoError(t, tc.call(store))
			assert.Equal(t, []passCall{tc.want}, *calls)
		})
	}
}

func TestStoreGetReturnsFirstLineOfEntry(t *testing.T) {
	t.Parallel()

	store, calls := recordingStore("committee", "service-role-key\r\nurl: https://example.supabase.co\n", "", nil)

	value, err := store.Get(context.Background(), "remote-key")
	require.NoError(t, err)
	assert.Equal(t, "service-role-key", value)
	assert.Equal(t, []string{"show", "committee/remote-key"}, (*calls)[0].args)
}

func TestStoreGetMissingEntryIsACacheMiss(t *testing.T) {
	t.Parallel()

	store, _ := recordingStore(DefaultPrefix, "", "Error: kamun/remote-key is not in the password store.", errors.New("exit status 1"))

	_, err := store.Get(context.Background(), "remote-key")
	require.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.ErrorContains(t, err, "kamun/remote-key")
}

func TestStoreReportsCommandFailures(t *testing.T) {
	t.Parallel()

	store, _ := recordingStore(DefaultPrefix, "", "gpg: decryption failed: No secret key", errors.New("exit status 2"))

	_, err := store.Get(context.Background(), "remote-key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
	assert.ErrorContains(t, err, "pass show")
	assert.ErrorContains(t, err, "No secret key")

	store, _ = recordingStore(DefaultPrefix, "", "", ErrUnavailable)
	require.ErrorIs(t, store.Put(context.Background(), "remote-key", "v"), ErrUnavailable)
}

func TestStoreRejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	store := &Store{
		prefix: DefaultPrefix,
		run: func(context.Context, string, ...string) (string, string, error) {
			t.Fatal("pass must not run for an invalid key")
			return "", "", nil
		},
	}

	for _, key := range []string{"", "  ", "../gpg-id"} {
		_, err := store.Get(context.Background(), key)
		require.Error(t, err, key)
	}
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store, calls := recordingStore(DefaultPrefix, "", "", nil)

	require.ErrorIs(t, store.Delete(ctx, "remote-key"), context.Canceled)
	assert.Empty(t, *calls)
}

func TestNewStoreDefaultsPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultPrefix, NewStore(" ").prefix)
	assert.Equal(t, "mun", NewStore("mun").prefix)
}
