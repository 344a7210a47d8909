package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "cache key is empty"},
		{name: "whitespace", key: "   ", wantErr: "cache key is empty"},
		{name: "empty segment", key: "kamun::s1", wantErr: "invalid cache key"},
		{name: "traversal", key: "kamun:..:escape", wantErr: "invalid cache key"},
		{name: "slash", key: "kamun:../../etc", wantErr: "invalid cache key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.key, "value")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	key := "kamun:attendance:session-1"
	want := `[{"id":"1","country_name":"France"}]`

	require.NoError(t, store.Put(context.Background(), key, want))

	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Join(root, "kamun", "attendance", "session-1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(cacheFileMode), info.Mode().Perm())
}

func TestStorePutOverwritesPreviousValue(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	key := "kamun:sessions"

	require.NoError(t, store.Put(context.Background(), key, "[]"))
	require.NoError(t, store.Put(context.Background(), key, `[{"id":"s1"}]`))

	got, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"s1"}]`, got)
}

func TestStoreGetMissingKeyReturnsCacheMiss(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	_, err := store.Get(context.Background(), "kamun:resolutions:nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestStoreDeleteIsIdempotentWhenKeyMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	key := "kamun:caucus_log:session-1"

	require.NoError(t, store.Put(context.Background(), key, "[]"))
	require.NoError(t, store.Delete(context.Background(), key))
	require.NoError(t, store.Delete(context.Background(), key))

	_, err := store.Get(context.Background(), key)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, "kamun:sessions", "[]")
	assert.ErrorIs(t, err, context.Canceled)
}
