package chain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Subha2009/kamun-software/internal/adapters/credentials/pass"
	"github.com/Subha2009/kamun-software/internal/domain"
	portmocks "github.com/Subha2009/kamun-software/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const remoteKey = "remote-key"

func TestStoreGetReturnsFirstHit(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second)

	first.EXPECT().Get(mock.Anything, remoteKey).Return("", domain.ErrCacheMiss).Once()
	second.EXPECT().Get(mock.Anything, remoteKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), remoteKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetStopsAtFirstStore(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second)

	first.EXPECT().Get(mock.Anything, remoteKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), remoteKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetMissingEverywhereIsACacheMiss(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second)

	first.EXPECT().Get(mock.Anything, remoteKey).Return("", pass.ErrUnavailable).Once()
	second.EXPECT().Get(mock.Anything, remoteKey).Return("", errors.New("open credentials: "+domain.ErrCacheMiss.Error())).Once()

	_, err := store.Get(context.Background(), remoteKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss, "a store failure is not reported as a miss")

	first.EXPECT().Get(mock.Anything, remoteKey).Return("", pass.ErrUnavailable).Once()
	second.EXPECT().Get(mock.Anything, remoteKey).Return("", domain.ErrCacheMiss).Once()

	_, err = store.Get(context.Background(), remoteKey)
	require.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.ErrorContains(t, err, remoteKey)
}

func TestStoreGetJoinsStoreFailures(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second)

	first.EXPECT().Get(mock.Anything, remoteKey).Return("", errors.New("gpg failed")).Once()
	second.EXPECT().Get(mock.Anything, remoteKey).Return("", errors.New("permission denied")).Once()

	_, err := store.Get(context.Background(), remoteKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "store 1: gpg failed")
	assert.ErrorContains(t, err, "store 2: permission denied")
}

func TestStorePutLandsInFirstAcceptingStore(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second)

	first.EXPECT().Put(mock.Anything, remoteKey, "secret").Return(pass.ErrUnavailable).Once()
	second.EXPECT().Put(mock.Anything, remoteKey, "secret").Return(nil).Once()
	require.NoError(t, store.Put(context.Background(), remoteKey, "secret"))

	first.EXPECT().Put(mock.Anything, remoteKey, "secret").Return(nil).Once()
	require.NoError(t, store.Put(context.Background(), remoteKey, "secret"))
}

func TestStoreDeleteClearsEveryStore(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second)

	first.EXPECT().Delete(mock.Anything, remoteKey).Return(pass.ErrUnavailable).Once()
	second.EXPECT().Delete(mock.Anything, remoteKey).Return(nil).Once()
	require.NoError(t, store.Delete(context.Background(), remoteKey))

	first.EXPECT().Delete(mock.Anything, remoteKey).Return(errors.New("pass failed")).Once()
	second.EXPECT().Delete(mock.Anything, remoteKey).Return(errors.New("read-only")).Once()
	require.ErrorContains(t, store.Delete(context.Background(), remoteKey), "read-only")
}

func TestStoreStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second)

	first.EXPECT().Get(mock.Anything, remoteKey).Return("", context.Canceled).Once()
	first.EXPECT().Put(mock.Anything, remoteKey, "secret").Return(context.DeadlineExceeded).Once()

	_, err := store.Get(context.Background(), remoteKey)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Put(context.Background(), remoteKey, "secret"), context.DeadlineExceeded)
}

func TestNewStoreCheckedRejectsMissingStores(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked()
	require.ErrorIs(t, err, errNoStores)
	_, err = NewStoreChecked(portmocks.NewMockSecretStore(t), nil)
	require.ErrorContains(t, err, "credential store 2 is nil")
}

func TestPassStoreFallsBackToFilesWithoutPass(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	root := t.TempDir()

	store, err := NewPassWithFileFallback("kamun", root)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), remoteKey)
	require.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, store.Put(context.Background(), remoteKey, "service-role-key"))
	value, err := store.Get(context.Background(), remoteKey)
	require.NoError(t, err)
	assert.Equal(t, "service-role-key", value)

	info, err := os.Stat(filepath.Join(root, remoteKey+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Delete(context.Background(), remoteKey))
	_, err = store.Get(context.Background(), remoteKey)
	require.ErrorIs(t, err, domain.ErrCacheMiss)
}
