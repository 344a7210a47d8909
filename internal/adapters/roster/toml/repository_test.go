package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "roster.toml")
	repo, err := NewRepository(path)
	require.NoError(t, err)

	delegations := []domain.Delegation{
		{Country: "Chile", Code: "CL"},
		{Country: "Holy See"},
	}
	require.NoError(t, repo.Save(context.Background(), delegations))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Delegation{{Country: "Chile", Code: "cl"}, {Country: "Holy See"}}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(rosterFileMode), info.Mode().Perm())
}

func TestRepositoryMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "roster.toml"))
	require.NoError(t, err)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDelegations, got)

	got[0].Country = "Changed"
	assert.Equal(t, "United States", domain.DefaultDelegations[0].Country)
}

func TestRepositoryLoadRejectsInvalidFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "future schema",
			content: "version = 9\n",
			wantErr: "unsupported roster schema version 9",
		},
		{
			name:    "empty roster",
			content: "version = 1\n",
			wantErr: "delegations must not be empty",
		},
		{
			name:    "duplicate country",
			content: "[[delegations]]\ncountry = \"Peru\"\n\n[[delegations]]\ncountry = \"peru\"\n",
			wantErr: "listed twice",
		},
		{
			name:    "malformed toml",
			content: "[[delegations]\n",
			wantErr: "decode roster file",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "roster.toml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))
			repo, err := NewRepository(path)
			require.NoError(t, err)

			_, err = repo.Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRepositoryRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewRepository("  ")
	require.Error(t, err)
}
