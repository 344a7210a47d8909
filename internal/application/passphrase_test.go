package application

import (
	"testing"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testArgon2Params = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashPassphraseRoundTrip(t *testing.T) {
	t.Parallel()

	encoded, err := HashPassphrase("gavel", testArgon2Params)
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$m=1024,t=1,p=1$")

	require.NoError(t, VerifyPassphrase(encoded, "gavel"))
	require.ErrorIs(t, VerifyPassphrase(encoded, "Gavel"), domain.ErrInvalidPassphrase)
}

func TestHashPassphraseRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := HashPassphrase("", testArgon2Params)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerifyPassphraseRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "wrong algorithm", encoded: "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{name: "wrong version", encoded: "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{name: "bad params", encoded: "$argon2id$v=19$memory$c2FsdA$a2V5"},
		{name: "bad salt", encoded: "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, VerifyPassphrase(tc.encoded, "gavel"), ErrMalformedPassphraseHash)
		})
	}
}
