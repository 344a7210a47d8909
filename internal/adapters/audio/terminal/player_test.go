package terminal

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("terminal closed")
}

func TestPlayerRingsPerCue(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	player := NewPlayer(&out)

	require.NoError(t, player.EmitCue(context.Background(), domain.CueWarning))
	assert.Equal(t, "\a", out.String())

	out.Reset()
	require.NoError(t, player.EmitCue(context.Background(), domain.CueExpiry))
	assert.Equal(t, "\a\a", out.String())
}

func TestPlayerErrors(t *testing.T) {
	t.Parallel()

	err := NewPlayer(&bytes.Buffer{}).EmitCue(context.Background(), domain.CueKind("gong"))
	require.Error(t, err)

	err = NewPlayer(failingWriter{}).EmitCue(context.Background(), domain.CueWarning)
	require.ErrorContains(t, err, "terminal closed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewPlayer(&bytes.Buffer{}).EmitCue(ctx, domain.CueWarning)
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, Silent{}.EmitCue(context.Background(), domain.CueExpiry))
}
