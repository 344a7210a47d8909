package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Subha2009/kamun-software/internal/domain"
	"github.com/Subha2009/kamun-software/internal/ports"
)

const bell = "\a"

// Player rings the terminal bell: once for a warning, twice on expiry.
type Player struct {
	mu  sync.Mutex
	out io.Writer
}

var _ ports.CuePlayer = (*Player)(nil)

func NewPlayer(out io.Writer) *Player {
	return &Player{out: out}
}

func (p *Player) EmitCue(ctx context.Context, kind domain.CueKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var rings int
	switch kind {
	case domain.CueWarning:
		rings = 1
	case domain.CueExpiry:
		rings = 2
	default:
		return fmt.Errorf("emit cue: unknown kind %q", kind)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.out, strings.Repeat(bell, rings)); err != nil {
		return fmt.Errorf("emit %s cue: %w", kind, err)
	}
	return nil
}

// Silent discards every cue.
type Silent struct{}

var _ ports.CuePlayer = Silent{}

func (Silent) EmitCue(context.Context, domain.CueKind) error {
	return nil
}
