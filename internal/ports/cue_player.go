package ports

import (
	"context"

	"github.com/Subha2009/kamun-software/internal/domain"
)

type CuePlayer interface {
	EmitCue(ctx context.Context, kind domain.CueKind) error
}
