package answer

import (
	"context"

	"github.com/kailas-cloud/docchat/internal/domain"
)

// Generator produces a completion for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}
