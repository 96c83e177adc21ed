package retrieve

import (
	"context"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/retrieval"
)

// Embedder vectorizes the question text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index answers similarity queries over embedded chunks.
type Index interface {
	Query(vector []float32, k int, floor float64) ([]retrieval.Hit, error)
}
