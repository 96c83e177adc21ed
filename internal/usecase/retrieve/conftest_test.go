package retrieve

import (
	"context"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/retrieval"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	return m.result, m.err
}

type mockIndex struct {
	hits  []retrieval.Hit
	err   error
	gotK  int
	gotFl float64
}

func (m *mockIndex) Query(_ []float32, k int, floor float64) ([]retrieval.Hit, error) {
	m.gotK = k
	m.gotFl = floor
	return m.hits, m.err
}
