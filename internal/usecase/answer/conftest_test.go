package answer

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/chunk"
	"github.com/kailas-cloud/docchat/internal/domain/retrieval"
)

type mockGenerator struct {
	result   domain.GenerationResult
	errs     []error // consumed one per call, nil entry means success
	calls    int
	lastReq  domain.GenerationRequest
	finalErr error // returned once errs is exhausted
}

func (m *mockGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	m.lastReq = req
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return domain.GenerationResult{}, err
		}
		return m.result, nil
	}
	if m.finalErr != nil {
		return domain.GenerationResult{}, m.finalErr
	}
	return m.result, nil
}

func newTestService(gen *mockGenerator, maxRetries int) *Service {
	cfg := Config{MaxRetries: maxRetries, Provider: "openai", Model: "gpt-3.5-turbo"}
	return New(gen, cfg, nil, zap.NewNop())
}

func testHit(t *testing.T, id, source, text string, score float64) retrieval.Hit {
	t.Helper()
	c, err := chunk.New(id, text, source, chunk.Locator{})
	if err != nil {
		t.Fatalf("failed to create chunk: %v", err)
	}
	return retrieval.NewHit(c, score)
}
