package domain

import (
	"context"
	"errors"
	"testing"
)

// stubEmbedder implements only Embedder (no batch endpoint).
type stubEmbedder struct {
	calls []string
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	s.calls = append(s.calls, text)
	return EmbeddingResult{Embedding: []float32{float32(len(text))}, PromptTokens: 1, TotalTokens: 2}, nil
}

// stubBatchEmbedder additionally implements BatchEmbedder.
type stubBatchEmbedder struct {
	stubEmbedder
	batchCalls [][]string
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.batchCalls = append(s.batchCalls, texts)
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{float32(len(texts[i]))}
	}
	return BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: len(texts)}, nil
}

func TestBatchFallback(t *testing.T) {
	e := &stubEmbedder{}

	res, err := BatchFallback(context.Background(), e, []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	if res.Embeddings[2][0] != 3 {
		t.Errorf("unexpected embedding: %v", res.Embeddings[2])
	}
	if res.PromptTokens != 3 || res.TotalTokens != 6 {
		t.Errorf("unexpected usage: prompt=%d total=%d", res.PromptTokens, res.TotalTokens)
	}
	if len(e.calls) != 3 {
		t.Errorf("expected 3 inner calls, got %d", len(e.calls))
	}
}

func TestBatchFallback_InnerError(t *testing.T) {
	wantErr := errors.New("provider down")
	e := &stubEmbedder{err: wantErr}

	if _, err := BatchFallback(context.Background(), e, []string{"a"}); !errors.Is(err, wantErr) {
		t.Fatalf("expected inner error, got %v", err)
	}
}

func TestInstructionEmbedder_Embed(t *testing.T) {
	inner := &stubEmbedder{}
	e := NewInstructionEmbedder(inner, "query: ")

	if _, err := e.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.calls) != 1 || inner.calls[0] != "query: hello" {
		t.Errorf("unexpected inner calls: %v", inner.calls)
	}
}

func TestInstructionEmbedder_BatchUsesInnerBatch(t *testing.T) {
	inner := &stubBatchEmbedder{}
	e := NewInstructionEmbedder(inner, "doc: ")

	res, err := e.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}

	if len(inner.batchCalls) != 1 {
		t.Fatalf("expected one batch call, got %d", len(inner.batchCalls))
	}
	if inner.batchCalls[0][0] != "doc: a" || inner.batchCalls[0][1] != "doc: b" {
		t.Errorf("unexpected prefixed texts: %v", inner.batchCalls[0])
	}
	if len(inner.calls) != 0 {
		t.Error("batch-capable inner must not receive single Embed calls")
	}
}

func TestInstructionEmbedder_BatchFallsBack(t *testing.T) {
	inner := &stubEmbedder{}
	e := NewInstructionEmbedder(inner, "doc: ")

	res, err := e.BatchEmbed(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	if len(inner.calls) != 2 || inner.calls[0] != "doc: x" {
		t.Errorf("unexpected inner calls: %v", inner.calls)
	}
}
