// Package retrieve turns a question into the chunks most relevant to it.
package retrieve

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/retrieval"
)

// Service embeds questions and queries the index.
type Service struct {
	embed Embedder
	index Index
	topK  int
	floor float64
}

// New creates a retrieval service. topK and floor are the defaults applied
// to every question.
func New(embed Embedder, index Index, topK int, floor float64) *Service {
	return &Service{embed: embed, index: index, topK: topK, floor: floor}
}

// Result carries the hits and the embedding token cost of one retrieval.
type Result struct {
	Hits   []retrieval.Hit
	Tokens int
}

// Retrieve embeds the question and returns the top matching chunks.
// Failures are annotated with the pipeline stage that produced them.
func (s *Service) Retrieve(ctx context.Context, question string) (Result, error) {
	if question == "" {
		return Result{}, fmt.Errorf("question is required")
	}

	embRes, err := s.embed.Embed(ctx, question)
	if err != nil {
		return Result{}, domain.NewStageError(domain.StageEmbed, fmt.Errorf("vectorize question: %w", err))
	}

	hits, err := s.index.Query(embRes.Embedding, s.topK, s.floor)
	if err != nil {
		return Result{}, domain.NewStageError(domain.StageRetrieve, fmt.Errorf("query index: %w", err))
	}

	return Result{Hits: hits, Tokens: embRes.TotalTokens}, nil
}
