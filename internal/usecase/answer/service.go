// Package answer assembles the model prompt from retrieved context and
// conversation history, and generates the reply with retry on transient
// provider failures.
package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/conversation"
	"github.com/kailas-cloud/docchat/internal/domain/language"
	"github.com/kailas-cloud/docchat/internal/domain/retrieval"
)

// Config holds generation retry settings and metric label values.
type Config struct {
	MaxRetries int
	Provider   string
	Model      string
}

// Service generates answers from retrieved context.
type Service struct {
	gen          Generator
	cfg          Config
	retriesTotal *prometheus.CounterVec
	logger       *zap.Logger
}

// New creates an answer service.
// retriesTotal is a counter vec with labels "provider" and "model", passed explicitly.
func New(gen Generator, cfg Config, retriesTotal *prometheus.CounterVec, logger *zap.Logger) *Service {
	return &Service{gen: gen, cfg: cfg, retriesTotal: retriesTotal, logger: logger}
}

// Request is one answer generation call.
type Request struct {
	Question string
	Hits     []retrieval.Hit
	History  []conversation.Turn
	Language language.Language
}

// Result is the generated answer with its cited sources and token usage.
type Result struct {
	Answer           string
	Sources          []string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Answer builds the prompt and calls the generator. Rate limits and transient
// provider errors are retried with exponential backoff; an oversized prompt
// fails immediately.
func (s *Service) Answer(ctx context.Context, req Request) (Result, error) {
	if req.Question == "" {
		return Result{}, fmt.Errorf("question is required")
	}

	genReq := domain.GenerationRequest{
		Prompt: buildPrompt(req.Language, req.Hits, req.History, req.Question),
	}

	operation := func() (domain.GenerationResult, error) {
		res, err := s.gen.Generate(ctx, genReq)
		if err != nil {
			if errors.Is(err, domain.ErrContextLengthExceeded) {
				return domain.GenerationResult{}, backoff.Permanent(err)
			}
			return domain.GenerationResult{}, err
		}
		return res, nil
	}

	notify := func(err error, wait time.Duration) {
		if s.retriesTotal != nil {
			s.retriesTotal.WithLabelValues(s.cfg.Provider, s.cfg.Model).Inc()
		}
		s.logger.Warn("Retrying answer generation",
			zap.Error(err), zap.Duration("backoff", wait))
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.cfg.MaxRetries)),
		ctx,
	)

	genRes, err := backoff.RetryNotifyWithData(operation, bo, notify)
	if err != nil {
		return Result{}, domain.NewStageError(domain.StageGenerate, fmt.Errorf("generate answer: %w", err))
	}

	return Result{
		Answer:           genRes.Answer,
		Sources:          retrieval.Sources(req.Hits),
		PromptTokens:     genRes.PromptTokens,
		CompletionTokens: genRes.CompletionTokens,
		TotalTokens:      genRes.TotalTokens,
	}, nil
}
