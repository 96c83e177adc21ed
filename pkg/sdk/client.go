package docchat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/chunker"
	dbRedis "github.com/kailas-cloud/docchat/internal/db/redis"
	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/chunk"
	"github.com/kailas-cloud/docchat/internal/domain/conversation"
	"github.com/kailas-cloud/docchat/internal/domain/language"
	"github.com/kailas-cloud/docchat/internal/index"
	"github.com/kailas-cloud/docchat/internal/loader"
	"github.com/kailas-cloud/docchat/internal/metrics"
	"github.com/kailas-cloud/docchat/internal/repository/embcache"
	"github.com/kailas-cloud/docchat/internal/repository/snapshot"
	openaiTransport "github.com/kailas-cloud/docchat/internal/transport/openai"
	"github.com/kailas-cloud/docchat/internal/usecase/answer"
	chatuc "github.com/kailas-cloud/docchat/internal/usecase/chat"
	ingestuc "github.com/kailas-cloud/docchat/internal/usecase/ingest"
	"github.com/kailas-cloud/docchat/internal/usecase/retrieve"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type ingestUseCase interface {
	IngestDocument(ctx context.Context, name string, data []byte) (ingestuc.Report, error)
	IngestURL(ctx context.Context, url string) (ingestuc.Report, error)
	Stats() ingestuc.Stats
	Persist(ctx context.Context) error
	Restore(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

type chatUseCase interface {
	CreateSession(lang language.Language) *conversation.Session
	Ask(ctx context.Context, sessionID, question string) (chatuc.TurnResult, error)
	History(sessionID string) ([]conversation.Turn, error)
}

// Client is the docchat SDK entry point.
type Client struct {
	store     *dbRedis.Store
	ingestSvc ingestUseCase
	chatSvc   chatUseCase
}

// New creates a docchat Client. The provided context is used for the
// database readiness check when Redis is configured.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embeddingModel: "text-embedding-ada-002",
		chatModel:      "gpt-3.5-turbo",
		chunkSize:      1000,
		chunkOverlap:   200,
		topK:           4,
		scoreFloor:     0.7,
		language:       "auto",
		historyTurns:   3,
		temperature:    0.7,
		maxTokens:      1024,
		maxRetries:     3,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil && cfg.apiKey == "" {
		return nil, errors.New("docchat: API key required (use WithOpenAI or WithEmbedder)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	var store *dbRedis.Store
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
			DB:       cfg.db,
		})
		if err != nil {
			return nil, fmt.Errorf("docchat: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("docchat: database not ready: %w", err)
		}
		store = s
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return c, nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig) (*Client, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()

	var embedder interface {
		domain.Embedder
		domain.BatchEmbedder
	}
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	} else {
		embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:  cfg.apiKey,
			BaseURL: cfg.baseURL,
			Model:   cfg.embeddingModel,
			Logger:  cfg.logger,
		})
	}
	if store != nil {
		embedder = embcache.New(embedder, store, cfg.keyPrefix, cfg.cacheTTL, metrics.EmbeddingCacheTotal, cfg.logger)
	}

	var generator domain.Generator
	if cfg.generator != nil {
		generator = &generatorAdapter{inner: cfg.generator}
	} else {
		generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			Config: openaiTransport.Config{
				APIKey:  cfg.apiKey,
				BaseURL: cfg.baseURL,
				Model:   cfg.chatModel,
				Logger:  cfg.logger,
			},
			Temperature: cfg.temperature,
			MaxTokens:   cfg.maxTokens,
		})
	}

	split, err := chunker.New(cfg.chunkSize, cfg.chunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("docchat: chunking config: %w", err)
	}

	defaultLang, err := language.Parse(cfg.language)
	if err != nil {
		return nil, fmt.Errorf("docchat: %w", err)
	}

	docLoader := loader.New()
	fetcher := loader.NewFetcher(docLoader, &http.Client{Timeout: 60 * time.Second})

	idx := index.New()
	var snapshots ingestuc.SnapshotRepository = noopSnapshots{}
	if store != nil {
		snapshots = snapshot.New(store, cfg.keyPrefix)
	}

	ingestSvc := ingestuc.New(docLoader, fetcher, split, embedder, idx, snapshots, cfg.logger)
	retrieveSvc := retrieve.New(embedder, idx, cfg.topK, cfg.scoreFloor)
	answerSvc := answer.New(generator, answer.Config{
		MaxRetries: cfg.maxRetries,
		Provider:   "openai",
		Model:      cfg.chatModel,
	}, metrics.GenerationRetriesTotal, cfg.logger)
	chatSvc := chatuc.New(retrieveSvc, answerSvc, chatuc.Config{
		DefaultLanguage: defaultLang,
		HistoryTurns:    cfg.historyTurns,
	}, cfg.logger)

	return &Client{
		store:     store,
		ingestSvc: ingestSvc,
		chatSvc:   chatSvc,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity. A memory-only client always succeeds.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// IngestText splits, embeds and indexes a document given as a string.
// The name's extension selects the loader: .txt, .md or .html.
func (c *Client) IngestText(ctx context.Context, name, text string) (Report, error) {
	r, err := c.ingestSvc.IngestDocument(ctx, name, []byte(text))
	if err != nil {
		return Report{}, fmt.Errorf("ingest %s: %w", name, err)
	}
	return Report(r), nil
}

// IngestFile reads a document from disk and ingests it.
func (c *Client) IngestFile(ctx context.Context, path string) (Report, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Report{}, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := c.ingestSvc.IngestDocument(ctx, filepath.Base(path), data)
	if err != nil {
		return Report{}, fmt.Errorf("ingest %s: %w", path, err)
	}
	return Report(r), nil
}

// IngestURL fetches a remote document and ingests it.
func (c *Client) IngestURL(ctx context.Context, url string) (Report, error) {
	r, err := c.ingestSvc.IngestURL(ctx, url)
	if err != nil {
		return Report{}, fmt.Errorf("ingest %s: %w", url, err)
	}
	return Report(r), nil
}

// Stats returns the current index contents summary.
func (c *Client) Stats() Stats {
	return Stats(c.ingestSvc.Stats())
}

// Persist snapshots the index into Redis.
func (c *Client) Persist(ctx context.Context) error {
	if err := c.ingestSvc.Persist(ctx); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

// Restore loads the last index snapshot. Returns the number of restored
// chunks; ErrSnapshotNotFound when none exists.
func (c *Client) Restore(ctx context.Context) (int, error) {
	n, err := c.ingestSvc.Restore(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore: %w", err)
	}
	return n, nil
}

// Clear empties the index and deletes the snapshot.
func (c *Client) Clear(ctx context.Context) error {
	if err := c.ingestSvc.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// NewSession opens a conversation session and returns its ID.
// lang is auto, zh or en; auto pins the language on the first question.
func (c *Client) NewSession(lang string) (string, error) {
	l, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("new session: %w", err)
	}
	return c.chatSvc.CreateSession(l).ID(), nil
}

// Ask answers one question within a session.
func (c *Client) Ask(ctx context.Context, sessionID, question string) (Answer, error) {
	res, err := c.chatSvc.Ask(ctx, sessionID, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return Answer{
		Text:             res.Answer,
		Sources:          res.Sources,
		Language:         string(res.Language),
		EmbeddingTokens:  res.EmbeddingTokens,
		GenerationTokens: res.GenerationTokens,
	}, nil
}

// History returns the completed turns of a session, oldest first.
func (c *Client) History(sessionID string) ([]Turn, error) {
	turns, err := c.chatSvc.History(sessionID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	out := make([]Turn, len(turns))
	for i := range turns {
		out[i] = Turn{
			Question: turns[i].Question(),
			Answer:   turns[i].Answer(),
			Sources:  turns[i].Sources(),
			AskedAt:  turns[i].AskedAt(),
		}
	}
	return out, nil
}

// embedderAdapter wraps the public Embedder to satisfy the internal
// embedding contracts. Batch calls fall back to one request per text.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Vector,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, a, texts)
}

// generatorAdapter wraps the public Generator to satisfy domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(
	ctx context.Context, req domain.GenerationRequest,
) (domain.GenerationResult, error) {
	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}
	r, err := a.inner.Generate(ctx, prompt)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return domain.GenerationResult{
		Answer:           r.Text,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
	}, nil
}

// noopSnapshots backs a memory-only client: nothing to restore, nothing
// to delete, persisting is an error.
type noopSnapshots struct{}

func (noopSnapshots) Save(context.Context, []chunk.Chunk, int) error {
	return errors.New("docchat: snapshot store not configured (use WithRedis)")
}

func (noopSnapshots) Load(context.Context) ([]chunk.Chunk, error) {
	return nil, domain.ErrSnapshotNotFound
}

func (noopSnapshots) Delete(context.Context) error { return nil }
