package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/chunker"
	"github.com/kailas-cloud/docchat/internal/config"
	dbRedis "github.com/kailas-cloud/docchat/internal/db/redis"
	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/language"
	"github.com/kailas-cloud/docchat/internal/index"
	"github.com/kailas-cloud/docchat/internal/loader"
	logpkg "github.com/kailas-cloud/docchat/internal/logger"
	"github.com/kailas-cloud/docchat/internal/metrics"
	"github.com/kailas-cloud/docchat/internal/repository/embcache"
	"github.com/kailas-cloud/docchat/internal/repository/snapshot"
	chiTransport "github.com/kailas-cloud/docchat/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/docchat/internal/transport/openai"
	"github.com/kailas-cloud/docchat/internal/usecase/answer"
	chatuc "github.com/kailas-cloud/docchat/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/docchat/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docchat/internal/usecase/ingest"
	"github.com/kailas-cloud/docchat/internal/usecase/retrieve"
	"github.com/kailas-cloud/docchat/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docchat API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.OpenAI.EmbeddingModel),
		zap.Int("cache_ttl_sec", cfg.OpenAI.CacheTTLSeconds),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		Config: openaiTransport.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.ChatModel,
			Logger:  logger,
		},
		Temperature: cfg.Chat.Temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
	})

	split, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		logger.Fatal("Invalid chunking config", zap.Error(err))
	}

	docLoader := loader.New()
	fetcher := loader.NewFetcher(docLoader, &http.Client{
		Timeout: time.Duration(cfg.OpenAI.RequestTimeout) * time.Second,
	})

	idx := index.New()
	snapshots := snapshot.New(store, cfg.Storage.KeyPrefix)

	// Create use case services
	ingestSvc := ingestuc.New(docLoader, fetcher, split, embedder, idx, snapshots, logger)
	retrieveSvc := retrieve.New(embedder, idx, cfg.Retrieval.TopK, cfg.Retrieval.ScoreFloor)
	answerSvc := answer.New(generator, answer.Config{
		MaxRetries: cfg.OpenAI.MaxRetries,
		Provider:   "openai",
		Model:      cfg.OpenAI.ChatModel,
	}, metrics.GenerationRetriesTotal, logger)

	defaultLang, err := language.Parse(cfg.Chat.Language)
	if err != nil {
		logger.Fatal("Invalid chat language", zap.Error(err))
	}
	chatSvc := chatuc.New(retrieveSvc, answerSvc, chatuc.Config{
		DefaultLanguage: defaultLang,
		HistoryTurns:    cfg.Chat.HistoryTurns,
	}, logger)

	healthSvc := healthuc.New(store, newProviderHealthChecker(embedder))

	// Restore the index from the last snapshot, if one exists.
	switch restored, err := ingestSvc.Restore(ctx); {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		logger.Info("No index snapshot found, starting empty")
	case err != nil:
		logger.Warn("Failed to restore index snapshot", zap.Error(err))
	default:
		logger.Info("Index restored from snapshot", zap.Int("chunks", restored))
	}

	// Create chi server
	server := chiTransport.NewServer(ingestSvc, chatSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Snapshot the index so a restart picks up where we left off.
	if idx.Len() > 0 {
		if err := ingestSvc.Persist(shutdownCtx); err != nil {
			logger.Error("Failed to persist index on shutdown", zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction
func buildEmbedder(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) ingestEmbedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.EmbeddingModel,
		Logger:  logger,
	})

	cached := embcache.New(
		base, store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.OpenAI.CacheTTLSeconds)*time.Second,
		metrics.EmbeddingCacheTotal, logger,
	)

	// Instruction prefix (outermost — cache key includes instruction)
	if cfg.OpenAI.EmbeddingInstruction != "" {
		return domain.NewInstructionEmbedder(cached, cfg.OpenAI.EmbeddingInstruction)
	}

	return cached
}

// ingestEmbedder is what the pipeline needs from the embedder chain.
type ingestEmbedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// providerHealthChecker surfaces the provider health check when the embedder
// chain supports one.
type providerHealthChecker struct {
	embedder domain.Embedder
}

func newProviderHealthChecker(embedder domain.Embedder) *providerHealthChecker {
	return &providerHealthChecker{embedder: embedder}
}

func (h *providerHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("provider health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
