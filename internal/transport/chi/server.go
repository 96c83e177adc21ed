package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/conversation"
	"github.com/kailas-cloud/docchat/internal/domain/language"
	chatuc "github.com/kailas-cloud/docchat/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/docchat/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docchat/internal/usecase/ingest"
)

// maxDocumentSize bounds an uploaded document body.
const maxDocumentSize = 16 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg, stage string) bool

// Server exposes the ingestion and chat pipelines over HTTP.
type Server struct {
	ingest        *ingestuc.Service
	chat          *chatuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	chat *chatuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest: ingest,
		chat:   chat,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound),
		sentinelHandler(conversation.ErrBusy, http.StatusConflict, codeSessionBusy),
		sentinelHandler(domain.ErrEmptyIndex, http.StatusConflict, codeIndexEmpty),
		sentinelHandler(domain.ErrSnapshotNotFound, http.StatusNotFound, codeSnapshotNotFound),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, codeDimensionMismatch),
		sentinelHandler(domain.ErrInvalidConfig, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, codeUnsupportedFormat),
		sentinelHandler(domain.ErrContextLengthExceeded, http.StatusRequestEntityTooLarge, codeContextTooLong),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingFailed, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, codeGenerationProvider),
	}
	return s
}

// Routes registers all API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/documents", s.IngestDocument)
	r.Post("/documents/url", s.IngestURL)
	r.Get("/index/stats", s.IndexStats)
	r.Post("/index/persist", s.PersistIndex)
	r.Delete("/index", s.ClearIndex)
	r.Post("/sessions", s.CreateSession)
	r.Post("/sessions/{session}/questions", s.AskQuestion)
	r.Get("/sessions/{session}/history", s.SessionHistory)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// IngestDocument handles POST /documents.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestDocumentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentSize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Document name is required")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Document content is required")
		return
	}

	report, err := s.ingest.IngestDocument(r.Context(), req.Name, []byte(req.Content))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestToResponse(report))
}

// IngestURL handles POST /documents/url.
func (s *Server) IngestURL(w http.ResponseWriter, r *http.Request) {
	var req ingestURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.URL == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "URL is required")
		return
	}

	report, err := s.ingest.IngestURL(r.Context(), req.URL)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestToResponse(report))
}

// IndexStats handles GET /index/stats.
func (s *Server) IndexStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsToResponse(s.ingest.Stats()))
}

// PersistIndex handles POST /index/persist.
func (s *Server) PersistIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.ingest.Persist(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, persistResponse{Chunks: s.ingest.Stats().Chunks})
}

// ClearIndex handles DELETE /index.
func (s *Server) ClearIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.ingest.Clear(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	lang, err := language.Parse(req.Language)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	sess := s.chat.CreateSession(lang)

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID(),
		Language:  string(sess.Language()),
		State:     string(sess.State()),
	})
}

// AskQuestion handles POST /sessions/{session}/questions.
func (s *Server) AskQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Question is required")
		return
	}

	res, err := s.chat.Ask(r.Context(), sessionID, req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turnResultToResponse(res))
}

// SessionHistory handles GET /sessions/{session}/history.
func (s *Server) SessionHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.chat.History(chi.URLParam(r, "session"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turnsToResponse(turns))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		conversation.ErrBusy,
		domain.ErrEmptyIndex,
		domain.ErrSnapshotNotFound,
		domain.ErrDimensionMismatch,
		domain.ErrInvalidConfig,
		domain.ErrUnsupportedFormat,
		domain.ErrContextLengthExceeded,
		domain.ErrRateLimited,
		domain.ErrEmbeddingFailed,
		domain.ErrGenerationFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg, stage string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSON(w, status, errorResponse{Code: code, Message: msg, Stage: stage})
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)

	stage := ""
	if st, ok := domain.StageOf(err); ok {
		stage = string(st)
	}

	for _, h := range s.errorHandlers {
		if h(w, err, msg, stage) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
