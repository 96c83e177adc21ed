package chi

import (
	"time"

	"github.com/kailas-cloud/docchat/internal/domain/conversation"
	"github.com/kailas-cloud/docchat/internal/usecase/chat"
	"github.com/kailas-cloud/docchat/internal/usecase/ingest"
)

// Error codes returned to clients.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeUnauthorized        = "unauthorized"
	codeSessionNotFound     = "session_not_found"
	codeSessionBusy         = "session_busy"
	codeIndexEmpty          = "index_empty"
	codeSnapshotNotFound    = "snapshot_not_found"
	codeDimensionMismatch   = "dimension_mismatch"
	codeUnsupportedFormat   = "unsupported_format"
	codeContextTooLong      = "context_length_exceeded"
	codeRateLimited         = "rate_limited"
	codeEmbeddingProvider   = "embedding_provider_error"
	codeGenerationProvider  = "generation_provider_error"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

type ingestDocumentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type ingestURLRequest struct {
	URL string `json:"url"`
}

type ingestResponse struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
	Tokens int    `json:"tokens"`
}

type statsResponse struct {
	Chunks    int      `json:"chunks"`
	Dimension int      `json:"dimension"`
	Sources   []string `json:"sources"`
}

type persistResponse struct {
	Chunks int `json:"chunks"`
}

type createSessionRequest struct {
	Language string `json:"language,omitempty"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
	State     string `json:"state"`
}

type askRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer           string   `json:"answer"`
	Sources          []string `json:"sources"`
	Language         string   `json:"language"`
	EmbeddingTokens  int      `json:"embedding_tokens"`
	GenerationTokens int      `json:"generation_tokens"`
}

type turnItem struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Sources  []string  `json:"sources"`
	AskedAt  time.Time `json:"asked_at"`
}

type historyResponse struct {
	Items []turnItem `json:"items"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func ingestToResponse(r ingest.Report) ingestResponse {
	return ingestResponse{Source: r.Source, Chunks: r.Chunks, Tokens: r.Tokens}
}

func statsToResponse(s ingest.Stats) statsResponse {
	sources := s.Sources
	if sources == nil {
		sources = []string{}
	}
	return statsResponse{Chunks: s.Chunks, Dimension: s.Dimension, Sources: sources}
}

func turnResultToResponse(r chat.TurnResult) answerResponse {
	sources := r.Sources
	if sources == nil {
		sources = []string{}
	}
	return answerResponse{
		Answer:           r.Answer,
		Sources:          sources,
		Language:         string(r.Language),
		EmbeddingTokens:  r.EmbeddingTokens,
		GenerationTokens: r.GenerationTokens,
	}
}

func turnsToResponse(turns []conversation.Turn) historyResponse {
	items := make([]turnItem, len(turns))
	for i := range turns {
		sources := turns[i].Sources()
		if sources == nil {
			sources = []string{}
		}
		items[i] = turnItem{
			Question: turns[i].Question(),
			Answer:   turns[i].Answer(),
			Sources:  sources,
			AskedAt:  turns[i].AskedAt(),
		}
	}
	return historyResponse{Items: items}
}
