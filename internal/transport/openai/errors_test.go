package openai

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/docchat/internal/domain"
)

func TestParseAPIError_RateLimit(t *testing.T) {
	apiErr := &openai.APIError{
		HTTPStatusCode: http.StatusTooManyRequests,
		Message:        "Rate limit reached",
	}

	err := parseAPIError(apiErr, domain.ErrEmbeddingFailed)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestParseAPIError_ContextLength(t *testing.T) {
	tests := []struct {
		name   string
		apiErr *openai.APIError
	}{
		{
			name: "by code",
			apiErr: &openai.APIError{
				HTTPStatusCode: http.StatusBadRequest,
				Code:           "context_length_exceeded",
				Message:        "too long",
			},
		},
		{
			name: "by message",
			apiErr: &openai.APIError{
				HTTPStatusCode: http.StatusBadRequest,
				Message:        "This model's maximum context length is 4097 tokens",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := parseAPIError(tc.apiErr, domain.ErrGenerationFailed)
			if !errors.Is(err, domain.ErrContextLengthExceeded) {
				t.Fatalf("expected ErrContextLengthExceeded, got %v", err)
			}
		})
	}
}

func TestParseAPIError_FallbackSentinel(t *testing.T) {
	apiErr := &openai.APIError{
		HTTPStatusCode: http.StatusInternalServerError,
		Message:        "server error",
	}

	err := parseAPIError(apiErr, domain.ErrGenerationFailed)
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Fatal("server error must not map to ErrRateLimited")
	}
}

func TestParseAPIError_RequestErrorDetail(t *testing.T) {
	reqErr := &openai.RequestError{
		HTTPStatusCode: http.StatusBadGateway,
		Body:           []byte(`{"detail":"upstream timeout"}`),
	}

	err := parseAPIError(reqErr, domain.ErrEmbeddingFailed)
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "upstream timeout") {
		t.Errorf("expected detail in error message, got %q", got)
	}
}

func TestParseAPIError_PlainError(t *testing.T) {
	err := parseAPIError(errors.New("dial tcp: timeout"), domain.ErrEmbeddingFailed)
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
}
