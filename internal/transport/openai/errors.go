package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/docchat/internal/domain"
)

// parseAPIError maps a go-openai error onto the domain error taxonomy.
// fallback is the sentinel for the failing operation kind (embedding or
// generation); 429 and context-length failures get their own sentinels so
// callers can retry or shrink the prompt.
func parseAPIError(err error, fallback error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		wrap := classify(apiErr.HTTPStatusCode, apiErrorCode(apiErr), apiErr.Message, fallback)
		return fmt.Errorf("API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := string(reqErr.Body)
		if detail := extractDetail(reqErr.Body); detail != "" {
			body = detail
		}
		wrap := classify(reqErr.HTTPStatusCode, "", body, fallback)
		return fmt.Errorf("API error %d: %s: %w", reqErr.HTTPStatusCode, body, wrap)
	}

	return fmt.Errorf("request failed: %v: %w", err, fallback)
}

func classify(status int, code, message string, fallback error) error {
	if status == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	if code == "context_length_exceeded" || strings.Contains(message, "context length") {
		return domain.ErrContextLengthExceeded
	}
	return fallback
}

// apiErrorCode normalizes the Code field, which the API returns as either a
// string or a number.
func apiErrorCode(apiErr *openai.APIError) string {
	if s, ok := apiErr.Code.(string); ok {
		return s
	}
	return ""
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
