package domain

import "context"

// Generator is the answer generation contract. Implementations call an
// external chat-completion service.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// GenerationRequest is a single prompt for the generation provider.
type GenerationRequest struct {
	System string
	Prompt string
}

// GenerationResult carries the answer text and token usage.
type GenerationResult struct {
	Answer           string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
