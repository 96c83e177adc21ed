package docchat

import (
	"context"
	"time"
)

// Embedder is the public text vectorization contract for custom providers.
type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// Embedding is one embedding vector with its token usage.
type Embedding struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// Generator is the public completion contract for custom providers.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Completion, error)
}

// Completion is one generated reply with its token usage.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Report summarizes one ingested document.
type Report struct {
	Source string
	Chunks int
	Tokens int
}

// Stats describes the current index contents.
type Stats struct {
	Chunks    int
	Dimension int
	Sources   []string
}

// Answer is the reply to one question.
type Answer struct {
	Text             string
	Sources          []string
	Language         string
	EmbeddingTokens  int
	GenerationTokens int
}

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
	Sources  []string
	AskedAt  time.Time
}
