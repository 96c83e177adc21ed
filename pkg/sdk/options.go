package docchat

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string
	db       int

	keyPrefix string

	apiKey         string
	baseURL        string
	embeddingModel string
	chatModel      string
	maxRetries     int
	cacheTTL       time.Duration

	embedder  Embedder
	generator Generator

	chunkSize    int
	chunkOverlap int

	topK       int
	scoreFloor float64

	language     string
	historyTurns int
	temperature  float64
	maxTokens    int

	logger *zap.Logger
}

// WithRedis configures the embedding cache and index snapshot store.
// Without it the client runs memory-only.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithOpenAI sets the OpenAI API key used for embeddings and completions.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
	})
}

// WithBaseURL points the OpenAI client at a compatible endpoint.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithModels sets the embedding and chat completion models.
// Defaults: text-embedding-ada-002 and gpt-3.5-turbo.
func WithModels(embeddingModel, chatModel string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingModel = embeddingModel
		c.chatModel = chatModel
	})
}

// WithEmbedder sets a custom embedding provider instead of OpenAI.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets a custom completion provider instead of OpenAI.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithChunking sets the chunk size and overlap in runes.
// Defaults: 1000 and 200.
func WithChunking(size, overlap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = size
		c.chunkOverlap = overlap
	})
}

// WithRetrieval sets how many chunks are retrieved per question and the
// minimum cosine similarity. Defaults: 4 and 0.7.
func WithRetrieval(topK int, scoreFloor float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = topK
		c.scoreFloor = scoreFloor
	})
}

// WithLanguage sets the default session language: auto, zh or en.
// Default: auto (detected from the first question).
func WithLanguage(lang string) Option {
	return optionFunc(func(c *clientConfig) {
		c.language = lang
	})
}

// WithHistoryTurns sets how many past turns feed into each question.
// Default: 3.
func WithHistoryTurns(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.historyTurns = n
	})
}

// WithGeneration sets completion sampling parameters.
// Defaults: temperature 0.7, 1024 max tokens.
func WithGeneration(temperature float64, maxTokens int) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = temperature
		c.maxTokens = maxTokens
	})
}

// WithMaxRetries sets how many times a failed completion is retried.
// Default: 3.
func WithMaxRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = n
	})
}

// WithKeyPrefix namespaces every key the client writes to the store.
// Default: "docchat:". Only effective together with WithRedis.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithCacheTTL sets the embedding cache entry lifetime. 0 keeps entries
// forever. Only effective together with WithRedis.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
