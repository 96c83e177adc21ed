package chunk

import "fmt"

// MaxTextSize is the maximum chunk text size in bytes.
const MaxTextSize = 163840 // 160KB

// Locator pins a chunk to a position inside its source document.
type Locator struct {
	Page   int `json:"page,omitempty"`
	Offset int `json:"offset"`
}

// Chunk is the unit of embedding and retrieval (immutable value object).
// The vector is attached by the embedding provider before the chunk enters
// the index; once stored, the index owns the chunk exclusively.
type Chunk struct {
	id      string
	text    string
	source  string
	locator Locator
	vector  []float32
}

// New validates and creates a Chunk.
func New(id, text, source string, locator Locator) (Chunk, error) {
	if id == "" {
		return Chunk{}, fmt.Errorf("chunk ID is required")
	}
	if text == "" {
		return Chunk{}, fmt.Errorf("chunk text is required")
	}
	if len(text) > MaxTextSize {
		return Chunk{}, fmt.Errorf("chunk text too large (max %d bytes)", MaxTextSize)
	}
	if source == "" {
		return Chunk{}, fmt.Errorf("chunk source is required")
	}
	return Chunk{id: id, text: text, source: source, locator: locator}, nil
}

// Reconstruct creates a Chunk without validation (storage hydration).
func Reconstruct(id, text, source string, locator Locator, vector []float32) Chunk {
	return Chunk{id: id, text: text, source: source, locator: locator, vector: vector}
}

// ID returns the chunk identifier.
func (c Chunk) ID() string { return c.id }

// Text returns the chunk text.
func (c Chunk) Text() string { return c.text }

// Source returns the originating document name or URL.
func (c Chunk) Source() string { return c.source }

// Locator returns the position of the chunk inside its source.
func (c Chunk) Locator() Locator { return c.locator }

// Vector returns the embedding vector, nil until embedded.
func (c Chunk) Vector() []float32 { return c.vector }

// WithVector returns a copy with the given embedding attached.
func (c Chunk) WithVector(v []float32) Chunk {
	return Chunk{id: c.id, text: c.text, source: c.source, locator: c.locator, vector: v}
}
