// Package chunker splits document text into overlapping pieces sized for
// embedding. Boundaries snap to the strongest separator available in the
// second half of the window: paragraph break, newline, sentence end, space.
package chunker

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/kailas-cloud/docchat/internal/domain"
)

// Chunker is an immutable text splitter. Safe for concurrent use.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. size is the window length in runes, overlap the
// number of runes carried over between consecutive chunks.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", size, domain.ErrInvalidConfig)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d: %w", overlap, domain.ErrInvalidConfig)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than size %d: %w", overlap, size, domain.ErrInvalidConfig)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunks yields trimmed chunks of text in order. Whitespace-only pieces are
// skipped, so empty input yields nothing.
func (c *Chunker) Chunks(text string) iter.Seq[string] {
	runes := []rune(text)
	return func(yield func(string) bool) {
		start := 0
		for start < len(runes) {
			if start+c.size >= len(runes) {
				if piece := strings.TrimSpace(string(runes[start:])); piece != "" {
					yield(piece)
				}
				return
			}

			end := start + c.cut(runes[start:start+c.size])
			if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
				if !yield(piece) {
					return
				}
			}

			next := end - c.overlap
			if next <= start {
				next = end
			}
			start = next
		}
	}
}

// Split collects all chunks into a slice.
func (c *Chunker) Split(text string) []string {
	return slices.Collect(c.Chunks(text))
}

// cut returns the boundary (rune count) for a full window. Separators are
// only considered in the second half so chunks never shrink below half the
// configured size.
func (c *Chunker) cut(window []rune) int {
	half := len(window) / 2

	for i := len(window) - 1; i > half; i-- {
		if window[i] == '\n' && window[i-1] == '\n' {
			return i + 1
		}
	}
	for i := len(window) - 1; i >= half; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}
	for i := len(window) - 1; i >= half; i-- {
		if isSentenceEnd(window[i]) {
			return i + 1
		}
	}
	for i := len(window) - 1; i >= half; i-- {
		if window[i] == ' ' {
			return i + 1
		}
	}
	return len(window)
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', ';', '。', '！', '？', '；':
		return true
	}
	return false
}
