// Package index provides the in-memory vector index backing retrieval.
// Search is exact brute-force cosine similarity, which is the right trade
// for document-chat corpora (thousands of chunks, not millions).
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/chunk"
	"github.com/kailas-cloud/docchat/internal/domain/retrieval"
)

// Index stores embedded chunks and answers similarity queries.
// Safe for concurrent use. The vector dimension is fixed by the first
// upsert and enforced afterwards.
type Index struct {
	mu     sync.RWMutex
	dim    int
	chunks []chunk.Chunk
	byID   map[string]int
}

// New creates an empty index.
func New() *Index {
	return &Index{byID: make(map[string]int)}
}

// Upsert inserts or replaces chunks by ID. All chunks are validated before
// any mutation, so a dimension mismatch leaves the index untouched.
func (ix *Index) Upsert(chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim := ix.dim
	for i := range chunks {
		v := chunks[i].Vector()
		if len(v) == 0 {
			return fmt.Errorf("chunk %s has no vector", chunks[i].ID())
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return fmt.Errorf("chunk %s has dimension %d, index expects %d: %w",
				chunks[i].ID(), len(v), dim, domain.ErrDimensionMismatch)
		}
	}

	ix.dim = dim
	for i := range chunks {
		if pos, ok := ix.byID[chunks[i].ID()]; ok {
			ix.chunks[pos] = chunks[i]
			continue
		}
		ix.byID[chunks[i].ID()] = len(ix.chunks)
		ix.chunks = append(ix.chunks, chunks[i])
	}
	return nil
}

// Query returns up to k hits with cosine similarity >= floor, ordered by
// score descending. Ties keep insertion order. Querying an empty index
// returns ErrEmptyIndex.
func (ix *Index) Query(vector []float32, k int, floor float64) ([]retrieval.Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.chunks) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("query has dimension %d, index expects %d: %w",
			len(vector), ix.dim, domain.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]retrieval.Hit, 0, len(ix.chunks))
	for i := range ix.chunks {
		score := cosineSimilarity(vector, ix.chunks[i].Vector())
		if score >= floor {
			hits = append(hits, retrieval.NewHit(ix.chunks[i], score))
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score() > hits[b].Score()
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Dimension returns the fixed vector dimension, 0 while the index is empty.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}

// Sources returns the distinct source names in first-seen order.
func (ix *Index) Sources() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]struct{}, len(ix.chunks))
	var out []string
	for i := range ix.chunks {
		src := ix.chunks[i].Source()
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}

// Items returns a copy of all chunks in insertion order, for snapshotting.
func (ix *Index) Items() []chunk.Chunk {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]chunk.Chunk(nil), ix.chunks...)
}

// Clear removes all chunks and unfixes the dimension.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dim = 0
	ix.chunks = nil
	ix.byID = make(map[string]int)
}

// Restore replaces the index contents with a snapshot. The previous contents
// are kept on validation failure.
func (ix *Index) Restore(chunks []chunk.Chunk) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim := 0
	for i := range chunks {
		v := chunks[i].Vector()
		if len(v) == 0 {
			return fmt.Errorf("chunk %s has no vector", chunks[i].ID())
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return fmt.Errorf("chunk %s has dimension %d, snapshot expects %d: %w",
				chunks[i].ID(), len(v), dim, domain.ErrDimensionMismatch)
		}
	}

	ix.dim = dim
	ix.chunks = append([]chunk.Chunk(nil), chunks...)
	ix.byID = make(map[string]int, len(chunks))
	for i := range ix.chunks {
		ix.byID[ix.chunks[i].ID()] = i
	}
	return nil
}

// cosineSimilarity computes dot(a, b) / (|a| * |b|). Returns 0 when either
// vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
