package retrieval

import "github.com/kailas-cloud/docchat/internal/domain/chunk"

// Hit is a single retrieval result: a stored chunk with its cosine
// similarity to the query. Scores are only comparable within one index.
type Hit struct {
	chunk chunk.Chunk
	score float64
}

// NewHit creates a retrieval hit.
func NewHit(c chunk.Chunk, score float64) Hit {
	return Hit{chunk: c, score: score}
}

// Chunk returns the retrieved chunk.
func (h Hit) Chunk() chunk.Chunk { return h.chunk }

// Score returns the cosine similarity to the query vector.
func (h Hit) Score() float64 { return h.score }

// Sources returns the distinct source names across hits, earliest first.
func Sources(hits []Hit) []string {
	seen := make(map[string]struct{}, len(hits))
	var out []string
	for i := range hits {
		src := hits[i].Chunk().Source()
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
}
