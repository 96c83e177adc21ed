package retrieval

import (
	"testing"

	"github.com/kailas-cloud/docchat/internal/domain/chunk"
)

func hitFrom(t *testing.T, id, source string, score float64) Hit {
	t.Helper()
	c, err := chunk.New(id, "text", source, chunk.Locator{})
	if err != nil {
		t.Fatalf("build chunk: %v", err)
	}
	return NewHit(c, score)
}

func TestHit_Accessors(t *testing.T) {
	h := hitFrom(t, "a.txt#0", "a.txt", 0.93)

	if h.Score() != 0.93 {
		t.Errorf("unexpected score: %g", h.Score())
	}
	if got := h.Chunk().ID(); got != "a.txt#0" {
		t.Errorf("unexpected chunk: %q", got)
	}
	if got := h.Chunk().Source(); got != "a.txt" {
		t.Errorf("unexpected source: %q", got)
	}
}

func TestHit_AccessorsOnSliceElements(t *testing.T) {
	hits := []Hit{hitFrom(t, "a.txt#0", "a.txt", 0.5)}

	if got := hits[0].Chunk().Source(); got != "a.txt" {
		t.Errorf("unexpected source: %q", got)
	}
	if got := hits[0].Score(); got != 0.5 {
		t.Errorf("unexpected score: %g", got)
	}
}

func TestSources_DedupKeepsFirstSeenOrder(t *testing.T) {
	hits := []Hit{
		hitFrom(t, "b.txt#0", "b.txt", 0.9),
		hitFrom(t, "a.txt#0", "a.txt", 0.8),
		hitFrom(t, "b.txt#1", "b.txt", 0.7),
		hitFrom(t, "a.txt#1", "a.txt", 0.6),
	}

	got := Sources(hits)
	want := []string{"b.txt", "a.txt"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSources_Empty(t *testing.T) {
	if got := Sources(nil); got != nil {
		t.Errorf("expected nil for no hits, got %v", got)
	}
}
