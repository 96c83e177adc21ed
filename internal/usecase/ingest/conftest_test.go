package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/chunk"
	"github.com/kailas-cloud/docchat/internal/loader"
)

type mockLoader struct {
	doc loader.Document
	err error
}

func (m *mockLoader) Load(_ string, _ []byte) (loader.Document, error) {
	return m.doc, m.err
}

type mockFetcher struct {
	doc loader.Document
	err error
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (loader.Document, error) {
	return m.doc, m.err
}

type mockChunker struct {
	pieces []string
}

func (m *mockChunker) Split(_ string) []string {
	return m.pieces
}

type mockEmbedder struct {
	result domain.BatchEmbeddingResult
	err    error
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	if m.result.Embeddings != nil {
		return m.result, nil
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{1, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: len(texts) * 3}, nil
}

type mockIndex struct {
	upserted  []chunk.Chunk
	upsertErr error
	restored  []chunk.Chunk
	cleared   bool
	items     []chunk.Chunk
	dim       int
	sources   []string
}

func (m *mockIndex) Upsert(chunks []chunk.Chunk) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, chunks...)
	return nil
}

func (m *mockIndex) Restore(chunks []chunk.Chunk) error {
	m.restored = chunks
	return nil
}

func (m *mockIndex) Clear()                { m.cleared = true }
func (m *mockIndex) Items() []chunk.Chunk  { return m.items }
func (m *mockIndex) Len() int              { return len(m.items) }
func (m *mockIndex) Dimension() int        { return m.dim }
func (m *mockIndex) Sources() []string     { return m.sources }

type mockSnapshots struct {
	saved     []chunk.Chunk
	savedDim  int
	saveErr   error
	loaded    []chunk.Chunk
	loadErr   error
	deleted   bool
	deleteErr error
}

func (m *mockSnapshots) Save(_ context.Context, chunks []chunk.Chunk, dim int) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = chunks
	m.savedDim = dim
	return nil
}

func (m *mockSnapshots) Load(_ context.Context) ([]chunk.Chunk, error) {
	return m.loaded, m.loadErr
}

func (m *mockSnapshots) Delete(_ context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = true
	return nil
}

type fixture struct {
	loader    *mockLoader
	fetcher   *mockFetcher
	chunker   *mockChunker
	embed     *mockEmbedder
	index     *mockIndex
	snapshots *mockSnapshots
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		loader:    &mockLoader{},
		fetcher:   &mockFetcher{},
		chunker:   &mockChunker{},
		embed:     &mockEmbedder{},
		index:     &mockIndex{},
		snapshots: &mockSnapshots{},
	}
	f.svc = New(f.loader, f.fetcher, f.chunker, f.embed, f.index, f.snapshots, zap.NewNop())
	return f
}
