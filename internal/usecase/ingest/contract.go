package ingest

import (
	"context"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/chunk"
	"github.com/kailas-cloud/docchat/internal/loader"
)

// Loader extracts plain text from uploaded document bytes.
type Loader interface {
	Load(name string, data []byte) (loader.Document, error)
}

// Fetcher downloads and extracts remote documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (loader.Document, error)
}

// Chunker splits document text into embeddable pieces.
type Chunker interface {
	Split(text string) []string
}

// Embedder vectorizes chunk texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Index is the writable side of the vector index.
type Index interface {
	Upsert(chunks []chunk.Chunk) error
	Restore(chunks []chunk.Chunk) error
	Clear()
	Items() []chunk.Chunk
	Len() int
	Dimension() int
	Sources() []string
}

// SnapshotRepository persists and restores index contents.
type SnapshotRepository interface {
	Save(ctx context.Context, chunks []chunk.Chunk, dim int) error
	Load(ctx context.Context) ([]chunk.Chunk, error)
	Delete(ctx context.Context) error
}
