// Package ingest runs the document pipeline: load, chunk, embed, index.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/chunk"
	"github.com/kailas-cloud/docchat/internal/loader"
)

// Service ingests documents into the vector index and manages snapshots.
type Service struct {
	loader    Loader
	fetcher   Fetcher
	chunker   Chunker
	embed     Embedder
	index     Index
	snapshots SnapshotRepository
	logger    *zap.Logger
}

// New creates an ingest service.
func New(
	ld Loader,
	fetcher Fetcher,
	chunker Chunker,
	embed Embedder,
	index Index,
	snapshots SnapshotRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		loader:    ld,
		fetcher:   fetcher,
		chunker:   chunker,
		embed:     embed,
		index:     index,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Report summarizes one ingestion.
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

// IngestDocument loads an uploaded document and runs it through the pipeline.
func (s *Service) IngestDocument(ctx context.Context, name string, data []byte) (Report, error) {
	doc, err := s.loader.Load(name, data)
	if err != nil {
		return Report{}, domain.NewStageError(domain.StageLoad, fmt.Errorf("load %s: %w", name, err))
	}
	return s.ingest(ctx, doc)
}

// IngestURL fetches a remote document and runs it through the pipeline.
func (s *Service) IngestURL(ctx context.Context, url string) (Report, error) {
	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return Report{}, domain.NewStageError(domain.StageLoad, fmt.Errorf("fetch %s: %w", url, err))
	}
	return s.ingest(ctx, doc)
}

// ingest chunks, embeds and indexes one loaded document. All chunks are
// embedded before the index is touched, so a provider failure leaves the
// index unchanged.
func (s *Service) ingest(ctx context.Context, doc loader.Document) (Report, error) {
	pieces := s.chunker.Split(doc.Text)
	if len(pieces) == 0 {
		return Report{}, domain.NewStageError(domain.StageChunk,
			fmt.Errorf("document %s produced no chunks", doc.Source))
	}

	batch, err := s.embed.BatchEmbed(ctx, pieces)
	if err != nil {
		return Report{}, domain.NewStageError(domain.StageEmbed, fmt.Errorf("embed %s: %w", doc.Source, err))
	}
	if len(batch.Embeddings) != len(pieces) {
		return Report{}, domain.NewStageError(domain.StageEmbed,
			fmt.Errorf("got %d embeddings for %d chunks of %s", len(batch.Embeddings), len(pieces), doc.Source))
	}

	chunks := make([]chunk.Chunk, len(pieces))
	from := 0
	for i, piece := range pieces {
		offset := from
		if idx := strings.Index(doc.Text[from:], piece); idx >= 0 {
			offset = from + idx
			from = offset + 1
		}

		c, err := chunk.New(
			fmt.Sprintf("%s#%d", doc.Source, i),
			piece,
			doc.Source,
			chunk.Locator{Offset: offset},
		)
		if err != nil {
			return Report{}, domain.NewStageError(domain.StageChunk, fmt.Errorf("chunk %d of %s: %w", i, doc.Source, err))
		}
		chunks[i] = c.WithVector(batch.Embeddings[i])
	}

	if err := s.index.Upsert(chunks); err != nil {
		return Report{}, domain.NewStageError(domain.StagePersist, fmt.Errorf("index %s: %w", doc.Source, err))
	}

	s.logger.Info("Document ingested",
		zap.String("source", doc.Source),
		zap.Int("chunks", len(chunks)),
		zap.Int("tokens", batch.TotalTokens),
	)

	return Report{Source: doc.Source, Chunks: len(chunks), Tokens: batch.TotalTokens}, nil
}

// Stats returns the current index contents summary.
func (s *Service) Stats() Stats {
	return Stats{
		Chunks:    s.index.Len(),
		Dimension: s.index.Dimension(),
		Sources:   s.index.Sources(),
	}
}

// Persist writes the current index contents as a snapshot.
func (s *Service) Persist(ctx context.Context) error {
	items := s.index.Items()
	if err := s.snapshots.Save(ctx, items, s.index.Dimension()); err != nil {
		return domain.NewStageError(domain.StagePersist, fmt.Errorf("save snapshot: %w", err))
	}
	s.logger.Info("Index snapshot saved", zap.Int("chunks", len(items)))
	return nil
}

// Restore loads the persisted snapshot into the index. Returns the number of
// restored chunks; ErrSnapshotNotFound passes through when none exists.
func (s *Service) Restore(ctx context.Context) (int, error) {
	chunks, err := s.snapshots.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load snapshot: %w", err)
	}
	if err := s.index.Restore(chunks); err != nil {
		return 0, fmt.Errorf("restore index: %w", err)
	}
	s.logger.Info("Index snapshot restored", zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Clear empties the index and removes the persisted snapshot.
func (s *Service) Clear(ctx context.Context) error {
	s.index.Clear()
	if err := s.snapshots.Delete(ctx); err != nil {
		return domain.NewStageError(domain.StagePersist, fmt.Errorf("delete snapshot: %w", err))
	}
	s.logger.Info("Index cleared")
	return nil
}
