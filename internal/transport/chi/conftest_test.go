package chi

import (
	"context"
	"net/http"
	"net/http/httptest"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/chunk"
	"github.com/kailas-cloud/docchat/internal/index"
	"github.com/kailas-cloud/docchat/internal/loader"
	"github.com/kailas-cloud/docchat/internal/usecase/answer"
	chatuc "github.com/kailas-cloud/docchat/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/docchat/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docchat/internal/usecase/ingest"
	"github.com/kailas-cloud/docchat/internal/usecase/retrieve"
)

// --- Mocks ---

type mockLoader struct {
	err error
}

func (m *mockLoader) Load(name string, data []byte) (loader.Document, error) {
	if m.err != nil {
		return loader.Document{}, m.err
	}
	return loader.Document{Source: name, Text: string(data)}, nil
}

type mockFetcher struct {
	err error
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (loader.Document, error) {
	if m.err != nil {
		return loader.Document{}, m.err
	}
	return loader.Document{Source: url, Text: "fetched text"}, nil
}

type mockChunker struct{}

func (m *mockChunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}

type mockBatchEmbedder struct {
	err error
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{1, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 3 * len(texts)}, nil
}

type mockSnapshots struct {
	saved   []chunk.Chunk
	saveErr error
	loadErr error
	delErr  error
}

func (m *mockSnapshots) Save(_ context.Context, chunks []chunk.Chunk, _ int) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append([]chunk.Chunk(nil), chunks...)
	return nil
}

func (m *mockSnapshots) Load(_ context.Context) ([]chunk.Chunk, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.saved == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return m.saved, nil
}

func (m *mockSnapshots) Delete(_ context.Context) error {
	if m.delErr != nil {
		return m.delErr
	}
	m.saved = nil
	return nil
}

type mockRetriever struct {
	result retrieve.Result
	err    error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string) (retrieve.Result, error) {
	if m.err != nil {
		return retrieve.Result{}, m.err
	}
	return m.result, nil
}

type mockAnswerer struct {
	result answer.Result
	err    error
}

func (m *mockAnswerer) Answer(_ context.Context, _ answer.Request) (answer.Result, error) {
	if m.err != nil {
		return answer.Result{}, m.err
	}
	return m.result, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Fixture ---

type fixture struct {
	server    *Server
	router    *gochi.Mux
	chat      *chatuc.Service
	loader    *mockLoader
	fetcher   *mockFetcher
	embedder  *mockBatchEmbedder
	retriever *mockRetriever
	answerer  *mockAnswerer
	pinger    *mockPinger
	index     *index.Index
	snapshots *mockSnapshots
}

func newFixture() *fixture {
	f := &fixture{
		loader:    &mockLoader{},
		fetcher:   &mockFetcher{},
		embedder:  &mockBatchEmbedder{},
		retriever: &mockRetriever{},
		answerer:  &mockAnswerer{result: answer.Result{Answer: "an answer", Sources: []string{"doc.txt"}}},
		pinger:    &mockPinger{},
		index:     index.New(),
		snapshots: &mockSnapshots{},
	}

	logger := zap.NewNop()

	ingestSvc := ingestuc.New(
		f.loader, f.fetcher, &mockChunker{}, f.embedder, f.index, f.snapshots, logger)
	f.chat = chatuc.New(f.retriever, f.answerer, chatuc.Config{HistoryTurns: 3}, logger)
	healthSvc := healthuc.New(f.pinger, nil)

	f.server = NewServer(ingestSvc, f.chat, healthSvc, logger)
	f.router = gochi.NewRouter()
	f.server.Routes(f.router)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}
