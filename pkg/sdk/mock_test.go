package docchat

import (
	"context"

	"github.com/kailas-cloud/docchat/internal/domain/conversation"
	"github.com/kailas-cloud/docchat/internal/domain/language"
	chatuc "github.com/kailas-cloud/docchat/internal/usecase/chat"
	ingestuc "github.com/kailas-cloud/docchat/internal/usecase/ingest"
)

// --- ingestUseCase mock ---

type mockIngestUC struct {
	ingestFn  func(ctx context.Context, name string, data []byte) (ingestuc.Report, error)
	urlFn     func(ctx context.Context, url string) (ingestuc.Report, error)
	statsFn   func() ingestuc.Stats
	persistFn func(ctx context.Context) error
	restoreFn func(ctx context.Context) (int, error)
	clearFn   func(ctx context.Context) error
}

func (m *mockIngestUC) IngestDocument(ctx context.Context, name string, data []byte) (ingestuc.Report, error) {
	return m.ingestFn(ctx, name, data)
}

func (m *mockIngestUC) IngestURL(ctx context.Context, url string) (ingestuc.Report, error) {
	return m.urlFn(ctx, url)
}

func (m *mockIngestUC) Stats() ingestuc.Stats {
	return m.statsFn()
}

func (m *mockIngestUC) Persist(ctx context.Context) error {
	return m.persistFn(ctx)
}

func (m *mockIngestUC) Restore(ctx context.Context) (int, error) {
	return m.restoreFn(ctx)
}

func (m *mockIngestUC) Clear(ctx context.Context) error {
	return m.clearFn(ctx)
}

// --- chatUseCase mock ---

type mockChatUC struct {
	createFn  func(lang language.Language) *conversation.Session
	askFn     func(ctx context.Context, sessionID, question string) (chatuc.TurnResult, error)
	historyFn func(sessionID string) ([]conversation.Turn, error)
}

func (m *mockChatUC) CreateSession(lang language.Language) *conversation.Session {
	return m.createFn(lang)
}

func (m *mockChatUC) Ask(ctx context.Context, sessionID, question string) (chatuc.TurnResult, error) {
	return m.askFn(ctx, sessionID, question)
}

func (m *mockChatUC) History(sessionID string) ([]conversation.Turn, error) {
	return m.historyFn(sessionID)
}

// --- helpers ---

func testClient(ingestSvc ingestUseCase, chatSvc chatUseCase) *Client {
	return &Client{
		ingestSvc: ingestSvc,
		chatSvc:   chatSvc,
	}
}
