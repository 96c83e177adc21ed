package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/domain/language"
	"github.com/kailas-cloud/docchat/internal/usecase/answer"
	"github.com/kailas-cloud/docchat/internal/usecase/retrieve"
)

type mockRetriever struct {
	result retrieve.Result
	err    error
	calls  int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string) (retrieve.Result, error) {
	m.calls++
	return m.result, m.err
}

type mockAnswerer struct {
	result  answer.Result
	err     error
	calls   int
	lastReq answer.Request
}

func (m *mockAnswerer) Answer(_ context.Context, req answer.Request) (answer.Result, error) {
	m.calls++
	m.lastReq = req
	return m.result, m.err
}

func newTestService(ret *mockRetriever, ans *mockAnswerer) *Service {
	cfg := Config{DefaultLanguage: language.Auto, HistoryTurns: 3}
	return New(ret, ans, cfg, zap.NewNop())
}
