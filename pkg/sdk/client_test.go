package docchat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/conversation"
	"github.com/kailas-cloud/docchat/internal/domain/language"
	chatuc "github.com/kailas-cloud/docchat/internal/usecase/chat"
	ingestuc "github.com/kailas-cloud/docchat/internal/usecase/ingest"
)

// --- provider fakes for end-to-end wiring ---

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (Embedding, error) {
	f.calls++
	return Embedding{Vector: []float32{1, 0}, TotalTokens: 3}, nil
}

type fakeGenerator struct {
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (Completion, error) {
	f.lastPrompt = prompt
	return Completion{Text: "generated answer", TotalTokens: 7}, nil
}

// --- tests ---

func TestNew_RequiresProvider(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error without API key or embedder")
	}
}

func TestNew_InvalidChunking(t *testing.T) {
	_, err := New(context.Background(),
		WithEmbedder(&fakeEmbedder{}),
		WithChunking(100, 100),
	)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_UnknownLanguage(t *testing.T) {
	_, err := New(context.Background(),
		WithEmbedder(&fakeEmbedder{}),
		WithLanguage("klingon"),
	)
	if err == nil {
		t.Fatal("expected error for unknown language")
	}
}

func TestClient_MemoryOnlyPipeline(t *testing.T) {
	ctx := context.Background()

	emb := &fakeEmbedder{}
	gen := &fakeGenerator{}
	client, err := New(ctx,
		WithEmbedder(emb),
		WithGenerator(gen),
		WithLanguage("en"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	report, err := client.IngestText(ctx, "notes.txt", "the device resets via the red button")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if report.Source != "notes.txt" || report.Chunks != 1 {
		t.Errorf("unexpected report: %+v", report)
	}

	stats := client.Stats()
	if stats.Chunks != 1 || stats.Dimension != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	session, err := client.NewSession("auto")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	ans, err := client.Ask(ctx, session, "how do I reset?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if ans.Text != "generated answer" {
		t.Errorf("unexpected answer: %q", ans.Text)
	}
	if len(ans.Sources) != 1 || ans.Sources[0] != "notes.txt" {
		t.Errorf("unexpected sources: %v", ans.Sources)
	}
	if gen.lastPrompt == "" {
		t.Error("generator was not called")
	}

	turns, err := client.History(session)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(turns) != 1 || turns[0].Question != "how do I reset?" {
		t.Errorf("unexpected history: %+v", turns)
	}
}

func TestClient_MemoryOnlySnapshots(t *testing.T) {
	ctx := context.Background()

	client, err := New(ctx, WithEmbedder(&fakeEmbedder{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if _, err := client.Restore(ctx); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
	if err := client.Persist(ctx); err == nil {
		t.Error("expected persist to fail without a store")
	}
	if err := client.Clear(ctx); err != nil {
		t.Errorf("clear must succeed without a store: %v", err)
	}
}

func TestIngestFile(t *testing.T) {
	var gotName string
	var gotData []byte
	client := testClient(&mockIngestUC{
		ingestFn: func(_ context.Context, name string, data []byte) (ingestuc.Report, error) {
			gotName = name
			gotData = data
			return ingestuc.Report{Source: name, Chunks: 2, Tokens: 6}, nil
		},
	}, nil)

	path := filepath.Join(t.TempDir(), "manual.md")
	if err := os.WriteFile(path, []byte("# Manual\n\ncontent"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	report, err := client.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "manual.md" {
		t.Errorf("expected base name, got %q", gotName)
	}
	if string(gotData) != "# Manual\n\ncontent" {
		t.Errorf("unexpected data: %q", gotData)
	}
	if report.Chunks != 2 || report.Tokens != 6 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestIngestFile_Missing(t *testing.T) {
	client := testClient(&mockIngestUC{}, nil)

	if _, err := client.IngestFile(context.Background(), "/does/not/exist.txt"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAsk_SentinelPassesThrough(t *testing.T) {
	client := testClient(nil, &mockChatUC{
		askFn: func(_ context.Context, _, _ string) (chatuc.TurnResult, error) {
			return chatuc.TurnResult{}, domain.ErrSessionNotFound
		},
	})

	_, err := client.Ask(context.Background(), "missing", "q")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestNewSession_UnknownLanguage(t *testing.T) {
	client := testClient(nil, &mockChatUC{
		createFn: func(lang language.Language) *conversation.Session {
			return conversation.NewSession("id", lang)
		},
	})

	if _, err := client.NewSession("klingon"); err == nil {
		t.Fatal("expected error for unknown language")
	}
}

func TestHistory_Mapping(t *testing.T) {
	asked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	client := testClient(nil, &mockChatUC{
		historyFn: func(_ string) ([]conversation.Turn, error) {
			return []conversation.Turn{
				conversation.NewTurn("q1", "a1", []string{"s.txt"}, asked),
			}, nil
		},
	})

	turns, err := client.History("sess")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Question != "q1" || turns[0].Answer != "a1" || !turns[0].AskedAt.Equal(asked) {
		t.Errorf("unexpected turn: %+v", turns[0])
	}
}
