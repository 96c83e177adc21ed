// Package chat owns conversation sessions and drives the question pipeline:
// retrieve context, generate the answer, record the turn.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/conversation"
	"github.com/kailas-cloud/docchat/internal/domain/language"
	"github.com/kailas-cloud/docchat/internal/usecase/answer"
)

// Config holds chat behavior settings.
type Config struct {
	DefaultLanguage language.Language
	HistoryTurns    int
}

// Service manages sessions and answers questions within them.
type Service struct {
	retriever Retriever
	answerer  Answerer
	cfg       Config
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*conversation.Session

	newID func() string
	now   func() time.Time
}

// New creates a chat service.
func New(retriever Retriever, answerer Answerer, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		answerer:  answerer,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[string]*conversation.Session),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// TurnResult is the outcome of one answered question.
type TurnResult struct {
	Answer           string
	Sources          []string
	Language         language.Language
	EmbeddingTokens  int
	GenerationTokens int
}

// CreateSession opens a new session. Auto language falls back to the
// configured default and gets pinned by the first question.
func (s *Service) CreateSession(lang language.Language) *conversation.Session {
	if lang == language.Auto {
		lang = s.cfg.DefaultLanguage
	}

	sess := conversation.NewSession(s.newID(), lang)

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	s.logger.Info("Session created",
		zap.String("session_id", sess.ID()), zap.String("language", string(lang)))
	return sess
}

// Get returns a session by ID.
func (s *Service) Get(id string) (*conversation.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return sess, nil
}

// Ask answers one question within a session. A failed turn marks the session
// Failed but leaves it usable for the next question; only successful turns
// enter the history.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (TurnResult, error) {
	if question == "" {
		return TurnResult{}, fmt.Errorf("question is required")
	}

	sess, err := s.Get(sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	lang := sess.ResolveLanguage(question)

	if err := sess.BeginRetrieval(); err != nil {
		return TurnResult{}, fmt.Errorf("session %s: %w", sessionID, err)
	}

	retRes, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		sess.Fail()
		return TurnResult{}, err
	}

	history := sess.Recent(s.cfg.HistoryTurns)

	if err := sess.BeginGeneration(); err != nil {
		sess.Fail()
		return TurnResult{}, err
	}

	ansRes, err := s.answerer.Answer(ctx, answer.Request{
		Question: question,
		Hits:     retRes.Hits,
		History:  history,
		Language: lang,
	})
	if err != nil {
		sess.Fail()
		return TurnResult{}, err
	}

	sess.Complete(conversation.NewTurn(question, ansRes.Answer, ansRes.Sources, s.now()))

	s.logger.Info("Question answered",
		zap.String("session_id", sessionID),
		zap.String("language", string(lang)),
		zap.Int("hits", len(retRes.Hits)),
		zap.Int("embedding_tokens", retRes.Tokens),
		zap.Int("generation_tokens", ansRes.TotalTokens),
	)

	return TurnResult{
		Answer:           ansRes.Answer,
		Sources:          ansRes.Sources,
		Language:         lang,
		EmbeddingTokens:  retRes.Tokens,
		GenerationTokens: ansRes.TotalTokens,
	}, nil
}

// History returns the completed turns of a session, oldest first.
func (s *Service) History(sessionID string) ([]conversation.Turn, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Turns(), nil
}
