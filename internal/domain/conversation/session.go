package conversation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kailas-cloud/docchat/internal/domain/language"
)

// State tracks where a session is within the current turn.
type State string

// Per-turn session states. Failed is terminal for the turn only; the next
// question starts again from Idle.
const (
	StateIdle       State = "idle"
	StateRetrieving State = "retrieving"
	StateGenerating State = "generating"
	StateFailed     State = "failed"
)

// ErrBusy signals a question submitted while the previous one is in flight.
var ErrBusy = errors.New("session busy")

// Session is the exclusively-owned conversation state of one chat session.
// All methods are safe for concurrent use, but a session processes one
// question at a time.
type Session struct {
	id string

	mu       sync.Mutex
	language language.Language
	state    State
	turns    []Turn
}

// NewSession creates an idle session. lang may be Auto, in which case the
// first question pins the concrete language.
func NewSession(id string, lang language.Language) *Session {
	return &Session{id: id, language: lang, state: StateIdle}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Language returns the session language, possibly still Auto.
func (s *Session) Language() language.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// State returns the current turn state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ResolveLanguage pins and returns the session language. An Auto language is
// resolved from the first question and stays fixed afterwards.
func (s *Session) ResolveLanguage(question string) language.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = s.language.Resolve(question)
	return s.language
}

// BeginRetrieval moves the session into the Retrieving state. Allowed from
// Idle and from Failed (a failed turn does not poison the session).
func (s *Session) BeginRetrieval() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRetrieving || s.state == StateGenerating {
		return fmt.Errorf("state %s: %w", s.state, ErrBusy)
	}
	s.state = StateRetrieving
	return nil
}

// BeginGeneration moves Retrieving → Generating.
func (s *Session) BeginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRetrieving {
		return fmt.Errorf("generation requires retrieving state, have %s", s.state)
	}
	s.state = StateGenerating
	return nil
}

// Complete appends the finished turn and returns the session to Idle.
func (s *Session) Complete(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	s.state = StateIdle
}

// Fail marks the in-flight turn as failed. No turn is recorded.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
}

// Turns returns a copy of the full history in submission order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// Recent returns a copy of the last n turns, oldest first.
func (s *Session) Recent(n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || len(s.turns) == 0 {
		return nil
	}
	if n > len(s.turns) {
		n = len(s.turns)
	}
	return append([]Turn(nil), s.turns[len(s.turns)-n:]...)
}

// Len returns the number of completed turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
