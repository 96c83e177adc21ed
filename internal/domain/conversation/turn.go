package conversation

import "time"

// Turn is one completed question/answer exchange (immutable value object).
// Turns are appended after a successful generation and never mutated.
type Turn struct {
	question string
	answer   string
	sources  []string
	askedAt  time.Time
}

// NewTurn creates a completed conversation turn.
func NewTurn(question, answer string, sources []string, askedAt time.Time) Turn {
	return Turn{
		question: question,
		answer:   answer,
		sources:  append([]string(nil), sources...),
		askedAt:  askedAt,
	}
}

// Question returns the user question.
func (t *Turn) Question() string { return t.question }

// Answer returns the generated answer.
func (t *Turn) Answer() string { return t.answer }

// Sources returns the cited source names.
func (t *Turn) Sources() []string { return append([]string(nil), t.sources...) }

// AskedAt returns when the question was submitted.
func (t *Turn) AskedAt() time.Time { return t.askedAt }
