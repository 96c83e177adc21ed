package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig signals bad setup parameters (fatal at construction).
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrDimensionMismatch signals an embedding whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyIndex signals a query against an index with zero entries.
	ErrEmptyIndex = errors.New("index is empty")
	// ErrEmbeddingFailed signals an embedding provider fault.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrGenerationFailed signals an answer generation fault after retries.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrRateLimited signals a provider rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrContextLengthExceeded signals a prompt too large for the generation model.
	ErrContextLengthExceeded = errors.New("context length exceeded")
	// ErrUnsupportedFormat signals a document format the loader cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrSessionNotFound signals a missing conversation session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSnapshotNotFound signals that no persisted index snapshot exists.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Stage identifies the pipeline stage where a failure occurred.
type Stage string

// Pipeline stages, in execution order.
const (
	StageLoad     Stage = "load"
	StageChunk    Stage = "chunk"
	StageEmbed    Stage = "embed"
	StageRetrieve Stage = "retrieve"
	StageGenerate Stage = "generate"
	StagePersist  Stage = "persist"
)

// StageError wraps an error with the pipeline stage that produced it, so the
// caller can tell the user which step failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError annotates err with the failing stage.
func NewStageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the failing stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
