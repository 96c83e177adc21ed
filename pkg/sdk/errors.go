package docchat

import (
	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/conversation"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyIndex            = domain.ErrEmptyIndex
	ErrDimensionMismatch     = domain.ErrDimensionMismatch
	ErrUnsupportedFormat     = domain.ErrUnsupportedFormat
	ErrEmbeddingFailed       = domain.ErrEmbeddingFailed
	ErrGenerationFailed      = domain.ErrGenerationFailed
	ErrRateLimited           = domain.ErrRateLimited
	ErrContextLengthExceeded = domain.ErrContextLengthExceeded
	ErrSessionNotFound       = domain.ErrSessionNotFound
	ErrSnapshotNotFound      = domain.ErrSnapshotNotFound
	ErrSessionBusy           = conversation.ErrBusy
)
