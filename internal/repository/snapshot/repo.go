// Package snapshot persists index contents to the key-value store so the
// index survives restarts.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/docchat/internal/db"
	"github.com/kailas-cloud/docchat/internal/domain"
	"github.com/kailas-cloud/docchat/internal/domain/chunk"
)

const snapshotKeySuffix = "index_snapshot"

// store is the consumer interface for snapshots (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/ingest.SnapshotRepository.
type Repo struct {
	store store
	key   string
	now   func() time.Time
}

// New creates a snapshot repository. Empty keyPrefix falls back to the
// default namespace.
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.KeyPrefix
	}
	return &Repo{store: s, key: keyPrefix + snapshotKeySuffix, now: time.Now}
}

// Save writes all chunks as one snapshot, replacing any previous one.
func (r *Repo) Save(ctx context.Context, chunks []chunk.Chunk, dim int) error {
	env := buildEnvelope(chunks, dim, r.now().UTC())
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

// Load reads the stored snapshot. Returns ErrSnapshotNotFound when none exists.
func (r *Repo) Load(ctx context.Context) ([]chunk.Chunk, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return parseEnvelope(env)
}

// Delete removes the stored snapshot. Missing snapshot is not an error.
func (r *Repo) Delete(ctx context.Context) error {
	if err := r.store.Del(ctx, r.key); err != nil {
		return fmt.Errorf("del %s: %w", r.key, err)
	}
	return nil
}
