package snapshot

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/kailas-cloud/docchat/internal/domain/chunk"
)

// envelope is the persisted snapshot layout. Vectors are base64-encoded
// little-endian float32 to keep the JSON compact.
type envelope struct {
	Version   int        `json:"version"`
	Dimension int        `json:"dimension"`
	SavedAt   time.Time  `json:"saved_at"`
	Chunks    []chunkDTO `json:"chunks"`
}

type chunkDTO struct {
	ID      string        `json:"id"`
	Text    string        `json:"text"`
	Source  string        `json:"source"`
	Locator chunk.Locator `json:"locator"`
	Vector  string        `json:"vector"`
}

const envelopeVersion = 1

func buildEnvelope(chunks []chunk.Chunk, dim int, savedAt time.Time) envelope {
	dtos := make([]chunkDTO, len(chunks))
	for i := range chunks {
		dtos[i] = chunkDTO{
			ID:      chunks[i].ID(),
			Text:    chunks[i].Text(),
			Source:  chunks[i].Source(),
			Locator: chunks[i].Locator(),
			Vector:  encodeVector(chunks[i].Vector()),
		}
	}
	return envelope{
		Version:   envelopeVersion,
		Dimension: dim,
		SavedAt:   savedAt,
		Chunks:    dtos,
	}
}

func parseEnvelope(env envelope) ([]chunk.Chunk, error) {
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", env.Version)
	}

	chunks := make([]chunk.Chunk, len(env.Chunks))
	for i, dto := range env.Chunks {
		vec, err := decodeVector(dto.Vector)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", dto.ID, err)
		}
		chunks[i] = chunk.Reconstruct(dto.ID, dto.Text, dto.Source, dto.Locator, vec)
	}
	return chunks, nil
}

// encodeVector serializes []float32 as base64 over little-endian 4-byte floats.
func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// decodeVector reverses encodeVector.
func decodeVector(s string) ([]float32, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid vector data: len=%d (not multiple of 4)", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
