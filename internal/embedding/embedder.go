// Package embedding defines the text → vector boundary used by the loader
// and the placeholder random implementation.
package embedding

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
)

// DefaultDimension is the vector size of the product collection.
const DefaultDimension = 1536

// Embedder produces one vector per input text, in input order.
type Embedder interface {
	// EmbedTexts returns len(texts) vectors of length Dimension().
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension is the length of every returned vector.
	Dimension() int
}

// RandomEmbedder ignores its input and returns independent standard-normal
// samples scaled to unit length. It carries no semantic meaning and stands in
// until a real model is configured.
type RandomEmbedder struct {
	dim int
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomEmbedder creates a randomly seeded embedder of the given dimension.
func NewRandomEmbedder(dim int) *RandomEmbedder {
	return NewSeededEmbedder(dim, rand.Uint64(), rand.Uint64())
}

// NewSeededEmbedder creates a deterministic embedder, for tests.
func NewSeededEmbedder(dim int, seed1, seed2 uint64) *RandomEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &RandomEmbedder{
		dim: dim,
		rng: rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// Dimension returns the vector length.
func (e *RandomEmbedder) Dimension() int {
	return e.dim
}

// EmbedTexts returns one unit vector per text.
func (e *RandomEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = e.unitVector()
	}
	return vectors, nil
}

func (e *RandomEmbedder) unitVector() []float32 {
	samples := make([]float64, e.dim)
	var sumSquares float64
	for {
		sumSquares = 0
		for j := range samples {
			samples[j] = e.rng.NormFloat64()
			sumSquares += samples[j] * samples[j]
		}
		// An all-zero draw cannot be normalized.
		if sumSquares > 0 {
			break
		}
	}

	norm := math.Sqrt(sumSquares)
	vec := make([]float32, e.dim)
	for j, v := range samples {
		vec[j] = float32(v / norm)
	}
	return vec
}
