package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestRandomEmbedder_EmbedTexts(t *testing.T) {
	tests := []struct {
		name  string
		dim   int
		texts []string
	}{
		{"default dimension", DefaultDimension, []string{"Blue Mug. Nice mug", "Red Mug. "}},
		{"small dimension", 8, []string{"a", "b", "c"}},
		{"empty input", DefaultDimension, []string{}},
		{"nil input", DefaultDimension, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewRandomEmbedder(tt.dim)
			assert.Equal(t, tt.dim, e.Dimension())

			vectors, err := e.EmbedTexts(context.Background(), tt.texts)
			require.NoError(t, err)
			require.Len(t, vectors, len(tt.texts))

			for i, v := range vectors {
				assert.Len(t, v, tt.dim, "vector %d", i)
				assert.InDelta(t, 1.0, l2Norm(v), 1e-5, "vector %d should be unit length", i)
			}
		})
	}
}

func TestRandomEmbedder_IgnoresText(t *testing.T) {
	e := NewRandomEmbedder(16)

	vectors, err := e.EmbedTexts(context.Background(), []string{"same", "same"})
	require.NoError(t, err)
	assert.NotEqual(t, vectors[0], vectors[1], "identical texts should still get independent vectors")
}

func TestSeededEmbedder_Deterministic(t *testing.T) {
	a, err := NewSeededEmbedder(32, 1, 2).EmbedTexts(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	b, err := NewSeededEmbedder(32, 1, 2).EmbedTexts(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewSeededEmbedder_NonPositiveDimension(t *testing.T) {
	assert.Equal(t, DefaultDimension, NewSeededEmbedder(0, 1, 1).Dimension())
	assert.Equal(t, DefaultDimension, NewSeededEmbedder(-3, 1, 1).Dimension())
}

func TestRandomEmbedder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRandomEmbedder(4).EmbedTexts(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

var _ Embedder = (*RandomEmbedder)(nil)
