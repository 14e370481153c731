package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

func TestEmbedder_EmbedTexts_PreservesOrderAcrossBatches(t *testing.T) {
	svc := &mockEmbeddingService{dim: 4}
	embedder := NewEmbedder(svc, 2, nil)

	// Five texts with batch size 2 forces three batches; the mock embeds
	// each text to vectors filled with its length.
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs, err := embedder.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	assert.Equal(t, 3, svc.calls)

	// Normalisation keeps the ordering detectable: every vector is
	// constant-valued, so equal components mean equal input.
	for i, text := range texts {
		raw := float64(len(text))
		norm := math.Sqrt(4 * raw * raw)
		want := float32(raw / norm)
		for _, v := range vecs[i] {
			assert.InDelta(t, want, v, 1e-6, "slot %d should hold %q's embedding", i, text)
		}
	}
}

func TestEmbedder_EmbedTexts_EmptyInputGetsZeroVector(t *testing.T) {
	svc := &mockEmbeddingService{dim: 3}
	embedder := NewEmbedder(svc, 0, nil)

	vecs, err := embedder.EmbedTexts(context.Background(), []string{"real", "", "   "})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, []float32{0, 0, 0}, vecs[1])
	assert.Equal(t, []float32{0, 0, 0}, vecs[2])
	assert.NotEqual(t, []float32{0, 0, 0}, vecs[0])

	// The model itself never saw an empty string.
	require.Len(t, svc.batches, 1)
	assert.Equal(t, []string{"real", " ", " "}, svc.batches[0])
}

func TestEmbedder_EmbedTexts_VectorsAreNormalised(t *testing.T) {
	svc := &mockEmbeddingService{dim: 8}
	embedder := NewEmbedder(svc, 0, nil)

	vecs, err := embedder.EmbedTexts(context.Background(), []string{"some text"})
	require.NoError(t, err)

	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestEmbedder_EmbedTexts_ServiceError(t *testing.T) {
	svc := &mockEmbeddingService{dim: 3, embedErr: assert.AnError}
	embedder := NewEmbedder(svc, 0, nil)

	_, err := embedder.EmbedTexts(context.Background(), []string{"text"})
	require.Error(t, err)

	var aiErr *domain.AIServiceError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, "embedding", aiErr.Service)
}

func TestEmbedder_EmbedTexts_NilService(t *testing.T) {
	embedder := NewEmbedder(nil, 0, nil)

	_, err := embedder.EmbedTexts(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedder_EmbedTexts_NoInput(t *testing.T) {
	embedder := NewEmbedder(&mockEmbeddingService{dim: 3}, 0, nil)

	vecs, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedder_EmbedQuery(t *testing.T) {
	svc := &mockEmbeddingService{dim: 4}
	embedder := NewEmbedder(svc, 0, nil)

	vec, err := embedder.EmbedQuery(context.Background(), "what is this about?")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
}

func TestNormalise(t *testing.T) {
	t.Run("unit length output", func(t *testing.T) {
		out := Normalise([]float32{3, 4})
		assert.InDelta(t, 0.6, out[0], 1e-6)
		assert.InDelta(t, 0.8, out[1], 1e-6)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		out := Normalise([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, out)
	})
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}
