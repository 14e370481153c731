package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/time/rate"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
	"github.com/archivist-labs/docq-cli/internal/logger"
)

// DefaultEmbedBatchSize is the number of texts per embedding request.
const DefaultEmbedBatchSize = 32

// Embedder applies the core embedding rules on top of an
// EmbeddingService adapter: batching with preserved order, the
// single-space placeholder for empty input (whose vector is forced to
// zero, since a placeholder's embedding would be arbitrary and
// misleading), L2 normalisation, and dimension consistency checks.
type Embedder struct {
	service   driven.EmbeddingService
	batchSize int
	limiter   *rate.Limiter
}

// NewEmbedder wraps an embedding service. A nil limiter disables rate
// limiting; batchSize <= 0 selects DefaultEmbedBatchSize.
func NewEmbedder(service driven.EmbeddingService, batchSize int, limiter *rate.Limiter) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &Embedder{service: service, batchSize: batchSize, limiter: limiter}
}

// EmbedTexts embeds texts in input order. Output index i always
// corresponds to input index i, across batch boundaries.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if e.service == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}

	// Empty input must not reach the model; remember which slots to
	// zero out afterwards.
	empty := make([]bool, len(texts))
	prepared := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			empty[i] = true
			prepared[i] = " "
		} else {
			prepared[i] = t
		}
	}

	dim := e.service.Dimensions()
	out := make([][]float32, len(texts))

	for start := 0; start < len(prepared); start += e.batchSize {
		end := start + e.batchSize
		if end > len(prepared) {
			end = len(prepared)
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, &domain.AIServiceError{Service: "embedding", Err: err}
			}
		}

		batch, err := e.service.EmbedBatch(ctx, prepared[start:end])
		if err != nil {
			return nil, &domain.AIServiceError{Service: "embedding", Err: err}
		}
		if len(batch) != end-start {
			return nil, &domain.AIServiceError{
				Service: "embedding",
				Err:     fmt.Errorf("got %d vectors for %d inputs", len(batch), end-start),
			}
		}

		for i, vec := range batch {
			idx := start + i
			if empty[idx] {
				out[idx] = make([]float32, dim)
				continue
			}
			if len(vec) != dim {
				return nil, &domain.AIServiceError{
					Service: "embedding",
					Err:     fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vec), dim),
				}
			}
			out[idx] = Normalise(vec)
		}

		logger.Debug("Embedded batch %d..%d of %d", start, end-1, len(prepared))
	}

	return out, nil
}

// EmbedQuery embeds a single query string, normalised. Normalisation
// is re-asserted here rather than trusted from storage so a swapped
// embedding model cannot silently break the dot-product similarity.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Dimensions returns the wrapped service's vector size.
func (e *Embedder) Dimensions() int {
	if e.service == nil {
		return 0
	}
	return e.service.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (e *Embedder) ModelName() string {
	if e.service == nil {
		return ""
	}
	return e.service.ModelName()
}

// Normalise returns the L2-normalised copy of vec. A zero vector is
// returned unchanged.
func Normalise(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// Cosine returns the cosine similarity of two L2-normalised vectors,
// which reduces to their dot product. Vectors of differing lengths
// score zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
