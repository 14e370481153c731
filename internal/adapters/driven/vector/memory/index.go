// Package memory provides an in-process vector index with brute-force
// cosine search. It backs tests and small single-machine setups where
// running an external vector store is not worth it.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory implementation of driven.VectorIndex.
// Search is an exact scan over all records. Stored vectors are assumed
// to be L2-normalised so similarity is a plain dot product; the query
// vector is re-normalised before the scan so a swapped embedding model
// cannot silently skew scores.
type Index struct {
	mu      sync.RWMutex
	records map[string]driven.VectorRecord
}

// NewIndex creates a new in-memory vector index.
func NewIndex() *Index {
	return &Index{records: make(map[string]driven.VectorRecord)}
}

// Upsert inserts or replaces records keyed by chunk ID.
func (idx *Index) Upsert(_ context.Context, records []driven.VectorRecord) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, r := range records {
		idx.records[r.ChunkID] = r
	}
	return nil
}

// Search returns the k most similar records, ordered by descending
// similarity. Mixing vector dimensions is a hard error, never a
// silently zero score.
func (idx *Index) Search(_ context.Context, query []float32, k int, filter *driven.VectorFilter) ([]domain.RetrievalResult, error) {
	query = normalise(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]domain.RetrievalResult, 0, len(idx.records))
	for _, r := range idx.records {
		if filter != nil && filter.DocumentID != "" && !matchesDocument(r, filter.DocumentID) {
			continue
		}
		if len(r.Vector) != len(query) {
			return nil, &domain.VectorSearchError{
				Op: "search",
				Err: fmt.Errorf("%w: query has %d dimensions, stored record %s has %d",
					domain.ErrDimensionMismatch, len(query), r.ChunkID, len(r.Vector)),
			}
		}
		results = append(results, domain.RetrievalResult{
			ChunkID:  r.ChunkID,
			Text:     r.Text,
			Score:    dot(query, r.Vector),
			Metadata: r.Metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].ChunkID < results[j].ChunkID
		}
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteByFilter removes all records matching the filter.
func (idx *Index) DeleteByFilter(_ context.Context, filter driven.VectorFilter) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for id, r := range idx.records {
		if filter.DocumentID == "" || matchesDocument(r, filter.DocumentID) {
			delete(idx.records, id)
		}
	}
	return nil
}

// Count returns the number of stored records.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records), nil
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

func matchesDocument(r driven.VectorRecord, documentID string) bool {
	v, ok := r.Metadata["document_id"]
	if !ok {
		return false
	}
	s, ok := v.(string)
	return ok && s == documentID
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// normalise returns a unit-length copy of v. Vectors already within
// tolerance of unit length (and the zero vector) pass through unchanged.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	if math.Abs(norm-1) < 1e-6 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
