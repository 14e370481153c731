package driven

import (
	"context"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// VectorRecord is one chunk ready for indexing: an L2-normalised
// vector plus the text and payload stored alongside it.
type VectorRecord struct {
	// ChunkID is the record identity in the index.
	ChunkID string

	// Vector is the L2-normalised embedding. All vectors in one
	// collection must share one dimension; mixing dimensions is a
	// fatal error.
	Vector []float32

	// Text is the chunk text stored in the payload.
	Text string

	// Metadata is stored in the payload and returned with hits.
	Metadata map[string]any
}

// VectorFilter restricts a search or delete to matching records.
// Zero-value fields do not filter.
type VectorFilter struct {
	// DocumentID scopes the operation to one document.
	DocumentID string
}

// VectorIndex provides semantic similarity search against an external
// vector store. All methods surface failures as *domain.VectorSearchError
// so callers can degrade rather than crash; the store may be briefly
// unavailable and is not transactionally isolated from readers.
type VectorIndex interface {
	// Upsert inserts or replaces records.
	Upsert(ctx context.Context, records []VectorRecord) error

	// Search returns the k nearest records to the query vector,
	// ordered by descending similarity, optionally filtered.
	Search(ctx context.Context, query []float32, k int, filter *VectorFilter) ([]domain.RetrievalResult, error)

	// DeleteByFilter removes all records matching the filter.
	DeleteByFilter(ctx context.Context, filter VectorFilter) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
