package driven

import (
	"context"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// DocumentStore persists document registrations and committed chunk rows.
// Chunk commits are atomic at document granularity: either all chunks
// for a document land or none do.
type DocumentStore interface {
	// SaveDocument stores or updates a document registration.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it doesn't exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByHash retrieves a document by content hash.
	// Returns domain.ErrNotFound if none matches.
	GetDocumentByHash(ctx context.Context, hash string) (*domain.Document, error)

	// ListDocuments returns all registered documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// SaveChunks replaces the chunk rows for a document in one
	// transaction.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetChunks retrieves a document's chunks ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteChunks removes all chunk rows for a document.
	DeleteChunks(ctx context.Context, documentID string) error

	// DeleteDocument removes a document and its chunk rows.
	DeleteDocument(ctx context.Context, id string) error
}
