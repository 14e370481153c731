package driving

import (
	"context"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// ProcessResult is the outcome of one document ingestion run.
type ProcessResult struct {
	// Document is the registration row after processing.
	Document *domain.Document

	// Chunks are the committed chunks in index order.
	Chunks []domain.Chunk

	// CacheHit reports whether the chunk set came from the content
	// cache rather than a fresh parse and chunking run.
	CacheHit bool

	// Embedded reports whether embeddings were generated and indexed.
	Embedded bool
}

// IngestService processes PDF documents into retrievable chunks.
type IngestService interface {
	// ProcessDocument parses, chunks and optionally embeds one PDF.
	// Strategy is a chunking registry name; empty selects the default.
	// The operation is atomic at document granularity: on failure no
	// chunk or vector rows remain.
	ProcessDocument(ctx context.Context, path string, strategy string, generateEmbeddings bool) (*ProcessResult, error)

	// Remove deletes a document's chunks, vectors and registration.
	Remove(ctx context.Context, documentID string) error
}
