package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Parsing Errors.

	// ErrFileNotFound indicates the document file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrCorrupted indicates the PDF could not be read at all.
	ErrCorrupted = errors.New("corrupted document")

	// ErrPasswordProtected indicates the PDF is encrypted.
	ErrPasswordProtected = errors.New("password protected document")

	// ErrPageLimitExceeded indicates the document has more pages than allowed.
	ErrPageLimitExceeded = errors.New("page limit exceeded")

	// ErrUnknownEngine indicates an unrecognised extraction engine name.
	ErrUnknownEngine = errors.New("unknown extraction engine")

	// ErrUnknownStrategy indicates an unrecognised chunking strategy name.
	ErrUnknownStrategy = errors.New("unknown chunking strategy")

	// Service Availability Errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates vectors of differing dimensions were
	// mixed in one index collection. This is fatal to the operation.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// ProcessingError wraps a parsing failure with the page it occurred on.
// Page is -1 when the failure is not page-specific.
type ProcessingError struct {
	// Page is the 0-based page index, -1 for whole-document failures.
	Page int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("processing: %v", e.Err)
	}
	return fmt.Sprintf("processing page %d: %v", e.Page, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProcessingError) Unwrap() error { return e.Err }

// NewProcessingError creates a ProcessingError for the given page index.
func NewProcessingError(page int, err error) *ProcessingError {
	return &ProcessingError{Page: page, Err: err}
}

// ChunkingError indicates a strategy failed on malformed input, or that
// even the fallback chain produced zero chunks for non-empty input.
type ChunkingError struct {
	// Strategy is the strategy name that failed.
	Strategy string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ChunkingError) Error() string {
	return fmt.Sprintf("chunking (%s): %v", e.Strategy, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ChunkingError) Unwrap() error { return e.Err }

// AIServiceError indicates an embedding or LLM call failed.
type AIServiceError struct {
	// Service is "embedding" or "llm".
	Service string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *AIServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AIServiceError) Unwrap() error { return e.Err }

// VectorSearchError indicates the external vector store failed or was
// unreachable. The answering flow degrades to a "not found" answer
// rather than propagating this to the end user.
type VectorSearchError struct {
	// Op is the failed operation ("upsert", "search", "delete", "count").
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *VectorSearchError) Error() string {
	return fmt.Sprintf("vector %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *VectorSearchError) Unwrap() error { return e.Err }
