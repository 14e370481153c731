package driving

import (
	"context"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// AskRequest is one question against one document.
type AskRequest struct {
	// Question is the natural-language question.
	Question string

	// DocumentID scopes retrieval to one document.
	DocumentID string

	// TopK is the number of chunks to retrieve (default 5).
	TopK int

	// Language selects the prompt template and canned responses
	// (default English).
	Language domain.Language

	// Temperature is passed through to the LLM call.
	Temperature float64
}

// AskService answers questions about ingested documents using
// retrieval-augmented generation.
type AskService interface {
	// Answer retrieves relevant chunks and synthesises a grounded
	// answer. Retrieval and LLM failures degrade to a structured
	// "could not answer" result; only a missing document surfaces as
	// domain.ErrNotFound.
	Answer(ctx context.Context, req AskRequest) (*domain.Answer, error)
}
