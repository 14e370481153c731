package domain

import "time"

// Language selects the prompt template and canned responses for answering.
type Language string

// Supported answer languages.
const (
	// LanguageEnglish answers in English.
	LanguageEnglish Language = "en"

	// LanguageChinese answers in Chinese.
	LanguageChinese Language = "zh"
)

// IsValid reports whether the language is supported.
func (l Language) IsValid() bool {
	switch l {
	case LanguageEnglish, LanguageChinese:
		return true
	default:
		return false
	}
}

// QueryState tracks a question through the answering pipeline.
// Transitions: Received -> Retrieving -> (EmptyResult | ContextBuilt)
// -> Answering -> Done. Failed is reachable from any state.
type QueryState string

// Query lifecycle states.
const (
	QueryReceived     QueryState = "received"
	QueryRetrieving   QueryState = "retrieving"
	QueryEmptyResult  QueryState = "empty_result"
	QueryContextBuilt QueryState = "context_built"
	QueryAnswering    QueryState = "answering"
	QueryDone         QueryState = "done"
	QueryFailed       QueryState = "failed"
)

// RetrievalResult is one vector search hit. Ephemeral: produced per
// query and never persisted by this core.
type RetrievalResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// Text is the stored chunk text.
	Text string

	// Score is the similarity score when the index reports one directly.
	Score float64

	// Distance is the raw distance when the index reports distances
	// instead of similarities. Nil when absent.
	Distance *float64

	// Metadata contains the payload stored alongside the vector.
	Metadata map[string]any
}

// Similarity returns the result's similarity, computed as 1 - distance
// when a distance is present, otherwise the reported score.
func (r RetrievalResult) Similarity() float64 {
	if r.Distance != nil {
		return 1 - *r.Distance
	}
	return r.Score
}

// AnswerSource attributes part of an answer to a retrieved chunk.
type AnswerSource struct {
	// ChunkID identifies the contributing chunk.
	ChunkID string

	// Snippet is the chunk text truncated for display.
	Snippet string

	// Page is the source page number, 0 when unknown.
	Page int

	// Similarity is the retrieval similarity. Nil when the index
	// reported neither a score nor a distance.
	Similarity *float64
}

// Answer is the result of one question-answering run.
// Ephemeral: one per query, never persisted.
type Answer struct {
	// Question is the original question.
	Question string

	// Text is the generated answer, or a canned "not found" response
	// when retrieval produced nothing.
	Text string

	// Sources attributes the answer to retrieved chunks, ordered by
	// descending similarity.
	Sources []AnswerSource

	// Found is false when the canned "not found" path was taken.
	Found bool

	// ProcessingTime is the wall-clock duration from receipt to completion.
	ProcessingTime time.Duration
}
