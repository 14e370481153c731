package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driving"
	"github.com/archivist-labs/docq-cli/internal/logger"
)

const (
	// DefaultTopK is the retrieval depth when the caller gives none.
	DefaultTopK = 5

	// snippetLength is the display truncation for source snippets, in runes.
	snippetLength = 200

	// defaultMaxTokens bounds one answer generation.
	defaultMaxTokens = 1024
)

// Ensure RAGService implements the interface.
var _ driving.AskService = (*RAGService)(nil)

// RAGService answers questions about ingested documents. Each query
// moves through a fixed sequence of states: received, retrieving, then
// either empty result or context built, then answering, then done.
// Retrieval and LLM failures degrade to a canned answer instead of
// surfacing; only a missing document is an error to the caller.
type RAGService struct {
	docStore driven.DocumentStore
	embedder *Embedder
	vector   driven.VectorIndex
	llm      driven.LLMService
}

// NewRAGService creates the question-answering service.
func NewRAGService(docStore driven.DocumentStore, embedder *Embedder, vector driven.VectorIndex, llm driven.LLMService) *RAGService {
	return &RAGService{
		docStore: docStore,
		embedder: embedder,
		vector:   vector,
		llm:      llm,
	}
}

// Answer runs one retrieval-augmented generation query.
func (s *RAGService) Answer(ctx context.Context, req driving.AskRequest) (*domain.Answer, error) {
	start := time.Now()
	state := domain.QueryReceived
	logger.Section("Question Answering")
	logger.Debug("State: %s, question: %q", state, req.Question)

	if req.Question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if req.TopK <= 0 {
		req.TopK = DefaultTopK
	}
	if !req.Language.IsValid() {
		req.Language = domain.LanguageEnglish
	}

	// The document must exist; this is the one hard failure.
	if req.DocumentID != "" {
		if _, err := s.docStore.GetDocument(ctx, req.DocumentID); err != nil {
			return nil, err
		}
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vector == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	// 1. Retrieve.
	state = domain.QueryRetrieving
	logger.Debug("State: %s (top_k=%d)", state, req.TopK)

	results, err := s.retrieve(ctx, req)
	if err != nil {
		// Treat a broken retrieval path like an empty one rather than
		// failing the whole query.
		logger.Warn("Retrieval degraded: %v", err)
		return s.degraded(req, noAnswerText(req.Language), start), nil
	}

	// 2. Short-circuit on empty retrieval: no LLM call, no sources.
	if len(results) == 0 {
		state = domain.QueryEmptyResult
		logger.Debug("State: %s", state)
		return &domain.Answer{
			Question:       req.Question,
			Text:           notFoundText(req.Language),
			Sources:        []domain.AnswerSource{},
			Found:          false,
			ProcessingTime: time.Since(start),
		}, nil
	}

	// 3. Build the grounded prompt from full chunk texts.
	state = domain.QueryContextBuilt
	logger.Debug("State: %s (%d chunks)", state, len(results))
	prompt := buildPrompt(req.Question, results, req.Language)

	// 4. Generate.
	state = domain.QueryAnswering
	logger.Debug("State: %s (model=%s)", state, s.llm.ModelName())

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   defaultMaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		state = domain.QueryFailed
		logger.Warn("State: %s, LLM call failed: %v", state, err)
		answer := s.degraded(req, noAnswerText(req.Language), start)
		answer.Sources = buildSources(results)
		return answer, nil
	}

	state = domain.QueryDone
	elapsed := time.Since(start)
	logger.Debug("State: %s in %s", state, elapsed)

	return &domain.Answer{
		Question:       req.Question,
		Text:           text,
		Sources:        buildSources(results),
		Found:          true,
		ProcessingTime: elapsed,
	}, nil
}

// retrieve embeds the question and queries the vector index scoped to
// the target document.
func (s *RAGService) retrieve(ctx context.Context, req driving.AskRequest) ([]domain.RetrievalResult, error) {
	query, err := s.embedder.EmbedQuery(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	var filter *driven.VectorFilter
	if req.DocumentID != "" {
		filter = &driven.VectorFilter{DocumentID: req.DocumentID}
	}

	results, err := s.vector.Search(ctx, query, req.TopK, filter)
	if err != nil {
		var vse *domain.VectorSearchError
		if errors.As(err, &vse) {
			return nil, err
		}
		return nil, &domain.VectorSearchError{Op: "search", Err: err}
	}
	return results, nil
}

// degraded builds the structured "could not answer" result.
func (s *RAGService) degraded(req driving.AskRequest, text string, start time.Time) *domain.Answer {
	return &domain.Answer{
		Question:       req.Question,
		Text:           text,
		Sources:        []domain.AnswerSource{},
		Found:          false,
		ProcessingTime: time.Since(start),
	}
}

// buildSources attributes the answer to its retrieved chunks, in
// retrieval order.
func buildSources(results []domain.RetrievalResult) []domain.AnswerSource {
	sources := make([]domain.AnswerSource, len(results))
	for i, r := range results {
		sim := r.Similarity()
		var simPtr *float64
		if r.Score != 0 || r.Distance != nil {
			simPtr = &sim
		}
		sources[i] = domain.AnswerSource{
			ChunkID:    r.ChunkID,
			Snippet:    truncateRunes(r.Text, snippetLength),
			Page:       sourcePage(r.Metadata),
			Similarity: simPtr,
		}
	}
	return sources
}

// sourcePage extracts a page number from hit metadata. It prefers an
// explicit start page, then a plain page field, then the first entry of
// a page-number list, coping with the numeric and string encodings that
// JSON round-trips produce.
func sourcePage(meta map[string]any) int {
	for _, key := range []string{"start_page", "page"} {
		if v, ok := meta[key]; ok {
			if p, ok := asInt(v); ok {
				return p
			}
		}
	}
	if v, ok := meta["page_numbers"]; ok {
		switch list := v.(type) {
		case []any:
			if len(list) > 0 {
				if p, ok := asInt(list[0]); ok {
					return p
				}
			}
		case []int:
			if len(list) > 0 {
				return list[0]
			}
		}
	}
	return 0
}

// asInt coerces the numeric shapes a payload value can arrive in.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if p, err := strconv.Atoi(n); err == nil {
			return p, true
		}
	}
	return 0, false
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
