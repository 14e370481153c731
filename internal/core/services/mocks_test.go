package services

import (
	"context"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockParser implements driven.DocumentParser.
type mockParser struct {
	metadata    *driven.DocumentMetadata
	metadataErr error

	// pagesByEngine maps engine -> page index -> raw text.
	pagesByEngine map[driven.Engine]map[int]string
	pageErrs      []error
	textErr       error

	dims    map[int]domain.PageDimensions
	dimsErr error

	textCalls []driven.Engine
}

func (m *mockParser) Metadata(_ context.Context, _ string) (*driven.DocumentMetadata, error) {
	if m.metadataErr != nil {
		return nil, m.metadataErr
	}
	if m.metadata != nil {
		return m.metadata, nil
	}
	return &driven.DocumentMetadata{PageCount: 1}, nil
}

func (m *mockParser) Text(_ context.Context, _ string, engine driven.Engine, pages []int) (map[int]string, []error, error) {
	m.textCalls = append(m.textCalls, engine)
	if m.textErr != nil {
		return nil, nil, m.textErr
	}
	all := m.pagesByEngine[engine]
	if pages == nil {
		out := make(map[int]string, len(all))
		for idx, text := range all {
			out[idx] = text
		}
		return out, m.pageErrs, nil
	}
	out := make(map[int]string, len(pages))
	for _, idx := range pages {
		if text, ok := all[idx]; ok {
			out[idx] = text
		}
	}
	return out, m.pageErrs, nil
}

func (m *mockParser) Tables(_ context.Context, _ string, _ []int) ([]driven.PageTable, error) {
	return nil, nil
}

func (m *mockParser) Images(_ context.Context, _ string, _ []int) ([]driven.PageImage, error) {
	return nil, nil
}

func (m *mockParser) PageDimensions(_ context.Context, _ string) (map[int]domain.PageDimensions, error) {
	if m.dimsErr != nil {
		return nil, m.dimsErr
	}
	return m.dims, nil
}

// mockEmbeddingService implements driven.EmbeddingService. Each text
// embeds to a constant-valued vector derived from its length so order
// scrambling is detectable.
type mockEmbeddingService struct {
	dim      int
	embedErr error
	calls    int
	batches  [][]string
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	m.batches = append(m.batches, texts)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, m.dim)
		for j := range vec {
			vec[j] = float32(len(t))
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dim }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockLLM implements driven.LLMService.
type mockLLM struct {
	response    string
	generateErr error
	calls       int
	lastPrompt  string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex.
type mockVectorIndex struct {
	hits        []domain.RetrievalResult
	searchErr   error
	upsertErr   error
	searchCalls int
	upserted    []driven.VectorRecord
	deleted     []driven.VectorFilter
}

func (m *mockVectorIndex) Upsert(_ context.Context, records []driven.VectorRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, records...)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int, _ *driven.VectorFilter) ([]domain.RetrievalResult, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorIndex) DeleteByFilter(_ context.Context, filter driven.VectorFilter) error {
	m.deleted = append(m.deleted, filter)
	return nil
}

func (m *mockVectorIndex) Count(_ context.Context) (int, error) {
	return len(m.upserted), nil
}

func (m *mockVectorIndex) Close() error { return nil }
