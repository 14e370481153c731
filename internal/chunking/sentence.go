package chunking

import (
	"context"
	"strings"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure Sentence implements the interface.
var _ driven.ChunkStrategy = (*Sentence)(nil)

// Sentence splits on Latin and CJK sentence terminators and groups
// SentencesPerChunk sentences per chunk. The boundary heuristic will
// mis-split abbreviations and decimals; that imprecision is accepted
// and not corrected.
type Sentence struct{}

// NewSentence creates the sentence strategy.
func NewSentence() *Sentence { return &Sentence{} }

// Name returns the registry name of the strategy.
func (s *Sentence) Name() string { return "sentence" }

// Chunk splits the pages into sentence-grouped chunks.
func (s *Sentence) Chunk(_ context.Context, pages []domain.Page, cfg driven.ChunkConfig) ([]domain.Chunk, error) {
	cfg = withDefaults(cfg)
	m := newPageMap(pages)

	sentences := splitSentences(m.runes)

	var chunks []domain.Chunk
	for i := 0; i < len(sentences); i += cfg.SentencesPerChunk {
		j := i + cfg.SentencesPerChunk
		if j > len(sentences) {
			j = len(sentences)
		}
		start, end := sentences[i].start, sentences[j-1].end
		text := strings.TrimSpace(m.slice(start, end))
		if text == "" {
			continue
		}
		c := buildChunk(m, start, end, text)
		c.Index = len(chunks)
		chunks = append(chunks, c)
	}

	return chunks, nil
}

// splitSentences returns the rune ranges of terminator-delimited
// sentences. A run of terminators belongs to the sentence it closes.
func splitSentences(runes []rune) []paraSpan {
	var spans []paraSpan

	start := 0
	for i := 0; i < len(runes); i++ {
		if !sentenceTerminators[runes[i]] {
			continue
		}
		// Swallow the terminator run.
		end := i + 1
		for end < len(runes) && sentenceTerminators[runes[end]] {
			end++
		}
		if strings.TrimSpace(string(runes[start:end])) != "" {
			spans = append(spans, paraSpan{start: start, end: end})
		}
		i = end - 1
		start = end
	}
	if strings.TrimSpace(string(runes[start:])) != "" {
		spans = append(spans, paraSpan{start: start, end: len(runes)})
	}

	return spans
}
