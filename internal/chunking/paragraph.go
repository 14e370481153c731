package chunking

import (
	"context"
	"strings"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure Paragraph implements the interface.
var _ driven.ChunkStrategy = (*Paragraph)(nil)

// Paragraph splits on blank-line-delimited paragraphs and greedily
// packs them into chunks of at most ChunkSize runes. A packed chunk
// shorter than MinChunkSize is discarded unless KeepShortTail is set;
// structured text normalisation guarantees paragraphs are separated by
// exactly one blank line.
type Paragraph struct{}

// NewParagraph creates the paragraph strategy.
func NewParagraph() *Paragraph { return &Paragraph{} }

// Name returns the registry name of the strategy.
func (p *Paragraph) Name() string { return "paragraph" }

// Chunk splits the pages into paragraph-packed chunks.
func (p *Paragraph) Chunk(_ context.Context, pages []domain.Page, cfg driven.ChunkConfig) ([]domain.Chunk, error) {
	cfg = withDefaults(cfg)
	m := newPageMap(pages)
	return paragraphOver(m, cfg), nil
}

// paraSpan is one paragraph's rune range in the page map, end exclusive.
type paraSpan struct {
	start int
	end   int
}

// paragraphOver packs paragraphs greedily. Shared with the hybrid
// composite.
func paragraphOver(m *pageMap, cfg driven.ChunkConfig) []domain.Chunk {
	spans := splitParagraphs(m.runes)

	var chunks []domain.Chunk
	var cur []paraSpan
	curLen := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		start, end := cur[0].start, cur[len(cur)-1].end
		text := strings.TrimSpace(m.slice(start, end))
		cur, curLen = nil, 0
		if text == "" {
			return
		}
		if len([]rune(text)) < cfg.MinChunkSize && !cfg.KeepShortTail {
			return
		}
		c := buildChunk(m, start, end, text)
		c.Index = len(chunks)
		chunks = append(chunks, c)
	}

	for _, sp := range spans {
		n := sp.end - sp.start
		if curLen > 0 && curLen+n > cfg.ChunkSize {
			flush()
		}
		cur = append(cur, sp)
		curLen += n
	}
	flush()

	return chunks
}

// splitParagraphs returns the rune ranges of blank-line-delimited
// paragraphs, skipping whitespace-only segments.
func splitParagraphs(runes []rune) []paraSpan {
	var spans []paraSpan

	start := 0
	i := 0
	emit := func(from, to int) {
		if strings.TrimSpace(string(runes[from:to])) != "" {
			spans = append(spans, paraSpan{start: from, end: to})
		}
	}

	for i < len(runes) {
		if runes[i] == '\n' && i+1 < len(runes) && runes[i+1] == '\n' {
			emit(start, i)
			// Swallow the blank-line run.
			for i < len(runes) && runes[i] == '\n' {
				i++
			}
			start = i
			continue
		}
		i++
	}
	emit(start, len(runes))

	return spans
}
