package chunking

import (
	"context"
	"strings"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure Fixed implements the interface.
var _ driven.ChunkStrategy = (*Fixed)(nil)

// sentenceTerminators are the Latin and CJK sentence-ending runes used
// for boundary adjustment and sentence splitting.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true, ';': true,
	'。': true, '！': true, '？': true, '；': true,
}

// Fixed slides a window of ChunkSize runes with Overlap runes repeated
// between consecutive chunks. The raw boundary is pulled back to the
// nearest natural separator within boundaryBackscan runes: a blank
// line first, then a newline, then a sentence terminator, then a
// space. The final chunk may be shorter than ChunkSize.
type Fixed struct{}

// NewFixed creates the fixed-size strategy.
func NewFixed() *Fixed { return &Fixed{} }

// Name returns the registry name of the strategy.
func (f *Fixed) Name() string { return "fixed" }

// Chunk splits the pages into fixed-size chunks.
func (f *Fixed) Chunk(_ context.Context, pages []domain.Page, cfg driven.ChunkConfig) ([]domain.Chunk, error) {
	cfg = withDefaults(cfg)
	m := newPageMap(pages)
	return fixedOver(m, 0, len(m.runes), cfg), nil
}

// fixedOver runs the fixed-size window over the rune range [from, to)
// of the map. Shared with the hybrid composite, which re-splits
// oversized paragraph chunks through the same routine.
func fixedOver(m *pageMap, from, to int, cfg driven.ChunkConfig) []domain.Chunk {
	var chunks []domain.Chunk

	start := from
	for start < to {
		end := start + cfg.ChunkSize
		if end > to {
			end = to
		} else {
			end = adjustBoundary(m.runes, start, end)
		}

		text := strings.TrimSpace(m.slice(start, end))
		if text != "" {
			c := buildChunk(m, start, end, text)
			c.Index = len(chunks)
			chunks = append(chunks, c)
		}

		if end >= to {
			break
		}

		next := end - cfg.Overlap
		if next <= start {
			// Overlap swallowed all progress; force the window forward.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// adjustBoundary searches backward from the raw boundary for the
// nearest separator, trying each separator class in preference order.
// When no separator lies within boundaryBackscan runes the raw
// boundary stands.
func adjustBoundary(runes []rune, start, end int) int {
	floor := end - boundaryBackscan
	if floor < start+1 {
		floor = start + 1
	}

	// Blank line: cut after the pair.
	for i := end - 2; i >= floor; i-- {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			return i + 2
		}
	}
	// Single newline.
	for i := end - 1; i >= floor; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	// Sentence terminator.
	for i := end - 1; i >= floor; i-- {
		if sentenceTerminators[runes[i]] {
			return i + 1
		}
	}
	// Space.
	for i := end - 1; i >= floor; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}

	return end
}
