package driven

import (
	"context"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// ChunkConfig carries the tunables shared by all chunking strategies.
// Zero values select strategy defaults.
type ChunkConfig struct {
	// ChunkSize is the target chunk length in runes.
	ChunkSize int

	// Overlap is the number of runes repeated between consecutive
	// fixed-size chunks.
	Overlap int

	// MinChunkSize is the length below which a paragraph-packed chunk
	// is discarded (see KeepShortTail).
	MinChunkSize int

	// KeepShortTail keeps trailing fragments shorter than
	// MinChunkSize instead of silently dropping them.
	KeepShortTail bool

	// SentencesPerChunk is the sentence count per chunk for the
	// sentence strategy.
	SentencesPerChunk int

	// MinPageChars is the minimum accumulated text length for the
	// pagemerge strategy before a chunk is emitted.
	MinPageChars int

	// MinSectionLength is the length below which a heading-derived
	// chunk is treated as a false positive and discarded.
	MinSectionLength int
}

// ChunkStrategy converts structured page text into an ordered run of
// chunks. Strategies are selected by name through a registry; each
// returns the same chunk shape. Re-running a strategy on identical
// input must be idempotent, a requirement the content cache relies on.
type ChunkStrategy interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Chunk splits the pages into an ordered run of chunks. Indices
	// are dense from 0 and follow document reading order. For
	// non-empty input the result is never empty; strategies that can
	// legitimately find nothing (e.g. no headings) must fall back
	// rather than return zero chunks.
	Chunk(ctx context.Context, pages []domain.Page, cfg ChunkConfig) ([]domain.Chunk, error)
}
