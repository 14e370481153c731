package chunking

import "github.com/archivist-labs/docq-cli/internal/core/ports/driven"

// Default strategy tunables.
const (
	// DefaultChunkSize is the default number of runes per chunk.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default number of overlapping runes
	// between consecutive fixed-size chunks.
	DefaultChunkOverlap = 200

	// DefaultMinChunkSize is the length below which a paragraph-packed
	// chunk is discarded (unless KeepShortTail is set).
	DefaultMinChunkSize = 100

	// DefaultSentencesPerChunk is the sentence count per chunk for the
	// sentence strategy.
	DefaultSentencesPerChunk = 5

	// DefaultMinPageChars is the minimum accumulated length before the
	// pagemerge strategy emits a chunk.
	DefaultMinPageChars = 200

	// DefaultMinSectionLength is the length below which a
	// heading-derived chunk is treated as a false positive.
	DefaultMinSectionLength = 20

	// boundaryBackscan is how far the fixed strategy searches backward
	// from a raw boundary for a natural separator.
	boundaryBackscan = 100

	// oversizeFactor marks a paragraph chunk for fixed re-splitting in
	// the hybrid composite when it exceeds oversizeFactor * ChunkSize.
	oversizeFactor = 1.5
)

// withDefaults fills zero-valued config fields with package defaults.
func withDefaults(cfg driven.ChunkConfig) driven.ChunkConfig {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap == 0 {
		cfg.Overlap = DefaultChunkOverlap
	}
	// Overlap must leave room for forward progress.
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 4
	}
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = DefaultMinChunkSize
	}
	if cfg.SentencesPerChunk <= 0 {
		cfg.SentencesPerChunk = DefaultSentencesPerChunk
	}
	if cfg.MinPageChars <= 0 {
		cfg.MinPageChars = DefaultMinPageChars
	}
	if cfg.MinSectionLength <= 0 {
		cfg.MinSectionLength = DefaultMinSectionLength
	}
	return cfg
}
