package driven

import "context"

// ArtifactKind identifies what a cached artifact contains.
type ArtifactKind string

// Cached artifact kinds.
const (
	// ArtifactMetadata is parse metadata (title, page count, dimensions).
	ArtifactMetadata ArtifactKind = "metadata"

	// ArtifactStructuredText is the per-page cleaned text.
	ArtifactStructuredText ArtifactKind = "structured_text"

	// ArtifactChunkSet is one strategy's chunk output.
	ArtifactChunkSet ArtifactKind = "chunks"
)

// CacheStats summarises cache contents.
type CacheStats struct {
	// Entries is the count of entries per artifact kind.
	Entries map[ArtifactKind]int

	// TotalBytes is the encoded size of all artifacts.
	TotalBytes int64
}

// ContentCache is a content-hash-keyed persistent store for parse and
// chunking artifacts. The key is the file's content hash, never its
// path, so renamed or duplicated files still hit the cache.
//
// The cache is an optimisation, never a source of truth: callers must
// treat any cache failure as a miss and fall through to recomputation.
type ContentCache interface {
	// ComputeFileHash returns the hex SHA-256 digest of the file bytes.
	ComputeFileHash(path string) (string, error)

	// Get returns the artifact stored for (hash, kind, strategy), or
	// domain.ErrNotFound when absent. Strategy is empty for kinds that
	// are not strategy-scoped. Entries recorded for the same source
	// path under a different hash are stale and removed on access.
	Get(ctx context.Context, hash string, kind ArtifactKind, strategy string, out any) error

	// Put persists the artifact with the hash, the source path and a
	// timestamp, overwriting any prior entry for the same key.
	Put(ctx context.Context, hash string, kind ArtifactKind, strategy string, sourcePath string, artifact any) error

	// Clear removes entries for one file hash, or the entire cache
	// when hash is empty.
	Clear(ctx context.Context, hash string) error

	// Stats returns entry counts per kind and the total encoded size.
	Stats(ctx context.Context) (*CacheStats, error)
}
