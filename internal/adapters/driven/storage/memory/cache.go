package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure ContentCache implements the interface.
var _ driven.ContentCache = (*ContentCache)(nil)

type cacheKey struct {
	hash     string
	kind     driven.ArtifactKind
	strategy string
}

type cacheEntry struct {
	sourcePath string
	payload    []byte
}

// ContentCache is an in-memory implementation of driven.ContentCache.
// Artifacts go through a JSON round-trip so tests see the same type
// coercions the persistent cache produces.
type ContentCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

// NewContentCache creates a new in-memory content cache.
func NewContentCache() *ContentCache {
	return &ContentCache{entries: make(map[cacheKey]cacheEntry)}
}

// ComputeFileHash returns the hex SHA-256 digest of the file bytes.
func (c *ContentCache) ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the artifact stored for (hash, kind, strategy).
func (c *ContentCache) Get(_ context.Context, hash string, kind driven.ArtifactKind, strategy string, out any) error {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey{hash: hash, kind: kind, strategy: strategy}]
	c.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	if err := json.Unmarshal(entry.payload, out); err != nil {
		return fmt.Errorf("decode cached artifact: %w", err)
	}
	return nil
}

// Put persists the artifact, replacing any prior entry for the same key
// and purging stale entries recorded for the same source path under a
// different hash.
func (c *ContentCache) Put(_ context.Context, hash string, kind driven.ArtifactKind, strategy string, sourcePath string, artifact any) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.sourcePath == sourcePath && key.hash != hash {
			delete(c.entries, key)
		}
	}
	c.entries[cacheKey{hash: hash, kind: kind, strategy: strategy}] = cacheEntry{
		sourcePath: sourcePath,
		payload:    payload,
	}
	return nil
}

// Clear removes entries for one hash, or everything when hash is empty.
func (c *ContentCache) Clear(_ context.Context, hash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hash == "" {
		c.entries = make(map[cacheKey]cacheEntry)
		return nil
	}
	for key := range c.entries {
		if key.hash == hash {
			delete(c.entries, key)
		}
	}
	return nil
}

// Stats returns entry counts per kind and the total encoded size.
func (c *ContentCache) Stats(_ context.Context) (*driven.CacheStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &driven.CacheStats{Entries: make(map[driven.ArtifactKind]int)}
	for key, entry := range c.entries {
		stats.Entries[key.kind]++
		stats.TotalBytes += int64(len(entry.payload))
	}
	return stats, nil
}
