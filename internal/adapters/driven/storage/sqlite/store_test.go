package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func testDocument(id string) *domain.Document {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Document{
		ID:          id,
		Path:        "/tmp/reports/" + id + ".pdf",
		ContentHash: "hash-" + id,
		Title:       "Quarterly Report " + id,
		PageCount:   12,
		Status:      domain.StatusReady,
		ChunkCount:  3,
		Strategy:    "page",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "docq.db"), store.Path())

	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not rerun applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	row := store.db.QueryRow("SELECT MAX(version) FROM schema_migrations")
	require.NoError(t, row.Scan(&version))
	assert.Equal(t, 1, version)
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1")
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Path, got.Path)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, domain.StatusReady, got.Status)
	assert.Equal(t, 3, got.ChunkCount)
	assert.Equal(t, "page", got.Strategy)
}

func TestDocumentStore_SaveUpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1")
	doc.Status = domain.StatusProcessing
	require.NoError(t, docs.SaveDocument(ctx, doc))

	doc.Status = domain.StatusReady
	doc.ChunkCount = 7
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, got.Status)
	assert.Equal(t, 7, got.ChunkCount)

	all, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDocumentStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()

	_, err := docs.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = docs.GetDocumentByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetByHash(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-2")))

	got, err := docs.GetDocumentByHash(ctx, "hash-doc-2")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", got.ID)
}

func TestDocumentStore_ListOrderedByCreation(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	older := testDocument("doc-old")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := testDocument("doc-new")

	require.NoError(t, docs.SaveDocument(ctx, newer))
	require.NoError(t, docs.SaveDocument(ctx, older))

	all, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "doc-old", all[0].ID)
	assert.Equal(t, "doc-new", all[1].ID)
}

func testChunks(documentID string) []domain.Chunk {
	return []domain.Chunk{
		{
			ID:          "c-0001",
			DocumentID:  documentID,
			Index:       0,
			Text:        "The first chunk covers the introduction.",
			CharCount:   40,
			WordCount:   6,
			StartPage:   1,
			EndPage:     1,
			PageNumbers: []int{1},
			Type:        domain.ChunkTypeText,
			Embedding:   []float32{0.1, -0.2, 0.3},
			Metadata:    map[string]any{"chunk_index": float64(0)},
		},
		{
			ID:             "c-0002",
			DocumentID:     documentID,
			Index:          1,
			Text:           "func main() {}",
			CharCount:      14,
			WordCount:      3,
			StartPage:      2,
			EndPage:        3,
			PageNumbers:    []int{2, 3},
			Type:           domain.ChunkTypeSection,
			HeadingNumber:  "2.1",
			HeadingTitle:   "Implementation",
			HasCode:        true,
			CodeBlockCount: 1,
			Embedding:      []float32{0.5, 0.5, 0.5},
		},
	}
}

func TestDocumentStore_SaveAndGetChunks(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1")))

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "c-0001", got[0].ID)
	assert.Equal(t, []int{1}, got[0].PageNumbers)
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, got[0].Embedding)
	assert.Equal(t, map[string]any{"chunk_index": float64(0)}, got[0].Metadata)

	assert.Equal(t, "c-0002", got[1].ID)
	assert.Equal(t, domain.ChunkTypeSection, got[1].Type)
	assert.Equal(t, "2.1", got[1].HeadingNumber)
	assert.True(t, got[1].HasCode)
	assert.Equal(t, []int{2, 3}, got[1].PageNumbers)
}

func TestDocumentStore_SaveChunksReplacesPrior(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1")))

	replacement := []domain.Chunk{{
		ID:         "c-9999",
		DocumentID: "doc-1",
		Index:      0,
		Text:       "Replacement chunk.",
		Type:       domain.ChunkTypeText,
	}}
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", replacement))

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-9999", got[0].ID)
}

func TestDocumentStore_DeleteChunks(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1")))
	require.NoError(t, docs.DeleteChunks(ctx, "doc-1"))

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDocumentStore_DeleteDocumentCascades(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", testChunks("doc-1")))
	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	_, err := docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestContentCache_ComputeFileHash(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()

	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 sample"), 0600))

	first, err := cache.ComputeFileHash(path)
	require.NoError(t, err)
	second, err := cache.ComputeFileHash(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 changed"), 0600))
	third, err := cache.ComputeFileHash(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestContentCache_ComputeFileHashMissing(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()

	_, err := cache.ComputeFileHash(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestContentCache_PutAndGet(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()
	ctx := context.Background()

	metadata := driven.DocumentMetadata{Title: "Report", Author: "A. Writer", PageCount: 9}
	require.NoError(t, cache.Put(ctx, "hash-a", driven.ArtifactMetadata, "", "/tmp/a.pdf", metadata))

	var got driven.DocumentMetadata
	require.NoError(t, cache.Get(ctx, "hash-a", driven.ArtifactMetadata, "", &got))
	assert.Equal(t, metadata, got)
}

func TestContentCache_GetMiss(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()

	var out driven.DocumentMetadata
	err := cache.Get(context.Background(), "hash-a", driven.ArtifactMetadata, "", &out)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestContentCache_StrategyScopesChunkSets(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()
	ctx := context.Background()

	pageChunks := []domain.Chunk{{ID: "p-0001", Text: "page chunk"}}
	sizeChunks := []domain.Chunk{{ID: "s-0001", Text: "size chunk"}}
	require.NoError(t, cache.Put(ctx, "hash-a", driven.ArtifactChunkSet, "page", "/tmp/a.pdf", pageChunks))
	require.NoError(t, cache.Put(ctx, "hash-a", driven.ArtifactChunkSet, "size", "/tmp/a.pdf", sizeChunks))

	var got []domain.Chunk
	require.NoError(t, cache.Get(ctx, "hash-a", driven.ArtifactChunkSet, "page", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p-0001", got[0].ID)

	require.NoError(t, cache.Get(ctx, "hash-a", driven.ArtifactChunkSet, "size", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "s-0001", got[0].ID)
}

func TestContentCache_PutPurgesStaleEntries(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()
	ctx := context.Background()

	old := driven.DocumentMetadata{Title: "Old revision"}
	require.NoError(t, cache.Put(ctx, "hash-old", driven.ArtifactMetadata, "", "/tmp/a.pdf", old))

	// Same path written under a new hash invalidates the old entry.
	updated := driven.DocumentMetadata{Title: "New revision"}
	require.NoError(t, cache.Put(ctx, "hash-new", driven.ArtifactMetadata, "", "/tmp/a.pdf", updated))

	var out driven.DocumentMetadata
	err := cache.Get(ctx, "hash-old", driven.ArtifactMetadata, "", &out)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, cache.Get(ctx, "hash-new", driven.ArtifactMetadata, "", &out))
	assert.Equal(t, "New revision", out.Title)
}

func TestContentCache_ClearByHash(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "hash-a", driven.ArtifactMetadata, "", "/tmp/a.pdf", driven.DocumentMetadata{}))
	require.NoError(t, cache.Put(ctx, "hash-b", driven.ArtifactMetadata, "", "/tmp/b.pdf", driven.DocumentMetadata{}))

	require.NoError(t, cache.Clear(ctx, "hash-a"))

	var out driven.DocumentMetadata
	assert.ErrorIs(t, cache.Get(ctx, "hash-a", driven.ArtifactMetadata, "", &out), domain.ErrNotFound)
	assert.NoError(t, cache.Get(ctx, "hash-b", driven.ArtifactMetadata, "", &out))
}

func TestContentCache_ClearAll(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "hash-a", driven.ArtifactMetadata, "", "/tmp/a.pdf", driven.DocumentMetadata{}))
	require.NoError(t, cache.Put(ctx, "hash-b", driven.ArtifactChunkSet, "page", "/tmp/b.pdf", []domain.Chunk{}))

	require.NoError(t, cache.Clear(ctx, ""))

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats.Entries)
	assert.Zero(t, stats.TotalBytes)
}

func TestContentCache_Stats(t *testing.T) {
	store := newTestStore(t)
	cache := store.ContentCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "hash-a", driven.ArtifactMetadata, "", "/tmp/a.pdf", driven.DocumentMetadata{Title: "A"}))
	require.NoError(t, cache.Put(ctx, "hash-b", driven.ArtifactMetadata, "", "/tmp/b.pdf", driven.DocumentMetadata{Title: "B"}))
	require.NoError(t, cache.Put(ctx, "hash-a", driven.ArtifactChunkSet, "page", "/tmp/a.pdf", []domain.Chunk{{ID: "c-0001"}}))

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries[driven.ArtifactMetadata])
	assert.Equal(t, 1, stats.Entries[driven.ArtifactChunkSet])
	assert.Positive(t, stats.TotalBytes)
}
