package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/archivist-labs/docq-cli/internal/chunking"
	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driving"
	"github.com/archivist-labs/docq-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestOptions carries the pipeline tunables.
type IngestOptions struct {
	// ChunkConfig is passed to every chunking strategy.
	ChunkConfig driven.ChunkConfig

	// PageLimit rejects documents with more pages; 0 disables the check.
	PageLimit int

	// ParseTimeout bounds one parse run; 0 disables the bound.
	ParseTimeout time.Duration
}

// IngestService runs the document ingestion pipeline:
// parse -> structured text -> chunk -> embed -> persist, with the
// content cache consulted at the parse and chunk stages. Persistence
// is atomic at document granularity: a failure leaves no chunk rows
// and no vectors behind.
type IngestService struct {
	parser    driven.DocumentParser
	cache     driven.ContentCache
	docStore  driven.DocumentStore
	extractor *Extractor
	embedder  *Embedder
	vector    driven.VectorIndex
	registry  *chunking.Registry
	opts      IngestOptions
}

// NewIngestService creates the ingestion pipeline service.
// The embedder and vector index are optional; without them ingestion
// stores chunks only.
func NewIngestService(
	parser driven.DocumentParser,
	cache driven.ContentCache,
	docStore driven.DocumentStore,
	extractor *Extractor,
	embedder *Embedder,
	vector driven.VectorIndex,
	registry *chunking.Registry,
	opts IngestOptions,
) *IngestService {
	return &IngestService{
		parser:    parser,
		cache:     cache,
		docStore:  docStore,
		extractor: extractor,
		embedder:  embedder,
		vector:    vector,
		registry:  registry,
		opts:      opts,
	}
}

// ProcessDocument parses, chunks and optionally embeds one PDF.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *IngestService) ProcessDocument(ctx context.Context, path, strategy string, generateEmbeddings bool) (*driving.ProcessResult, error) {
	logger.Section("Document Ingestion")
	logger.Debug("Path: %s, strategy: %q, embeddings: %t", path, strategy, generateEmbeddings)

	if s.opts.ParseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ParseTimeout)
		defer cancel()
	}

	// 1. Resolve the file and its content identity.
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}

	hash, err := s.cache.ComputeFileHash(path)
	if err != nil {
		return nil, fmt.Errorf("hash file: %w", err)
	}
	logger.Debug("Content hash: %s", shortHash(hash))

	strat, err := s.registry.Get(strategy)
	if err != nil {
		return nil, err
	}
	strategy = strat.Name()

	// 2. Parse metadata (cached) and vet the document.
	meta, err := s.metadata(ctx, path, hash)
	if err != nil {
		return nil, err
	}
	if meta.Encrypted {
		return nil, fmt.Errorf("%w: %s", domain.ErrPasswordProtected, path)
	}
	if s.opts.PageLimit > 0 && meta.PageCount > s.opts.PageLimit {
		return nil, fmt.Errorf("%w: %d pages (limit %d)", domain.ErrPageLimitExceeded, meta.PageCount, s.opts.PageLimit)
	}

	// 3. Register the document, reusing a prior registration for the
	// same content.
	doc, err := s.register(ctx, path, hash, meta)
	if err != nil {
		return nil, err
	}

	// 4. Chunk, consulting the cache first.
	chunks, cacheHit, err := s.chunk(ctx, path, hash, strat)
	if err != nil {
		s.markFailed(ctx, doc)
		return nil, err
	}
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
	}

	// 5. Embed when requested.
	embedded := false
	if generateEmbeddings {
		if err := s.embed(ctx, chunks); err != nil {
			s.markFailed(ctx, doc)
			return nil, err
		}
		embedded = true
	}

	// 6. Persist chunk rows and vectors; roll both back on failure.
	if err := s.commit(ctx, doc, chunks, embedded); err != nil {
		s.rollback(ctx, doc)
		return nil, err
	}

	doc.Status = domain.StatusReady
	doc.ChunkCount = len(chunks)
	doc.Strategy = strategy
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Ingested %s: %d chunks (cache hit: %t)", doc.ID, len(chunks), cacheHit)
	return &driving.ProcessResult{
		Document: doc,
		Chunks:   chunks,
		CacheHit: cacheHit,
		Embedded: embedded,
	}, nil
}

// Remove deletes a document's chunks, vectors and registration.
func (s *IngestService) Remove(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if s.vector != nil {
		if err := s.vector.DeleteByFilter(ctx, driven.VectorFilter{DocumentID: documentID}); err != nil {
			logger.Warn("Vector cleanup failed: %v", err)
		}
	}
	return s.docStore.DeleteDocument(ctx, documentID)
}

// metadata returns parse metadata, cache-first.
func (s *IngestService) metadata(ctx context.Context, path, hash string) (*driven.DocumentMetadata, error) {
	var cached driven.DocumentMetadata
	if err := s.cache.Get(ctx, hash, driven.ArtifactMetadata, "", &cached); err == nil {
		return &cached, nil
	}

	meta, err := s.parser.Metadata(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrPasswordProtected) || errors.Is(err, domain.ErrCorrupted) {
			return nil, err
		}
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	if err := s.cache.Put(ctx, hash, driven.ArtifactMetadata, "", path, meta); err != nil {
		logger.Warn("Metadata cache write failed: %v", err)
	}
	return meta, nil
}

// register creates or refreshes the document row for this content.
func (s *IngestService) register(ctx context.Context, path, hash string, meta *driven.DocumentMetadata) (*domain.Document, error) {
	doc, err := s.docStore.GetDocumentByHash(ctx, hash)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("look up document: %w", err)
	}

	now := time.Now().UTC()
	if doc == nil {
		doc = &domain.Document{
			ID:        uuid.New().String(),
			CreatedAt: now,
		}
	}
	doc.Path = path
	doc.ContentHash = hash
	doc.Title = meta.Title
	if doc.Title == "" {
		doc.Title = baseName(path)
	}
	doc.PageCount = meta.PageCount
	doc.Status = domain.StatusProcessing
	doc.UpdatedAt = now

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}
	return doc, nil
}

// chunk returns the chunk run for (hash, strategy), cache-first.
// Chunk IDs are derived from the content hash so that re-running the
// same strategy over the same bytes is byte-identical, which the
// cache contract depends on.
func (s *IngestService) chunk(ctx context.Context, path, hash string, strat driven.ChunkStrategy) ([]domain.Chunk, bool, error) {
	var cached []domain.Chunk
	if err := s.cache.Get(ctx, hash, driven.ArtifactChunkSet, strat.Name(), &cached); err == nil && len(cached) > 0 {
		logger.Debug("Chunk cache hit for %s/%s", shortHash(hash), strat.Name())
		return cached, true, nil
	}

	st, err := s.extractor.Extract(ctx, path, hash)
	if err != nil {
		return nil, false, err
	}
	if len(st.Pages) == 0 {
		return nil, false, &domain.ChunkingError{
			Strategy: strat.Name(),
			Err:      errors.New("document has no extractable text"),
		}
	}

	chunks, err := strat.Chunk(ctx, st.Pages, s.opts.ChunkConfig)
	if err != nil {
		return nil, false, &domain.ChunkingError{Strategy: strat.Name(), Err: err}
	}
	if len(chunks) == 0 {
		return nil, false, &domain.ChunkingError{
			Strategy: strat.Name(),
			Err:      errors.New("no chunks produced for non-empty document"),
		}
	}

	for i := range chunks {
		chunks[i].ID = chunkID(hash, strat.Name(), chunks[i].Index)
	}

	if err := s.cache.Put(ctx, hash, driven.ArtifactChunkSet, strat.Name(), path, chunks); err != nil {
		logger.Warn("Chunk cache write failed: %v", err)
	}
	return chunks, false, nil
}

// embed fills every chunk's Embedding in place.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	return nil
}

// commit persists chunk rows, then vectors.
func (s *IngestService) commit(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, embedded bool) error {
	if err := s.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	if !embedded || s.vector == nil {
		return nil
	}

	records := make([]driven.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = driven.VectorRecord{
			ChunkID: c.ID,
			Vector:  c.Embedding,
			Text:    c.Text,
			Metadata: map[string]any{
				"document_id":  doc.ID,
				"chunk_index":  c.Index,
				"start_page":   c.StartPage,
				"end_page":     c.EndPage,
				"page_numbers": c.PageNumbers,
				"chunk_type":   string(c.Type),
				"has_code":     c.HasCode,
			},
		}
	}
	if err := s.vector.Upsert(ctx, records); err != nil {
		return fmt.Errorf("index vectors: %w", err)
	}
	return nil
}

// rollback removes whatever the failed commit left behind.
func (s *IngestService) rollback(ctx context.Context, doc *domain.Document) {
	if err := s.docStore.DeleteChunks(ctx, doc.ID); err != nil {
		logger.Warn("Chunk rollback failed: %v", err)
	}
	if s.vector != nil {
		if err := s.vector.DeleteByFilter(ctx, driven.VectorFilter{DocumentID: doc.ID}); err != nil {
			logger.Warn("Vector rollback failed: %v", err)
		}
	}
	s.markFailed(ctx, doc)
}

// markFailed records the failed state; best effort.
func (s *IngestService) markFailed(ctx context.Context, doc *domain.Document) {
	doc.Status = domain.StatusFailed
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Failed to record document status: %v", err)
	}
}

// shortHash truncates a content hash for log lines. Hashes shorter
// than the display width pass through unchanged.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// chunkID derives a stable chunk identity from content hash, strategy
// and position.
func chunkID(hash, strategy string, index int) string {
	h := hash
	if len(h) > 16 {
		h = h[:16]
	}
	return fmt.Sprintf("%s-%s-%04d", h, strategy, index)
}

// baseName returns the final path element without directory prefixes.
func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
