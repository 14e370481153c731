// Package qdrant provides a vector index adapter backed by a Qdrant
// server, using its REST API directly.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "docq_chunks"
	DefaultTimeout    = 15 * time.Second
)

// pointNamespace seeds the deterministic point IDs. Qdrant only
// accepts UUIDs or unsigned integers as point IDs, so chunk IDs are
// hashed into UUIDs and kept verbatim in the payload.
var pointNamespace = uuid.MustParse("7a9f4f6e-31a2-42c5-9f7d-58dc0de2a1b4")

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant server address (default: http://localhost:6333).
	URL string

	// APIKey authenticates requests, if the server requires it.
	APIKey string

	// Collection is the collection name (default: docq_chunks).
	Collection string

	// Dimensions is the vector size of the collection (required).
	Dimensions int

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Index is a minimal REST client to Qdrant. It assumes cosine distance
// and creates the collection on construction if missing.
type Index struct {
	client     *http.Client
	url        string
	apiKey     string
	collection string
	dimensions int
}

// New creates a Qdrant index and ensures the collection exists with
// the configured dimension and cosine distance.
func New(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		return nil, &domain.VectorSearchError{Op: "init", Err: fmt.Errorf("qdrant: dimensions must be positive")}
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	idx := &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}

	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// ensureCollection creates the collection if it does not exist.
// Qdrant returns 200 for an existing collection with the same schema.
func (idx *Index) ensureCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     idx.dimensions,
			"distance": "Cosine",
		},
	}
	if err := idx.do(ctx, http.MethodPut, idx.collectionURL(""), body, nil); err != nil {
		return &domain.VectorSearchError{Op: "init", Err: err}
	}
	return nil
}

// Upsert inserts or replaces records.
func (idx *Index) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]map[string]any, len(records))
	for i, rec := range records {
		if len(rec.Vector) != idx.dimensions {
			return &domain.VectorSearchError{
				Op:  "upsert",
				Err: fmt.Errorf("%w: record %s has dimension %d, collection has %d", domain.ErrDimensionMismatch, rec.ChunkID, len(rec.Vector), idx.dimensions),
			}
		}

		payload := make(map[string]any, len(rec.Metadata)+2)
		for k, v := range rec.Metadata {
			payload[k] = v
		}
		payload["chunk_id"] = rec.ChunkID
		payload["text"] = rec.Text

		points[i] = map[string]any{
			"id":      pointID(rec.ChunkID),
			"vector":  rec.Vector,
			"payload": payload,
		}
	}

	body := map[string]any{"points": points}
	if err := idx.do(ctx, http.MethodPut, idx.collectionURL("/points?wait=true"), body, nil); err != nil {
		return &domain.VectorSearchError{Op: "upsert", Err: err}
	}
	return nil
}

// Search returns the k nearest records to the query vector, ordered by
// descending cosine similarity.
func (idx *Index) Search(ctx context.Context, query []float32, k int, filter *driven.VectorFilter) ([]domain.RetrievalResult, error) {
	if len(query) != idx.dimensions {
		return nil, &domain.VectorSearchError{
			Op:  "search",
			Err: fmt.Errorf("%w: query has dimension %d, collection has %d", domain.ErrDimensionMismatch, len(query), idx.dimensions),
		}
	}
	if k <= 0 {
		k = 5
	}

	body := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	if f := filterClause(filter); f != nil {
		body["filter"] = f
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := idx.do(ctx, http.MethodPost, idx.collectionURL("/points/search"), body, &resp); err != nil {
		return nil, &domain.VectorSearchError{Op: "search", Err: err}
	}

	results := make([]domain.RetrievalResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		res := domain.RetrievalResult{Score: hit.Score}
		if v, ok := hit.Payload["chunk_id"].(string); ok {
			res.ChunkID = v
		}
		if v, ok := hit.Payload["text"].(string); ok {
			res.Text = v
		}

		metadata := make(map[string]any, len(hit.Payload))
		for key, val := range hit.Payload {
			if key == "chunk_id" || key == "text" {
				continue
			}
			metadata[key] = val
		}
		res.Metadata = metadata

		results = append(results, res)
	}
	return results, nil
}

// DeleteByFilter removes all records matching the filter. An empty
// filter clears the whole collection.
func (idx *Index) DeleteByFilter(ctx context.Context, filter driven.VectorFilter) error {
	clause := filterClause(&filter)
	if clause == nil {
		// No conditions: drop and recreate the collection.
		if err := idx.do(ctx, http.MethodDelete, idx.collectionURL(""), nil, nil); err != nil {
			return &domain.VectorSearchError{Op: "delete", Err: err}
		}
		return idx.ensureCollection(ctx)
	}

	body := map[string]any{"filter": clause}
	if err := idx.do(ctx, http.MethodPost, idx.collectionURL("/points/delete?wait=true"), body, nil); err != nil {
		return &domain.VectorSearchError{Op: "delete", Err: err}
	}
	return nil
}

// Count returns the number of stored records.
func (idx *Index) Count(ctx context.Context) (int, error) {
	body := map[string]any{"exact": true}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := idx.do(ctx, http.MethodPost, idx.collectionURL("/points/count"), body, &resp); err != nil {
		return 0, &domain.VectorSearchError{Op: "count", Err: err}
	}
	return resp.Result.Count, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// collectionURL builds a collection-scoped endpoint URL.
func (idx *Index) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", idx.url, idx.collection, suffix)
}

// do sends a JSON request and decodes the response into out, if given.
func (idx *Index) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idx.apiKey != "" {
		req.Header.Set("api-key", idx.apiKey)
	}

	resp, err := idx.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant %s %s failed (status %d): %s", method, url, resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// filterClause converts a VectorFilter into a Qdrant filter object.
// Returns nil when no conditions apply.
func filterClause(filter *driven.VectorFilter) map[string]any {
	if filter == nil || filter.DocumentID == "" {
		return nil
	}
	return map[string]any{
		"must": []map[string]any{
			{
				"key":   "document_id",
				"match": map[string]any{"value": filter.DocumentID},
			},
		},
	}
}

// pointID derives a stable UUID point ID from a chunk ID.
func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}
