// Package cli provides the docq command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/archivist-labs/docq-cli/internal/adapters/driven/ai"
	configfile "github.com/archivist-labs/docq-cli/internal/adapters/driven/config/file"
	"github.com/archivist-labs/docq-cli/internal/adapters/driven/parser/pdf"
	"github.com/archivist-labs/docq-cli/internal/adapters/driven/storage/sqlite"
	memvec "github.com/archivist-labs/docq-cli/internal/adapters/driven/vector/memory"
	"github.com/archivist-labs/docq-cli/internal/adapters/driven/vector/qdrant"
	"github.com/archivist-labs/docq-cli/internal/chunking"
	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driving"
	"github.com/archivist-labs/docq-cli/internal/core/services"
	"github.com/archivist-labs/docq-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// Wired services. Tests inject fakes here; Execute wires the real
// adapters lazily so read-only commands never touch AI providers.
var (
	configStore   driven.ConfigStore
	appSettings   domain.AppSettings
	metaStore     *sqlite.Store
	documentStore driven.DocumentStore
	contentCache  driven.ContentCache
	vectorIndex   driven.VectorIndex
	ingestService driving.IngestService
	askService    driving.AskService

	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
)

// embedRequestsPerSecond throttles embedding batches so bulk ingestion
// stays under cloud provider rate limits.
const embedRequestsPerSecond = 5

var rootCmd = &cobra.Command{
	Use:   "docq",
	Short: "Ask questions about your PDF documents",
	Long: `docq ingests PDF documents into a local, content-addressed store,
chunks and embeds them, and answers natural-language questions about
their contents with page-level source attribution.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.docq)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default ~/.docq/data)")
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	defer closeServices()
	return rootCmd.Execute()
}

// initStorage wires the config store, settings and SQLite storage.
// Safe to call more than once.
func initStorage() error {
	if documentStore != nil {
		return nil
	}

	cs, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cs
	appSettings = configfile.LoadSettings(cs)

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	metaStore = store
	documentStore = store.DocumentStore()
	contentCache = store.ContentCache()
	return nil
}

// initEmbedding creates and validates the configured embedding service
// and the vector index it feeds. Safe to call more than once.
func initEmbedding(ctx context.Context) error {
	if embeddingService != nil {
		return nil
	}

	svc, err := ai.CreateAndValidateEmbeddingService(&appSettings.Embedding)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}
	embeddingService = svc

	idx, err := createVectorIndex(ctx, svc.Dimensions())
	if err != nil {
		embeddingService = nil
		svc.Close()
		return err
	}
	vectorIndex = idx
	return nil
}

// createVectorIndex builds the configured vector index backend. The
// in-memory backend is rebuilt from stored chunk embeddings so it
// survives across process runs.
func createVectorIndex(ctx context.Context, dimensions int) (driven.VectorIndex, error) {
	switch appSettings.Vector.Backend {
	case domain.VectorBackendQdrant:
		return qdrant.New(ctx, qdrant.Config{
			URL:        appSettings.Vector.URL,
			Collection: appSettings.Vector.Collection,
			Dimensions: dimensions,
		})

	case domain.VectorBackendMemory, "":
		idx := memvec.NewIndex()
		if err := rebuildMemoryIndex(ctx, idx); err != nil {
			return nil, err
		}
		return idx, nil

	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", appSettings.Vector.Backend)
	}
}

// rebuildMemoryIndex loads every stored chunk embedding into the index.
func rebuildMemoryIndex(ctx context.Context, idx driven.VectorIndex) error {
	docs, err := documentStore.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	var records []driven.VectorRecord
	for _, doc := range docs {
		chunks, err := documentStore.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("loading chunks for %s: %w", doc.ID, err)
		}
		for _, chunk := range chunks {
			if len(chunk.Embedding) == 0 {
				continue
			}
			records = append(records, driven.VectorRecord{
				ChunkID: chunk.ID,
				Vector:  chunk.Embedding,
				Text:    chunk.Text,
				Metadata: map[string]any{
					"document_id":  chunk.DocumentID,
					"chunk_index":  chunk.Index,
					"start_page":   chunk.StartPage,
					"end_page":     chunk.EndPage,
					"page_numbers": chunk.PageNumbers,
					"chunk_type":   string(chunk.Type),
					"has_code":     chunk.HasCode,
				},
			})
		}
	}

	if len(records) == 0 {
		return nil
	}
	logger.Debug("rebuilding in-memory vector index with %d records", len(records))
	return idx.Upsert(ctx, records)
}

// initIngest wires the ingestion pipeline. withEmbeddings controls
// whether the embedding service is required.
func initIngest(ctx context.Context, withEmbeddings bool) error {
	if err := initStorage(); err != nil {
		return err
	}
	if ingestService != nil {
		return nil
	}

	var embedder *services.Embedder
	if withEmbeddings {
		if err := initEmbedding(ctx); err != nil {
			return err
		}
		limiter := rate.NewLimiter(rate.Limit(embedRequestsPerSecond), embedRequestsPerSecond)
		embedder = services.NewEmbedder(embeddingService, services.DefaultEmbedBatchSize, limiter)
	}

	parser := pdf.New()
	extractor := services.NewExtractor(parser, contentCache,
		driven.Engine(appSettings.Ingest.Engine), fallbackEngine(appSettings.Ingest.Engine))

	ingestService = services.NewIngestService(
		parser,
		contentCache,
		documentStore,
		extractor,
		embedder,
		vectorIndex,
		chunking.NewRegistry(),
		services.IngestOptions{
			ChunkConfig: configfile.ChunkConfig(appSettings.Chunk),
			PageLimit:   appSettings.Ingest.PageLimit,
		},
	)
	return nil
}

// initAsk wires the question answering pipeline.
func initAsk(ctx context.Context) error {
	if err := initStorage(); err != nil {
		return err
	}
	if askService != nil {
		return nil
	}

	if err := initEmbedding(ctx); err != nil {
		return err
	}

	llm, err := ai.CreateAndValidateLLMService(&appSettings.LLM)
	if err != nil {
		return err
	}
	if llm == nil {
		return fmt.Errorf("%w: no LLM provider configured", domain.ErrLLMUnavailable)
	}
	llmService = llm

	embedder := services.NewEmbedder(embeddingService, services.DefaultEmbedBatchSize, nil)
	askService = services.NewRAGService(documentStore, embedder, vectorIndex, llmService)
	return nil
}

// closeServices releases everything Execute wired.
func closeServices() {
	if embeddingService != nil {
		embeddingService.Close()
	}
	if llmService != nil {
		llmService.Close()
	}
	if vectorIndex != nil {
		vectorIndex.Close()
	}
	if metaStore != nil {
		metaStore.Close()
	}
}

// fallbackEngine pairs each parse engine with its alternative for the
// degenerate-output retry.
func fallbackEngine(engine string) driven.Engine {
	if driven.Engine(engine) == driven.EnginePoppler {
		return driven.EngineNative
	}
	return driven.EnginePoppler
}

// friendlyIngestError rewrites pipeline sentinels into actionable
// messages; everything else passes through.
func friendlyIngestError(err error, path string) error {
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		return fmt.Errorf("file not found: %s", path)
	case errors.Is(err, domain.ErrPasswordProtected):
		return fmt.Errorf("%s is password protected and cannot be ingested", path)
	case errors.Is(err, domain.ErrPageLimitExceeded):
		return fmt.Errorf("%s exceeds the configured page limit (%d)", path, appSettings.Ingest.PageLimit)
	case errors.Is(err, domain.ErrCorrupted):
		return fmt.Errorf("%s could not be parsed: the file appears to be corrupted", path)
	default:
		return err
	}
}
