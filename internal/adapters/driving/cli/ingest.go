package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ingestStrategy string
	ingestNoEmbed  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf]...",
	Short: "Ingest PDF documents",
	Long: `Parses, chunks and embeds one or more PDF documents so they can be
queried with 'docq ask'. Re-ingesting an unchanged file is a cheap
no-op: parse and chunk artifacts are cached by content hash.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestStrategy, "strategy", "s", "", "chunking strategy (default from config)")
	ingestCmd.Flags().BoolVar(&ingestNoEmbed, "no-embed", false, "store chunks without generating embeddings")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := initIngest(ctx, !ingestNoEmbed); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	strategy := ingestStrategy
	if strategy == "" {
		strategy = appSettings.Ingest.Strategy
	}

	var failed int
	for _, path := range args {
		result, err := ingestService.ProcessDocument(ctx, path, strategy, !ingestNoEmbed)
		if err != nil {
			failed++
			cmd.PrintErrf("Error: %v\n", friendlyIngestError(err, path))
			continue
		}

		doc := result.Document
		cmd.Printf("Ingested %s\n", path)
		cmd.Printf("  ID:       %s\n", doc.ID)
		cmd.Printf("  Title:    %s\n", doc.Title)
		cmd.Printf("  Pages:    %d\n", doc.PageCount)
		cmd.Printf("  Chunks:   %d (%s strategy)\n", doc.ChunkCount, doc.Strategy)
		if result.CacheHit {
			cmd.Printf("  Cache:    hit (parse and chunking skipped)\n")
		}
		if !result.Embedded {
			cmd.Printf("  Note:     no embeddings generated; 'docq ask' will not find this document\n")
		}
		cmd.Println()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}
