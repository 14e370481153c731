package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var removeCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document and its chunks",
	Long: `Deletes a document's registration, its stored chunks and its
vectors. The cached parse artifacts are kept; re-ingesting the same
file later is still cheap. Use 'docq cache clear' to drop those too.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := initStorage(); err != nil {
		return err
	}

	docs, err := documentStore.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet. Run 'docq ingest <file.pdf>' first.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		doc := &docs[i]
		cmd.Printf("  %s\n", doc.ID)
		cmd.Printf("    Title:    %s\n", doc.Title)
		cmd.Printf("    Path:     %s\n", doc.Path)
		cmd.Printf("    Pages:    %d\n", doc.PageCount)
		cmd.Printf("    Chunks:   %d (%s strategy)\n", doc.ChunkCount, doc.Strategy)
		cmd.Printf("    Status:   %s\n", doc.Status)
		cmd.Printf("    Ingested: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Removal touches the vector index too when embeddings exist, but
	// must not require a reachable embedding provider.
	if err := initIngest(ctx, false); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docID := args[0]
	if err := ingestService.Remove(ctx, docID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", docID)
		}
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Removed document %s\n", docID)
	return nil
}
