package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driving"
)

var (
	askDocumentID  string
	askTopK        int
	askLanguage    string
	askTemperature float64
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about ingested documents",
	Long: `Retrieves the chunks most relevant to the question and asks the
configured LLM to answer from them. Every answer lists the chunks it
was grounded on, with page numbers and similarity scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDocumentID, "document", "d", "", "restrict retrieval to one document ID")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().StringVarP(&askLanguage, "language", "l", "", "answer language: en or zh (default from config)")
	askCmd.Flags().Float64VarP(&askTemperature, "temperature", "t", 0, "LLM sampling temperature")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := initAsk(ctx); err != nil {
		return err
	}
	if askService == nil {
		return errors.New("ask service not configured")
	}

	req := driving.AskRequest{
		Question:    args[0],
		DocumentID:  askDocumentID,
		TopK:        askTopK,
		Temperature: askTemperature,
	}
	if req.TopK == 0 {
		req.TopK = appSettings.Ask.TopK
	}
	req.Language = appSettings.Ask.Language
	if askLanguage != "" {
		req.Language = domain.Language(askLanguage)
		if !req.Language.IsValid() {
			return fmt.Errorf("unsupported language %q (expected en or zh)", askLanguage)
		}
	}

	answer, err := askService.Answer(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", askDocumentID)
		}
		return err
	}

	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			line := fmt.Sprintf("  [%d] %s", i+1, src.ChunkID)
			if src.Page > 0 {
				line += fmt.Sprintf(" (page %d", src.Page)
				if src.Similarity != nil {
					line += fmt.Sprintf(", similarity %.2f", *src.Similarity)
				}
				line += ")"
			} else if src.Similarity != nil {
				line += fmt.Sprintf(" (similarity %.2f)", *src.Similarity)
			}
			cmd.Println(line)
			if src.Snippet != "" {
				cmd.Printf("      %s\n", src.Snippet)
			}
		}
	}

	if verbose {
		cmd.Println()
		cmd.Printf("Answered in %s\n", answer.ProcessingTime)
	}
	return nil
}
