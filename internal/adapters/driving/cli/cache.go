package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the content cache",
	Long: `The content cache stores parse and chunking artifacts keyed by file
content hash. A renamed file still hits the cache; a modified file
misses and its stale entries are purged on the next ingest.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and size",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [content-hash]",
	Short: "Clear cached artifacts",
	Long: `Clears cached artifacts for one content hash, or the whole cache
when no hash is given. Stored documents and chunks are unaffected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if err := initStorage(); err != nil {
		return err
	}

	stats, err := contentCache.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	total := 0
	for _, count := range stats.Entries {
		total += count
	}

	if total == 0 {
		cmd.Println("Cache is empty.")
		return nil
	}

	cmd.Println("Content cache:")
	for _, kind := range []driven.ArtifactKind{
		driven.ArtifactMetadata,
		driven.ArtifactStructuredText,
		driven.ArtifactChunkSet,
	} {
		if count := stats.Entries[kind]; count > 0 {
			cmd.Printf("  %-16s %d\n", string(kind)+":", count)
		}
	}
	cmd.Printf("  %-16s %d\n", "total:", total)
	cmd.Printf("  %-16s %s\n", "size:", formatBytes(stats.TotalBytes))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if err := initStorage(); err != nil {
		return err
	}

	hash := ""
	if len(args) > 0 {
		hash = args[0]
	}

	if err := contentCache.Clear(cmd.Context(), hash); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	if hash == "" {
		cmd.Println("Cache cleared.")
	} else {
		cmd.Printf("Cache entries for %s cleared.\n", hash)
	}
	return nil
}

// formatBytes renders a byte count in a human-readable unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
