package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/archivist-labs/docq-cli/internal/logger"
)

// watchDebounce is how long a file must stay quiet before it is
// re-ingested. Editors and downloaders emit bursts of write events.
const watchDebounce = 2 * time.Second

var watchStrategy string

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest PDFs as they appear",
	Long: `Watches a directory and ingests any PDF that is created or modified
in it. Unchanged files are skipped by the content cache, so touching a
file without changing its bytes is a cheap no-op. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchStrategy, "strategy", "s", "", "chunking strategy (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := initIngest(ctx, true); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	strategy := watchStrategy
	if strategy == "" {
		strategy = appSettings.Ingest.Strategy
	}

	cmd.Printf("Watching %s for PDF changes (Ctrl-C to stop)\n", dir)

	// Pending debounce timers by path.
	var mu sync.Mutex
	pending := make(map[string]*time.Timer)

	ingestPath := func(path string) {
		mu.Lock()
		delete(pending, path)
		mu.Unlock()

		result, err := ingestService.ProcessDocument(ctx, path, strategy, true)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			cmd.PrintErrf("Error: %v\n", friendlyIngestError(err, path))
			return
		}
		if result.CacheHit {
			cmd.Printf("Unchanged: %s (%d chunks)\n", path, result.Document.ChunkCount)
		} else {
			cmd.Printf("Ingested: %s (%d pages, %d chunks)\n",
				path, result.Document.PageCount, result.Document.ChunkCount)
		}
	}

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if timer, ok := pending[path]; ok {
			timer.Reset(watchDebounce)
			return
		}
		pending[path] = time.AfterFunc(watchDebounce, func() { ingestPath(path) })
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, timer := range pending {
				timer.Stop()
			}
			mu.Unlock()
			cmd.Println("\nStopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isPDF(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			logger.Debug("fs event %s on %s", event.Op, event.Name)
			schedule(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrf("Watch error: %v\n", err)
		}
	}
}

// isPDF reports whether the path names a PDF file.
func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
