package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// pdftotextBinary is the poppler-utils text extractor.
const pdftotextBinary = "pdftotext"

// CommandRunner executes external commands. It exists so tests can
// exercise the poppler engine without poppler-utils installed.
type CommandRunner interface {
	// Run executes the command and returns its combined stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// popplerText extracts page text by running pdftotext once for the
// whole document. Pages arrive separated by form feeds, in order, with
// empty pages preserved as empty segments.
func (p *Parser) popplerText(ctx context.Context, path string, pages []int) (map[int]string, []error, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, nil, fmt.Errorf("stat file: %w", err)
	}

	out, err := p.runner.Run(ctx, pdftotextBinary, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "incorrect password") || strings.Contains(msg, "encrypted") {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrPasswordProtected, path)
		}
		if strings.Contains(msg, "damaged") || strings.Contains(msg, "couldn't read xref") {
			return nil, nil, fmt.Errorf("%w: %v", domain.ErrCorrupted, err)
		}
		return nil, nil, fmt.Errorf("run %s: %w", pdftotextBinary, err)
	}

	segments := splitFormFeeds(string(out))
	wanted := pageSet(pages, len(segments))

	texts := make(map[int]string, len(wanted))
	for _, idx := range wanted {
		texts[idx] = segments[idx]
	}
	return texts, nil, nil
}

// splitFormFeeds splits pdftotext output into per-page segments.
// pdftotext terminates every page with a form feed, so a trailing empty
// segment is an artifact, not a page.
func splitFormFeeds(out string) []string {
	segments := strings.Split(out, "\f")
	if n := len(segments); n > 1 && segments[n-1] == "" {
		segments = segments[:n-1]
	}
	return segments
}
