package driven

import (
	"context"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// Engine names an extraction backend. No single backend is reliably
// accurate across all PDFs, so the parser takes an explicit engine
// selector and an extractor may re-run a degenerate page with the
// alternate engine.
type Engine string

// Available extraction engines.
const (
	// EngineNative is the pure-Go PDF reader (default).
	EngineNative Engine = "native"

	// EnginePoppler shells out to pdftotext from poppler-utils.
	EnginePoppler Engine = "poppler"
)

// IsValid reports whether the engine name is recognised.
func (e Engine) IsValid() bool {
	switch e {
	case EngineNative, EnginePoppler:
		return true
	default:
		return false
	}
}

// DocumentMetadata is parse metadata for a whole document.
type DocumentMetadata struct {
	// Title from the PDF info dictionary, empty when absent.
	Title string

	// Author from the PDF info dictionary, empty when absent.
	Author string

	// PageCount is the number of pages.
	PageCount int

	// Encrypted reports whether the document is password protected.
	Encrypted bool
}

// PageTable is a table detected on one page, as rows of cell text.
type PageTable struct {
	// Page is the 0-based page index.
	Page int

	// Rows holds cell text row by row.
	Rows [][]string
}

// PageImage describes an image found on one page. Pixel data is not
// extracted; only placement is reported.
type PageImage struct {
	// Page is the 0-based page index.
	Page int

	// Width and Height are in PDF points.
	Width  float64
	Height float64
}

// DocumentParser extracts content from a single PDF file.
//
// Page-level failures are partial: Text returns whatever pages
// succeeded, and per-page errors are reported as
// *domain.ProcessingError values carrying the page index.
type DocumentParser interface {
	// Metadata returns document-level parse metadata.
	Metadata(ctx context.Context, path string) (*DocumentMetadata, error)

	// Text extracts plain text using the selected engine. The result
	// maps 0-based page index to raw page text; pages is nil for all
	// pages. Failed pages are absent from the map and reported in the
	// returned page errors.
	Text(ctx context.Context, path string, engine Engine, pages []int) (map[int]string, []error, error)

	// Tables extracts tables from the given pages (nil for all).
	Tables(ctx context.Context, path string, pages []int) ([]PageTable, error)

	// Images lists image placements on the given pages (nil for all).
	Images(ctx context.Context, path string, pages []int) ([]PageImage, error)

	// PageDimensions returns the media box of every page, keyed by
	// 0-based page index.
	PageDimensions(ctx context.Context, path string) (map[int]domain.PageDimensions, error)
}
