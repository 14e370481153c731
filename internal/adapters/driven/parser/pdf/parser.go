package pdf

import (
	"context"
	"fmt"
	"sort"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser extracts content from PDF files, dispatching to the engine
// named per call.
type Parser struct {
	runner CommandRunner
}

// Option configures a Parser.
type Option func(*Parser)

// WithRunner replaces the subprocess runner used by the poppler engine.
func WithRunner(r CommandRunner) Option {
	return func(p *Parser) {
		p.runner = r
	}
}

// New creates a PDF parser.
func New(opts ...Option) *Parser {
	p := &Parser{runner: execRunner{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Metadata returns document-level parse metadata. Metadata always comes
// from the native reader; poppler is a text-only backend.
func (p *Parser) Metadata(ctx context.Context, path string) (*driven.DocumentMetadata, error) {
	return nativeMetadata(ctx, path)
}

// Text extracts plain text using the selected engine. Pages is nil for
// all pages; indices are 0-based. Failed pages are reported in the
// returned error slice, not as a hard failure.
func (p *Parser) Text(ctx context.Context, path string, engine driven.Engine, pages []int) (map[int]string, []error, error) {
	switch engine {
	case driven.EngineNative, "":
		return nativeText(ctx, path, pages)
	case driven.EnginePoppler:
		return p.popplerText(ctx, path, pages)
	default:
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnknownEngine, engine)
	}
}

// Tables extracts tables from the given pages (nil for all) using a
// whitespace-alignment heuristic over extracted text.
func (p *Parser) Tables(ctx context.Context, path string, pages []int) ([]driven.PageTable, error) {
	pageTexts, _, err := nativeText(ctx, path, pages)
	if err != nil {
		return nil, err
	}

	var tables []driven.PageTable
	for _, idx := range sortedKeys(pageTexts) {
		for _, rows := range detectTables(pageTexts[idx]) {
			tables = append(tables, driven.PageTable{Page: idx, Rows: rows})
		}
	}
	return tables, nil
}

// Images lists image placements on the given pages (nil for all).
func (p *Parser) Images(ctx context.Context, path string, pages []int) ([]driven.PageImage, error) {
	return nativeImages(ctx, path, pages)
}

// PageDimensions returns the media box of every page, keyed by 0-based
// page index.
func (p *Parser) PageDimensions(ctx context.Context, path string) (map[int]domain.PageDimensions, error) {
	return nativeDimensions(ctx, path)
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
