package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
	"github.com/archivist-labs/docq-cli/internal/logger"
)

// DocStats are document-level aggregate statistics. Whitespace-only
// pages are excluded from the page sequence but still counted here.
type DocStats struct {
	PageCount  int `json:"page_count"`
	TotalChars int `json:"total_chars"`
	TotalWords int `json:"total_words"`
}

// StructuredText is the cached per-page representation produced by the
// extractor.
type StructuredText struct {
	Pages []domain.Page `json:"pages"`
	Stats DocStats      `json:"stats"`
}

// Extractor builds the cleaned, per-page structured representation on
// top of the parser, consulting the content cache first. A page whose
// primary-engine text is empty despite non-degenerate geometry is
// retried with the fallback engine before being given up on.
type Extractor struct {
	parser   driven.DocumentParser
	cache    driven.ContentCache
	engine   driven.Engine
	fallback driven.Engine
}

// NewExtractor creates a structured text extractor. Engine selects the
// primary extraction backend; fallback is tried on degenerate pages
// and may equal the primary to disable retries.
func NewExtractor(parser driven.DocumentParser, cache driven.ContentCache, engine, fallback driven.Engine) *Extractor {
	if engine == "" {
		engine = driven.EngineNative
	}
	if fallback == "" {
		fallback = driven.EnginePoppler
	}
	return &Extractor{parser: parser, cache: cache, engine: engine, fallback: fallback}
}

// Extract returns the cleaned page sequence and aggregate statistics
// for the file identified by hash. Cache failures are treated as
// misses; extraction failures for individual pages are logged and the
// page skipped.
func (e *Extractor) Extract(ctx context.Context, path, hash string) (*StructuredText, error) {
	if e.cache != nil {
		var cached StructuredText
		if err := e.cache.Get(ctx, hash, driven.ArtifactStructuredText, "", &cached); err == nil {
			logger.Debug("Structured text cache hit for %s", shortHash(hash))
			return &cached, nil
		}
	}

	pageTexts, pageErrs, err := e.parser.Text(ctx, path, e.engine, nil)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	for _, perr := range pageErrs {
		logger.Warn("Page extraction failed: %v", perr)
	}

	dims, err := e.parser.PageDimensions(ctx, path)
	if err != nil {
		logger.Warn("Page dimensions unavailable: %v", err)
		dims = map[int]domain.PageDimensions{}
	}

	e.retryDegenerate(ctx, path, pageTexts, dims)

	st := buildStructuredText(pageTexts, dims)

	if e.cache != nil {
		if err := e.cache.Put(ctx, hash, driven.ArtifactStructuredText, "", path, st); err != nil {
			logger.Warn("Structured text cache write failed: %v", err)
		}
	}

	return st, nil
}

// retryDegenerate re-extracts pages that came back empty despite a
// non-degenerate media box, using the fallback engine. The fallback
// policy is explicit rather than automatic inside the parser so it can
// be tested in isolation.
func (e *Extractor) retryDegenerate(ctx context.Context, path string, pageTexts map[int]string, dims map[int]domain.PageDimensions) {
	if e.fallback == e.engine {
		return
	}

	var degenerate []int
	for idx, d := range dims {
		if d.Width <= 0 || d.Height <= 0 {
			continue
		}
		if strings.TrimSpace(pageTexts[idx]) == "" {
			degenerate = append(degenerate, idx)
		}
	}
	if len(degenerate) == 0 {
		return
	}
	sort.Ints(degenerate)

	logger.Info("Retrying %d degenerate page(s) with engine %s", len(degenerate), e.fallback)
	retried, pageErrs, err := e.parser.Text(ctx, path, e.fallback, degenerate)
	if err != nil {
		logger.Warn("Fallback engine failed: %v", err)
		return
	}
	for _, perr := range pageErrs {
		logger.Warn("Fallback page extraction failed: %v", perr)
	}
	for idx, text := range retried {
		if strings.TrimSpace(text) != "" {
			pageTexts[idx] = text
		}
	}
}

// buildStructuredText cleans each page and assembles the ordered page
// sequence. Whitespace-only pages are excluded from Pages but their
// character budget still counts toward Stats.
func buildStructuredText(pageTexts map[int]string, dims map[int]domain.PageDimensions) *StructuredText {
	indices := make([]int, 0, len(pageTexts))
	for idx := range pageTexts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	st := &StructuredText{Stats: DocStats{PageCount: len(indices)}}
	for _, idx := range indices {
		text := CleanText(pageTexts[idx])
		charCount := len([]rune(text))
		wordCount := len(strings.Fields(text))

		st.Stats.TotalChars += charCount
		st.Stats.TotalWords += wordCount

		if strings.TrimSpace(text) == "" {
			continue
		}

		st.Pages = append(st.Pages, domain.Page{
			Number:     idx + 1,
			Index:      idx,
			Text:       text,
			CharCount:  charCount,
			WordCount:  wordCount,
			Dimensions: dims[idx],
		})
	}

	return st
}

// CleanText normalises extracted page text: unified line endings,
// stripped control characters, no trailing whitespace per line, and at
// most one blank line between paragraphs (3+ collapse to 2 newlines).
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return text
}
