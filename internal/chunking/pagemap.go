package chunking

import (
	"strings"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// pageSeparator joins page texts during concatenation.
const pageSeparator = "\n"

// pageSpan records where one page's text landed in the concatenated
// rune sequence. End is exclusive.
type pageSpan struct {
	number int
	start  int
	end    int
}

// pageMap holds the concatenated document text as runes together with
// a per-page offset table, so a chunk's rune range can be mapped back
// to the set of pages that contributed to it.
type pageMap struct {
	runes []rune
	text  string
	spans []pageSpan
}

// newPageMap concatenates the pages in index order, recording each
// page's rune span.
func newPageMap(pages []domain.Page) *pageMap {
	var b strings.Builder
	m := &pageMap{spans: make([]pageSpan, 0, len(pages))}

	offset := 0
	for i, p := range pages {
		if i > 0 {
			b.WriteString(pageSeparator)
			offset += len([]rune(pageSeparator))
		}
		n := len([]rune(p.Text))
		m.spans = append(m.spans, pageSpan{
			number: p.Number,
			start:  offset,
			end:    offset + n,
		})
		b.WriteString(p.Text)
		offset += n
	}

	m.text = b.String()
	m.runes = []rune(m.text)
	return m
}

// pagesFor returns the 1-based page numbers overlapping the rune range
// [start, end), ascending. An empty range maps to no pages.
func (m *pageMap) pagesFor(start, end int) []int {
	var nums []int
	for _, s := range m.spans {
		if s.start < end && start < s.end {
			nums = append(nums, s.number)
		}
	}
	return nums
}

// slice returns the text of the rune range [start, end).
func (m *pageMap) slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(m.runes) {
		end = len(m.runes)
	}
	if start >= end {
		return ""
	}
	return string(m.runes[start:end])
}

// countWords returns the whitespace-delimited word count of s.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// buildChunk assembles a chunk for the rune range [start, end) of the
// map, populating counts and the contributing page range. The caller
// sets Index, Type and any heading fields.
func buildChunk(m *pageMap, start, end int, text string) domain.Chunk {
	pages := m.pagesFor(start, end)
	c := domain.Chunk{
		Text:        text,
		CharCount:   len([]rune(text)),
		WordCount:   countWords(text),
		PageNumbers: pages,
		Type:        domain.ChunkTypeText,
		Metadata:    make(map[string]any),
	}
	if len(pages) > 0 {
		c.StartPage = pages[0]
		c.EndPage = pages[len(pages)-1]
	}
	return c
}
