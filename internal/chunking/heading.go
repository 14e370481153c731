package chunking

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure Heading implements the interface.
var _ driven.ChunkStrategy = (*Heading)(nil)

// headingDedupWindow is the offset distance within which two matches
// are assumed to be the same line caught by two patterns.
const headingDedupWindow = 50

// headingMatch is one detected chapter or section marker.
type headingMatch struct {
	typ    domain.ChunkType
	level  int
	number string
	title  string
	offset int // rune offset of the heading line
}

// headingPattern is one regex family in the ordered detection list.
// Families earlier in the list win the dedup pass.
type headingPattern struct {
	re    *regexp.Regexp
	typ   domain.ChunkType
	level func(number string) int
}

// levelOf maps an enumeration like "3.1.4" to a level of 1-3 by depth.
func levelOf(number string) int {
	depth := strings.Count(number, ".") + 1
	if depth > 3 {
		depth = 3
	}
	return depth
}

// headingPatterns is the ordered set of heading regex families.
// English and Chinese chapter markers first, then dotted section
// enumerations, then lettered and parenthesised enumerations.
var headingPatterns = []headingPattern{
	{
		re:    regexp.MustCompile(`(?m)^[ \t]*(?:Chapter|CHAPTER)[ \t]+(\d+)[.:：]?[ \t]*(.*)$`),
		typ:   domain.ChunkTypeChapter,
		level: func(string) int { return 1 },
	},
	{
		re:    regexp.MustCompile(`(?m)^[ \t]*第[ \t]*([0-9一二三四五六七八九十百千]+)[ \t]*章[.:：]?[ \t]*(.*)$`),
		typ:   domain.ChunkTypeChapter,
		level: func(string) int { return 1 },
	},
	{
		re:    regexp.MustCompile(`(?m)^[ \t]*(\d+(?:\.\d+){1,2})[.:：]?[ \t]+(\S.*)$`),
		typ:   domain.ChunkTypeSection,
		level: levelOf,
	},
	{
		re:    regexp.MustCompile(`(?m)^[ \t]*\(?([A-Za-z])\)[ \t]+(\S.*)$`),
		typ:   domain.ChunkTypeSection,
		level: func(string) int { return 3 },
	},
	{
		re:    regexp.MustCompile(`(?m)^[ \t]*[(（]([0-9一二三四五六七八九十]+)[)）][ \t]*(\S.*)$`),
		typ:   domain.ChunkTypeSection,
		level: func(string) int { return 3 },
	},
}

// Heading is the heading-aware chapter/section strategy for technical
// and tutorial documents. It detects chapter and section markers,
// slices the document at sibling-or-higher boundaries, flags embedded
// code per chunk, and maps each chunk back to its source pages. When
// no heading is detected anywhere it falls back to fixed-size
// chunking; it never returns zero chunks for a non-empty document.
type Heading struct{}

// NewHeading creates the heading-aware strategy.
func NewHeading() *Heading { return &Heading{} }

// Name returns the registry name of the strategy.
func (h *Heading) Name() string { return "heading" }

// Chunk splits the pages at detected chapter/section boundaries.
func (h *Heading) Chunk(_ context.Context, pages []domain.Page, cfg driven.ChunkConfig) ([]domain.Chunk, error) {
	cfg = withDefaults(cfg)
	m := newPageMap(pages)

	headings := detectHeadings(m.text)
	chunks := sliceAtHeadings(m, headings, cfg)
	if len(chunks) > 0 {
		return chunks, nil
	}

	// Nothing usable detected: a non-empty document must still chunk.
	return fixedOver(m, 0, len(m.runes), cfg), nil
}

// detectHeadings runs every pattern family in order, deduplicates
// matches landing within headingDedupWindow runes of a heading accepted
// by an earlier family, and returns the survivors sorted by offset.
// Matches from the same family are always siblings, never the same line
// caught twice, so they are exempt from the window.
func detectHeadings(text string) []headingMatch {
	var accepted []headingMatch

	for _, p := range headingPatterns {
		matches := p.re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		// Regex indices are byte offsets; translate the ones we
		// need to rune offsets in a single pass.
		byteOffs := make([]int, len(matches))
		for i, idx := range matches {
			byteOffs[i] = idx[0]
		}
		runeOffs := runeOffsets(text, byteOffs)

		prior := len(accepted)
		for i, idx := range matches {
			h := headingMatch{
				typ:    p.typ,
				number: text[idx[2]:idx[3]],
				title:  strings.TrimSpace(text[idx[4]:idx[5]]),
				offset: runeOffs[i],
			}
			h.level = p.level(h.number)

			if nearAccepted(accepted[:prior], h.offset) {
				continue
			}
			accepted = append(accepted, h)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].offset < accepted[j].offset
	})
	return accepted
}

// nearAccepted reports whether offset lies within the dedup window of
// any heading accepted by an earlier pattern family.
func nearAccepted(accepted []headingMatch, offset int) bool {
	for _, a := range accepted {
		d := offset - a.offset
		if d < 0 {
			d = -d
		}
		if d < headingDedupWindow {
			return true
		}
	}
	return false
}

// sliceAtHeadings cuts the document at each heading. Chunk i spans
// from heading i to the next heading whose level is less than or equal
// to heading i's level, or document end. Chunks shorter than
// MinSectionLength are discarded as false-positive detections.
func sliceAtHeadings(m *pageMap, headings []headingMatch, cfg driven.ChunkConfig) []domain.Chunk {
	var chunks []domain.Chunk

	for i, h := range headings {
		end := len(m.runes)
		for j := i + 1; j < len(headings); j++ {
			if headings[j].level <= h.level {
				end = headings[j].offset
				break
			}
		}

		text := strings.TrimSpace(m.slice(h.offset, end))
		if len([]rune(text)) < cfg.MinSectionLength {
			continue
		}

		c := buildChunk(m, h.offset, end, text)
		c.Index = len(chunks)
		c.Type = h.typ
		c.HeadingNumber = h.number
		c.HeadingTitle = h.title
		c.CodeBlockCount = CountCodeBlocks(text)
		c.HasCode = c.CodeBlockCount > 0
		c.Metadata["heading_level"] = h.level
		chunks = append(chunks, c)
	}

	return chunks
}

// runeOffsets translates sorted byte offsets into rune offsets in a
// single pass over the string.
func runeOffsets(s string, byteOffs []int) []int {
	out := make([]int, len(byteOffs))
	next := 0
	runeCount := 0
	for byteOff := range s {
		for next < len(byteOffs) && byteOffs[next] <= byteOff {
			out[next] = runeCount
			next++
		}
		if next == len(byteOffs) {
			return out
		}
		runeCount++
	}
	for ; next < len(byteOffs); next++ {
		out[next] = runeCount
	}
	return out
}
