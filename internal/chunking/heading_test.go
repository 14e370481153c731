package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

func TestHeading_TwoChapters(t *testing.T) {
	text := "Chapter 1 Intro\n\nHello world.\n\nChapter 2 Details\n\nMore text."

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	if chunks[0].HeadingTitle != "Intro" {
		t.Errorf("first title = %q, want %q", chunks[0].HeadingTitle, "Intro")
	}
	if chunks[1].HeadingTitle != "Details" {
		t.Errorf("second title = %q, want %q", chunks[1].HeadingTitle, "Details")
	}
	if !strings.HasPrefix(chunks[0].Text, "Chapter 1 Intro") {
		t.Errorf("first chunk should start at its heading, got %q", chunks[0].Text)
	}
	if !strings.HasPrefix(chunks[1].Text, "Chapter 2 Details") {
		t.Errorf("second chunk should start at its heading, got %q", chunks[1].Text)
	}
	for _, c := range chunks {
		if c.Type != domain.ChunkTypeChapter {
			t.Errorf("chunk type = %q, want chapter", c.Type)
		}
	}
	if chunks[0].HeadingNumber != "1" || chunks[1].HeadingNumber != "2" {
		t.Errorf("heading numbers = %q, %q", chunks[0].HeadingNumber, chunks[1].HeadingNumber)
	}
}

func TestHeading_ChineseChapters(t *testing.T) {
	text := "第一章 简介\n\n" + strings.Repeat("内容。", 20) + "\n\n第二章 细节\n\n" + strings.Repeat("更多。", 20)

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].HeadingTitle != "简介" {
		t.Errorf("first title = %q", chunks[0].HeadingTitle)
	}
	if chunks[1].HeadingNumber != "二" {
		t.Errorf("second number = %q", chunks[1].HeadingNumber)
	}
}

func TestHeading_SectionLevels(t *testing.T) {
	// A chapter span runs to the next chapter, swallowing its child
	// sections; each section also becomes its own chunk.
	pad := strings.Repeat("intro text. ", 10)
	body := strings.Repeat("body text. ", 10)
	text := "Chapter 1 Basics\n\n" + pad +
		"\n\n1.1 First Steps\n\n" + body +
		"\n\nChapter 2 Advanced\n\n" + body

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	if !strings.Contains(chunks[0].Text, "1.1 First Steps") {
		t.Errorf("chapter chunk should span its child sections")
	}
	if strings.Contains(chunks[0].Text, "Chapter 2") {
		t.Errorf("chapter chunk must stop at the next chapter")
	}
	if chunks[1].Type != domain.ChunkTypeSection {
		t.Errorf("second chunk type = %q, want section", chunks[1].Type)
	}
	if chunks[1].HeadingNumber != "1.1" {
		t.Errorf("section number = %q", chunks[1].HeadingNumber)
	}
	if lvl, _ := chunks[1].Metadata["heading_level"].(int); lvl != 2 {
		t.Errorf("section level = %d, want 2", lvl)
	}
}

func TestHeading_DedupNearbyMatches(t *testing.T) {
	// The section marker sits within the dedup window of the accepted
	// chapter heading and must be dropped.
	text := "Chapter 1 Intro\n1.1 Basics\n" + strings.Repeat("filler words here. ", 10)

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk after dedup, got %d", len(chunks))
	}
	if chunks[0].Type != domain.ChunkTypeChapter {
		t.Errorf("surviving chunk type = %q, want chapter", chunks[0].Type)
	}
}

func TestHeading_CloseSiblingsBothKept(t *testing.T) {
	// Two chapters from the same pattern family less than the dedup
	// window apart are siblings, not duplicate detections of one line.
	text := "Chapter 1 A\n\nshort body text.\n\nChapter 2 B\n\nmore body text."

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].HeadingTitle != "A" || chunks[1].HeadingTitle != "B" {
		t.Errorf("titles = %q, %q", chunks[0].HeadingTitle, chunks[1].HeadingTitle)
	}
}

func TestHeading_NoHeadingsFallsBack(t *testing.T) {
	text := strings.Repeat("Plain prose without any structure to speak of. ", 30)

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize: 300,
		Overlap:   50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("fallback must never return zero chunks for a non-empty document")
	}
	for _, c := range chunks {
		if c.Type != domain.ChunkTypeText {
			t.Errorf("fallback chunk type = %q, want text", c.Type)
		}
	}
}

func TestHeading_ShortSectionsDiscarded(t *testing.T) {
	// The second heading's span is only a few runes; it is a likely
	// false positive and must be dropped.
	body := strings.Repeat("long enough body. ", 10)
	text := "Chapter 1 Real Content\n\n" + body + "\n\nChapter 2 x"

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		MinSectionLength: 30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].HeadingTitle != "Real Content" {
		t.Errorf("surviving chunk title = %q", chunks[0].HeadingTitle)
	}
}

func TestHeading_CodeDetection(t *testing.T) {
	text := "Chapter 1 Installing\n\nRun the following:\n\n```\n$ go build ./...\n```\n\nDone."

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !chunks[0].HasCode {
		t.Error("expected HasCode to be set")
	}
	if chunks[0].CodeBlockCount == 0 {
		t.Error("expected a non-zero code block count")
	}
}

func TestHeading_PageMapping(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Index: 0, Text: "Chapter 1 Alpha\n\n" + strings.Repeat("alpha body. ", 10)},
		{Number: 2, Index: 1, Text: "Chapter 2 Beta\n\n" + strings.Repeat("beta body. ", 10)},
	}

	h := NewHeading()
	chunks, err := h.Chunk(context.Background(), pages, driven.ChunkConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].StartPage != 1 || chunks[0].EndPage != 1 {
		t.Errorf("first chunk pages = %d..%d, want 1..1", chunks[0].StartPage, chunks[0].EndPage)
	}
	if chunks[1].StartPage != 2 {
		t.Errorf("second chunk StartPage = %d, want 2", chunks[1].StartPage)
	}
}
