package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

func onePage(text string) []domain.Page {
	return []domain.Page{{Number: 1, Index: 0, Text: text}}
}

func TestFixed_NoSeparators(t *testing.T) {
	// 15 runes, no separators: windows must never exceed ChunkSize and
	// each chunk must start at most Overlap runes before the previous end.
	f := NewFixed()
	chunks, err := f.Chunk(context.Background(), onePage("abcdefghijklmno"), driven.ChunkConfig{
		ChunkSize: 10,
		Overlap:   2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	prevEnd := 0
	pos := 0
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: index %d, want %d", i, c.Index, i)
		}
		if len([]rune(c.Text)) > 10 {
			t.Errorf("chunk %d: length %d exceeds chunk size", i, len([]rune(c.Text)))
		}
		start := strings.Index("abcdefghijklmno"[pos:], c.Text) + pos
		if i > 0 && start < prevEnd-2 {
			t.Errorf("chunk %d starts %d runes before previous end, overlap is 2", i, prevEnd-start)
		}
		prevEnd = start + len(c.Text)
		pos = start
	}
	if chunks[0].Text != "abcdefghij" {
		t.Errorf("first chunk = %q, want %q", chunks[0].Text, "abcdefghij")
	}
}

func TestFixed_PrefersBlankLineBoundary(t *testing.T) {
	text := strings.Repeat("a", 90) + "\n\n" + strings.Repeat("b", 100)
	f := NewFixed()
	chunks, err := f.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize: 120,
		Overlap:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != strings.Repeat("a", 90) {
		t.Errorf("first chunk should cut at the blank line, got %q", chunks[0].Text)
	}
}

func TestFixed_SentenceBoundary(t *testing.T) {
	text := "First sentence here. Second one follows and keeps going without a break until the window closes somewhere"
	f := NewFixed()
	chunks, err := f.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize: 30,
		Overlap:   5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(chunks[0].Text, "here.") {
		t.Errorf("first chunk should end at the sentence terminator, got %q", chunks[0].Text)
	}
}

func TestFixed_EmptyInput(t *testing.T) {
	f := NewFixed()
	chunks, err := f.Chunk(context.Background(), nil, driven.ChunkConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestFixed_ChunksNeverEmpty(t *testing.T) {
	text := strings.Repeat(" ", 50) + "content" + strings.Repeat(" ", 50)
	f := NewFixed()
	chunks, err := f.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize: 40,
		Overlap:   5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			t.Errorf("chunk %d is empty after trimming", i)
		}
	}
}

func TestFixed_PageAttribution(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Index: 0, Text: strings.Repeat("a", 40)},
		{Number: 2, Index: 1, Text: strings.Repeat("b", 40)},
	}
	f := NewFixed()
	chunks, err := f.Chunk(context.Background(), pages, driven.ChunkConfig{
		ChunkSize: 60,
		Overlap:   5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].StartPage != 1 {
		t.Errorf("first chunk StartPage = %d, want 1", chunks[0].StartPage)
	}
	last := chunks[len(chunks)-1]
	if last.EndPage != 2 {
		t.Errorf("last chunk EndPage = %d, want 2", last.EndPage)
	}
	for i, c := range chunks {
		if c.StartPage > c.EndPage {
			t.Errorf("chunk %d: StartPage %d > EndPage %d", i, c.StartPage, c.EndPage)
		}
	}
}

func TestFixed_Idempotent(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	f := NewFixed()
	cfg := driven.ChunkConfig{ChunkSize: 200, Overlap: 40}

	first, err := f.Chunk(context.Background(), onePage(text), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.Chunk(context.Background(), onePage(text), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
