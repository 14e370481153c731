package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

func TestParagraph_PacksUpToChunkSize(t *testing.T) {
	paras := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}
	text := strings.Join(paras, "\n\n")

	p := NewParagraph()
	chunks, err := p.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize:    100,
		MinChunkSize: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// First two paragraphs fit in one chunk, the third overflows.
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, strings.Repeat("b", 40)) {
		t.Errorf("first chunk should pack the second paragraph")
	}
	if chunks[1].Text != strings.Repeat("c", 40) {
		t.Errorf("second chunk = %q", chunks[1].Text)
	}
}

func TestParagraph_DropsShortTail(t *testing.T) {
	text := strings.Repeat("a", 200) + "\n\ntiny"

	p := NewParagraph()
	chunks, err := p.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize:    200,
		MinChunkSize: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected the short tail to be discarded, got %d chunks", len(chunks))
	}
}

func TestParagraph_KeepShortTail(t *testing.T) {
	text := strings.Repeat("a", 200) + "\n\ntiny"

	p := NewParagraph()
	chunks, err := p.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize:     200,
		MinChunkSize:  50,
		KeepShortTail: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected the short tail to be kept, got %d chunks", len(chunks))
	}
	if chunks[1].Text != "tiny" {
		t.Errorf("tail chunk = %q, want %q", chunks[1].Text, "tiny")
	}
}

func TestParagraph_Coverage(t *testing.T) {
	// With KeepShortTail no text may be lost: the concatenation of all
	// chunks must reconstruct the input modulo whitespace.
	paras := []string{
		"First paragraph with some words in it.",
		"Second paragraph, a little longer than the first one was.",
		"Third.",
		"Fourth paragraph closes the document.",
	}
	text := strings.Join(paras, "\n\n")

	p := NewParagraph()
	chunks, err := p.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize:     60,
		MinChunkSize:  10,
		KeepShortTail: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got strings.Builder
	for _, c := range chunks {
		got.WriteString(c.Text)
		got.WriteString(" ")
	}
	normalise := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	if normalise(got.String()) != normalise(text) {
		t.Errorf("chunk concatenation does not reconstruct input:\n got %q\nwant %q",
			normalise(got.String()), normalise(text))
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
}
