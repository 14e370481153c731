package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

func TestHybrid_ResplitsOversizedParagraphs(t *testing.T) {
	// One paragraph at 4x the chunk size must be re-split through the
	// fixed window, with indices renumbered contiguously.
	big := strings.Repeat("Sentence in a very long paragraph. ", 60) // ~2100 runes
	text := "Short opening paragraph with enough length to survive the minimum.\n\n" + big

	h := NewHybrid()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize:    500,
		Overlap:      50,
		MinChunkSize: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 4 {
		t.Fatalf("expected the oversized paragraph to be re-split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d, want contiguous renumbering", i, c.Index)
		}
		if c.CharCount > int(1.5*500)+1 {
			t.Errorf("chunk %d still oversized: %d runes", i, c.CharCount)
		}
	}
}

func TestHybrid_FallsBackWhenPackingYieldsNothing(t *testing.T) {
	// Below the minimum chunk size and with no blank lines, paragraph
	// packing discards everything; the fixed fallback must still chunk.
	text := "tiny but real content"

	h := NewHybrid()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize:    500,
		MinChunkSize: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 fallback chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("fallback chunk = %q", chunks[0].Text)
	}
}

func TestHybrid_KeepsWellSizedChunks(t *testing.T) {
	paras := []string{
		strings.Repeat("alpha ", 40),
		strings.Repeat("beta ", 40),
	}
	text := strings.Join(paras, "\n\n")

	h := NewHybrid()
	chunks, err := h.Chunk(context.Background(), onePage(text), driven.ChunkConfig{
		ChunkSize:    300,
		MinChunkSize: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
}
