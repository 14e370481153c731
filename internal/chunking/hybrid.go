package chunking

import (
	"context"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure Hybrid implements the interface.
var _ driven.ChunkStrategy = (*Hybrid)(nil)

// Hybrid is the paragraph strategy with a fixed-size safety net: any
// paragraph-packed chunk exceeding 1.5x ChunkSize is re-split through
// the fixed-size window, and indices are renumbered contiguously
// afterwards. When paragraph packing yields nothing (for example one
// giant unbroken paragraph below the discard threshold rules, or text
// with no blank lines at all), the whole text is fixed-size chunked.
type Hybrid struct{}

// NewHybrid creates the hybrid composite strategy.
func NewHybrid() *Hybrid { return &Hybrid{} }

// Name returns the registry name of the strategy.
func (h *Hybrid) Name() string { return "hybrid" }

// Chunk runs paragraph packing and re-splits oversized chunks.
func (h *Hybrid) Chunk(_ context.Context, pages []domain.Page, cfg driven.ChunkConfig) ([]domain.Chunk, error) {
	cfg = withDefaults(cfg)
	m := newPageMap(pages)

	packed := paragraphOver(m, cfg)
	if len(packed) == 0 {
		return fixedOver(m, 0, len(m.runes), cfg), nil
	}

	limit := int(oversizeFactor * float64(cfg.ChunkSize))

	var out []domain.Chunk
	for _, c := range packed {
		if c.CharCount <= limit {
			c.Index = len(out)
			out = append(out, c)
			continue
		}

		for _, sub := range resplitChunk(c, cfg) {
			sub.Index = len(out)
			out = append(out, sub)
		}
	}

	return out, nil
}

// resplitChunk runs the fixed-size window over one oversized chunk's
// text. Page attribution is inherited from the parent chunk since the
// sub-ranges stay within the parent's page span.
func resplitChunk(parent domain.Chunk, cfg driven.ChunkConfig) []domain.Chunk {
	sub := fixedOver(newPageMap([]domain.Page{{
		Number: parent.StartPage,
		Index:  parent.StartPage - 1,
		Text:   parent.Text,
	}}), 0, len([]rune(parent.Text)), cfg)

	for i := range sub {
		sub[i].StartPage = parent.StartPage
		sub[i].EndPage = parent.EndPage
		sub[i].PageNumbers = append([]int(nil), parent.PageNumbers...)
	}
	return sub
}
