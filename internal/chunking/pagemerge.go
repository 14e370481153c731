package chunking

import (
	"context"
	"strings"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// Ensure PageMerge implements the interface.
var _ driven.ChunkStrategy = (*PageMerge)(nil)

// PageMerge treats each page as a candidate chunk. Pages shorter than
// MinPageChars are merged forward with subsequent pages until the
// accumulated text meets the minimum, recording every contributing
// page number. A trailing accumulation below the minimum is still
// emitted; pagemerge never drops page text.
type PageMerge struct{}

// NewPageMerge creates the pagemerge strategy.
func NewPageMerge() *PageMerge { return &PageMerge{} }

// Name returns the registry name of the strategy.
func (p *PageMerge) Name() string { return "pagemerge" }

// Chunk merges short pages forward into minimum-length chunks.
func (p *PageMerge) Chunk(_ context.Context, pages []domain.Page, cfg driven.ChunkConfig) ([]domain.Chunk, error) {
	cfg = withDefaults(cfg)

	var chunks []domain.Chunk
	var texts []string
	var nums []int
	accLen := 0

	flush := func() {
		if len(texts) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(texts, pageSeparator))
		pageNums := append([]int(nil), nums...)
		texts, nums, accLen = nil, nil, 0
		if text == "" {
			return
		}
		c := domain.Chunk{
			Index:       len(chunks),
			Text:        text,
			CharCount:   len([]rune(text)),
			WordCount:   countWords(text),
			StartPage:   pageNums[0],
			EndPage:     pageNums[len(pageNums)-1],
			PageNumbers: pageNums,
			Type:        domain.ChunkTypeText,
			Metadata:    make(map[string]any),
		}
		chunks = append(chunks, c)
	}

	for _, page := range pages {
		texts = append(texts, page.Text)
		nums = append(nums, page.Number)
		accLen += len([]rune(page.Text))
		if accLen >= cfg.MinPageChars {
			flush()
		}
	}
	flush()

	return chunks, nil
}
