package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// openReader opens the file with the native reader, mapping library
// failures onto the domain error taxonomy.
func openReader(path string) (*os.File, *pdf.Reader, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrPasswordProtected, path)
		}
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrCorrupted, err)
	}
	return f, r, nil
}

// nativeMetadata reads the info dictionary and page count.
func nativeMetadata(ctx context.Context, path string) (*driven.DocumentMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, r, err := openReader(path)
	if err != nil {
		// A password-protected document still yields metadata; that is
		// the signal the ingestion pipeline rejects it on.
		if errors.Is(err, domain.ErrPasswordProtected) {
			return &driven.DocumentMetadata{Encrypted: true}, nil
		}
		return nil, err
	}
	defer f.Close()

	meta := &driven.DocumentMetadata{PageCount: r.NumPage()}

	info := r.Trailer().Key("Info")
	if !info.IsNull() {
		meta.Title = infoString(info, "Title")
		meta.Author = infoString(info, "Author")
	}
	return meta, nil
}

// infoString reads one text entry from the info dictionary, tolerating
// the panics the underlying reader throws on malformed strings.
func infoString(info pdf.Value, key string) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.Text())
}

// nativeText extracts page text with the native reader. Failed pages
// become *domain.ProcessingError values; the map holds the survivors.
func nativeText(ctx context.Context, path string, pages []int) (map[int]string, []error, error) {
	f, r, err := openReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	wanted := pageSet(pages, r.NumPage())
	texts := make(map[int]string, len(wanted))
	var pageErrs []error

	for _, idx := range wanted {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		text, err := nativePageText(r, idx)
		if err != nil {
			pageErrs = append(pageErrs, domain.NewProcessingError(idx, err))
			continue
		}
		texts[idx] = text
	}
	return texts, pageErrs, nil
}

// nativePageText reads one page, converting reader panics on malformed
// content streams into errors so one bad page cannot take down the run.
func nativePageText(r *pdf.Reader, idx int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page reader panic: %v", rec)
		}
	}()

	page := r.Page(idx + 1)
	if page.V.IsNull() {
		return "", errors.New("page object missing")
	}
	return page.GetPlainText(nil)
}

// nativeDimensions reads every page's media box, following the Parent
// chain for inherited boxes.
func nativeDimensions(ctx context.Context, path string) (map[int]domain.PageDimensions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dims := make(map[int]domain.PageDimensions, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		box := inheritedAttr(page.V, "MediaBox")
		if box.IsNull() || box.Len() != 4 {
			continue
		}
		dims[i-1] = domain.PageDimensions{
			Width:  box.Index(2).Float64() - box.Index(0).Float64(),
			Height: box.Index(3).Float64() - box.Index(1).Float64(),
		}
	}
	return dims, nil
}

// nativeImages lists image XObjects per page.
func nativeImages(ctx context.Context, path string, pages []int) ([]driven.PageImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var images []driven.PageImage
	for _, idx := range pageSet(pages, r.NumPage()) {
		page := r.Page(idx + 1)
		if page.V.IsNull() {
			continue
		}
		xobjects := page.V.Key("Resources").Key("XObject")
		if xobjects.IsNull() {
			continue
		}
		for _, name := range xobjects.Keys() {
			obj := xobjects.Key(name)
			if obj.Key("Subtype").Name() != "Image" {
				continue
			}
			images = append(images, driven.PageImage{
				Page:   idx,
				Width:  float64(obj.Key("Width").Int64()),
				Height: float64(obj.Key("Height").Int64()),
			})
		}
	}
	return images, nil
}

// inheritedAttr resolves a page attribute that may live on an ancestor
// node of the page tree.
func inheritedAttr(page pdf.Value, key string) pdf.Value {
	for v := page; !v.IsNull(); v = v.Key("Parent") {
		if attr := v.Key(key); !attr.IsNull() {
			return attr
		}
	}
	return pdf.Value{}
}

// pageSet expands the requested 0-based page indices, clamped to the
// document; nil means every page.
func pageSet(pages []int, numPages int) []int {
	if pages == nil {
		all := make([]int, numPages)
		for i := range all {
			all[i] = i
		}
		return all
	}
	out := make([]int, 0, len(pages))
	for _, idx := range pages {
		if idx >= 0 && idx < numPages {
			out = append(out, idx)
		}
	}
	return out
}
