// Package pdfx opens PDF documents for paginated preview: page counting,
// per-page embedded text, and a rasterized rendering of the current page.
package pdfx

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/rinomina/facile/internal/core/domain"
)

// Document is an open PDF. The owner must Close it before opening another;
// Close is safe to call twice.
type Document struct {
	file   *os.File
	reader *pdf.Reader
	path   string
	size   int64
	pages  int
}

// Open parses the PDF at path. A document with zero pages is an error and
// no handle is retained.
func Open(path string) (doc *Document, err error) {
	// The parser panics on some malformed files; fold that into the
	// decode-failure path.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = domain.WrapError(domain.ErrDecodeFailure, "parse pdf", fmt.Errorf("%v", r))
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrNotFound, "stat pdf", err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDecodeFailure, "open pdf", err)
	}

	pages := reader.NumPage()
	if pages <= 0 {
		f.Close()
		return nil, domain.WrapError(domain.ErrDecodeFailure, "open pdf", fmt.Errorf("document has no pages"))
	}

	return &Document{file: f, reader: reader, path: path, size: info.Size(), pages: pages}, nil
}

func (d *Document) PageCount() int {
	return d.pages
}

// PageText returns the embedded text of a 0-based page. An empty string
// with nil error means the page has no text, which is not a failure.
func (d *Document) PageText(page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrDecodeFailure, "extract page text", fmt.Errorf("%v", r))
		}
	}()

	if page < 0 || page >= d.pages {
		return "", fmt.Errorf("page %d out of range [0,%d)", page, d.pages)
	}

	p := d.reader.Page(page + 1)
	raw, err := p.GetPlainText(nil)
	if err != nil {
		return "", domain.WrapError(domain.ErrDecodeFailure, "extract page text", err)
	}
	return strings.TrimSpace(raw), nil
}

// RenderPage rasterizes a 0-based page into the viewport.
func (d *Document) RenderPage(page int, viewport domain.Viewport) (domain.ExtractionResult, error) {
	if page < 0 || page >= d.pages {
		return domain.ExtractionResult{}, fmt.Errorf("page %d out of range [0,%d)", page, d.pages)
	}

	viewport = viewport.OrDefault()
	pageW, pageH := d.pageSize(page)
	zoom := ComputeZoom(pageW, pageH, viewport)

	text, err := d.PageText(page)
	if err != nil {
		text = ""
	}

	img := renderTextPage(text, pageW, pageH, zoom)
	header := fmt.Sprintf("%s · page %d/%d", domain.FileHeader(d.path, d.size), page+1, d.pages)
	return domain.RenderedResult(header, img), nil
}

func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.reader = nil
	return err
}

// US Letter, the parser's implied default when MediaBox is absent.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

func (d *Document) pageSize(page int) (w, h float64) {
	defer func() {
		if recover() != nil {
			w, h = defaultPageWidth, defaultPageHeight
		}
	}()

	box := d.reader.Page(page + 1).V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}
	x0, y0 := numeric(box.Index(0)), numeric(box.Index(1))
	x1, y1 := numeric(box.Index(2)), numeric(box.Index(3))
	w, h = x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}

func numeric(v pdf.Value) float64 {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	default:
		return 0
	}
}

const maxZoom = 2.0

// ComputeZoom fits a page into the viewport, capped at 2.0 to bound the
// raster size.
func ComputeZoom(pageW, pageH float64, viewport domain.Viewport) float64 {
	if pageW <= 0 || pageH <= 0 {
		return 1.0
	}
	return min(
		float64(viewport.Width)/pageW,
		float64(viewport.Height)/pageH,
		maxZoom,
	)
}
