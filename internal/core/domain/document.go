package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Category is the format classification assigned to a file by extension.
type Category string

const (
	CategoryImage            Category = "image"
	CategoryPlainText        Category = "plain_text"
	CategoryPdf              Category = "pdf"
	CategoryWordModern       Category = "word_modern"
	CategoryWordLegacy       Category = "word_legacy"
	CategoryExcelModern      Category = "excel_modern"
	CategoryExcelLegacy      Category = "excel_legacy"
	CategoryPowerpointModern Category = "powerpoint_modern"
	CategoryPowerpointLegacy Category = "powerpoint_legacy"
	CategoryUnsupported      Category = "unsupported"
)

// Paginated reports whether the category keeps an open document handle
// with page navigation.
func (c Category) Paginated() bool {
	return c == CategoryPdf
}

// OfficeDocument reports whether the category is extracted to text locally
// before analysis instead of being uploaded as raw bytes.
func (c Category) OfficeDocument() bool {
	switch c {
	case CategoryWordModern, CategoryWordLegacy,
		CategoryExcelModern, CategoryExcelLegacy,
		CategoryPowerpointModern, CategoryPowerpointLegacy:
		return true
	}
	return false
}

// ViewMode says which surface of a loaded document is active.
type ViewMode string

const (
	ViewOriginal      ViewMode = "original"
	ViewExtractedText ViewMode = "extracted_text"
)

// PageCursor is the current/total page state of a paginated document.
// Invariant: 0 <= Current < Total whenever Total > 0.
type PageCursor struct {
	Current int
	Total   int
}

// Viewport is the pixel area available to rendered previews.
type Viewport struct {
	Width  int
	Height int
}

const (
	defaultViewportWidth  = 760
	defaultViewportHeight = 900
)

// OrDefault substitutes the default preview surface for unset dimensions.
func (v Viewport) OrDefault() Viewport {
	if v.Width <= 0 {
		v.Width = defaultViewportWidth
	}
	if v.Height <= 0 {
		v.Height = defaultViewportHeight
	}
	return v
}

// FileHeader is the preview header line for a file: name, extension and a
// human-readable size.
func FileHeader(path string, size int64) string {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		ext = "FILE"
	}
	return fmt.Sprintf("%s · %s · %s", filepath.Base(path), ext, FormatFileSize(size))
}

// FormatFileSize renders a byte count as B/KB/MB/GB with one decimal.
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	value := float64(size)
	i := 0
	for value >= 1024.0 && i < len(units)-1 {
		value /= 1024.0
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}

// AnalysisRecord is the cached outcome of one remote analysis of a file.
// Records live for the session only and are keyed by absolute path.
type AnalysisRecord struct {
	ID         string
	Path       string
	RawText    string
	Header     string
	Body       string
	Fields     NormalizedFields
	AnalyzedAt time.Time
}
