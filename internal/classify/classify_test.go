package classify

import (
	"testing"

	"github.com/rinomina/facile/internal/core/domain"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		path string
		want domain.Category
	}{
		{"scan.png", domain.CategoryImage},
		{"photo.JPEG", domain.CategoryImage},
		{"notes.txt", domain.CategoryPlainText},
		{"README.md", domain.CategoryPlainText},
		{"invoice.PDF", domain.CategoryPdf},
		{"letter.docx", domain.CategoryWordModern},
		{"letter.doc", domain.CategoryWordLegacy},
		{"book.xlsx", domain.CategoryExcelModern},
		{"book.xls", domain.CategoryExcelLegacy},
		{"deck.pptx", domain.CategoryPowerpointModern},
		{"deck.ppt", domain.CategoryPowerpointLegacy},
		{"archive.zip", domain.CategoryUnsupported},
		{"noext", domain.CategoryUnsupported},
		{"/tmp/dir.with.dots/file.tiff", domain.CategoryImage},
	}

	for _, tc := range cases {
		if got := Detect(tc.path); got != tc.want {
			t.Errorf("Detect(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
