// Package classify maps file extensions to preview categories. It is pure:
// no I/O, no error outcome, unknown extensions map to Unsupported.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/rinomina/facile/internal/core/domain"
)

var byExtension = map[string]domain.Category{
	".png":  domain.CategoryImage,
	".jpg":  domain.CategoryImage,
	".jpeg": domain.CategoryImage,
	".gif":  domain.CategoryImage,
	".bmp":  domain.CategoryImage,
	".tif":  domain.CategoryImage,
	".tiff": domain.CategoryImage,
	".webp": domain.CategoryImage,

	".txt": domain.CategoryPlainText,
	".md":  domain.CategoryPlainText,
	".csv": domain.CategoryPlainText,
	".log": domain.CategoryPlainText,

	".pdf": domain.CategoryPdf,

	".docx": domain.CategoryWordModern,
	".doc":  domain.CategoryWordLegacy,
	".xlsx": domain.CategoryExcelModern,
	".xls":  domain.CategoryExcelLegacy,
	".pptx": domain.CategoryPowerpointModern,
	".ppt":  domain.CategoryPowerpointLegacy,
}

// Detect classifies a path by its lowercased extension.
func Detect(path string) domain.Category {
	ext := strings.ToLower(filepath.Ext(path))
	if category, ok := byExtension[ext]; ok {
		return category
	}
	return domain.CategoryUnsupported
}
