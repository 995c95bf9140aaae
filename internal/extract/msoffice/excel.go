package msoffice

import (
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/rinomina/facile/internal/core/domain"
)

// ExcelLimits bound workbook extraction. MaxCols == 0 means uncapped.
// The preview and analysis paths intentionally use different limits.
type ExcelLimits struct {
	MaxSheets int
	MaxRows   int
	MaxCols   int
}

var (
	ExcelPreviewLimits  = ExcelLimits{MaxSheets: 5, MaxRows: 20, MaxCols: 10}
	ExcelAnalysisLimits = ExcelLimits{MaxSheets: 5, MaxRows: 100, MaxCols: 0}
)

const cellDelimiter = " | "

// ExcelText renders the first sheets of a workbook as delimited rows.
// Empty rows are skipped from output but still count toward the row cap.
func ExcelText(path string, category domain.Category, limits ExcelLimits) (string, error) {
	switch category {
	case domain.CategoryExcelModern:
		return xlsxText(path, limits)
	case domain.CategoryExcelLegacy:
		return legacyExcelText(path, limits)
	default:
		return "", fmt.Errorf("not an excel category: %s", category)
	}
}

func xlsxText(path string, limits ExcelLimits) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrDecodeFailure, "open workbook", err)
	}
	defer f.Close()

	var b strings.Builder
	sheets := f.GetSheetList()
	for i, sheet := range sheets {
		if i >= limits.MaxSheets {
			break
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrDecodeFailure, "read sheet "+sheet, err)
		}
		writeSheet(&b, sheet, rows, limits)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func legacyExcelText(path string, limits ExcelLimits) (string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return "", domain.WrapError(domain.ErrDecodeFailure, "open legacy workbook", err)
	}

	var b strings.Builder
	sheetCount := wb.NumSheets()
	if sheetCount > limits.MaxSheets {
		sheetCount = limits.MaxSheets
	}
	for i := 0; i < sheetCount; i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			var cells []string
			for c := row.FirstCol(); c <= row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		writeSheet(&b, sheet.Name, rows, limits)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func writeSheet(b *strings.Builder, name string, rows [][]string, limits ExcelLimits) {
	fmt.Fprintf(b, "### Sheet: %s\n", name)
	scanned := 0
	for _, row := range rows {
		if scanned >= limits.MaxRows {
			break
		}
		scanned++

		cells := row
		if limits.MaxCols > 0 && len(cells) > limits.MaxCols {
			cells = cells[:limits.MaxCols]
		}
		line := strings.TrimSpace(strings.Join(cells, cellDelimiter))
		if strings.Trim(line, cellDelimiter+" ") == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
