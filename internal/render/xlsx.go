package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportItemsXLSX returns an XLSX workbook (as bytes) with the extracted
// items, one row per item/rate pair. Header and footer text, when present,
// land in a notes block under the table. Supplementary output next to the
// PDF; rates stay plain decimal strings here so spreadsheets can sum them.
func ExportItemsXLSX(doc Document) ([]byte, error) {
	if doc.Empty() {
		return nil, fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	const sheet = "Items"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"Item", "Rate"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for _, it := range doc.Items {
		write(1, it.Name)
		write(2, it.Rate)
		row++
	}

	if doc.HeaderText != "" || doc.FooterText != "" {
		row++ // blank spacer row
		if doc.HeaderText != "" {
			write(1, "Notes (top):")
			write(2, doc.HeaderText)
			row++
		}
		if doc.FooterText != "" {
			write(1, "Notes (bottom):")
			write(2, doc.FooterText)
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
