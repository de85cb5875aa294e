package source

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads a price source from an Excel workbook. The first row of the
// selected worksheet is the header.
func ReadXLSX(path string, opts Options) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	name := opts.Sheet
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return &Sheet{Path: path}, nil
		}
		name = sheets[0]
	}

	// Raw values keep number formats ("$22.50", "2,023") out of the parse.
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}

	sheet := &Sheet{Path: path, Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}

	sheet.Header = normalizeAll(rows[0], opts.Normalize)
	sheet.Rows = mapRows(sheet.Header, rows[1:], 2)
	return sheet, nil
}

// mapRows assigns cells to required columns by header position. Rows may be
// shorter than the header; excelize trims trailing empty cells.
func mapRows(header []string, rows [][]string, firstLine int) []RawRow {
	pos := make(map[string]int, len(RequiredColumns))
	for i, h := range header {
		if _, seen := pos[h]; !seen {
			pos[h] = i
		}
	}

	out := make([]RawRow, 0, len(rows))
	for i, cells := range rows {
		row := RawRow{Line: firstLine + i}
		for _, col := range RequiredColumns {
			idx, ok := pos[col]
			if !ok || idx >= len(cells) {
				continue
			}
			row.set(col, strings.TrimSpace(cells[idx]))
		}
		if row.blank() {
			continue
		}
		out = append(out, row)
	}
	return out
}
