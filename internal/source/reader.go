// Package source reads gasoline price spreadsheets (xlsx or csv) into raw rows.
package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Read dispatches on the file extension and returns the sheet's header and
// non-blank rows. Cells are returned as text; typing happens in package prices.
func Read(path string, opts Options) (*Sheet, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, opts)
	case ".csv":
		return ReadCSV(path, opts)
	default:
		return nil, fmt.Errorf("unsupported source format %q (want .xlsx or .csv)", ext)
	}
}

// MissingColumns returns the required columns absent from header, in
// canonical order.
func MissingColumns(header []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}
