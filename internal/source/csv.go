package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"
)

// ReadCSV reads a comma-separated price source. The first record is the header.
func ReadCSV(path string, opts Options) (*Sheet, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided data source
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet, err := DecodeCSV(f, opts)
	if err != nil {
		return nil, err
	}
	sheet.Path = path
	return sheet, nil
}

// DecodeCSV decodes CSV price data from r.
func DecodeCSV(r io.Reader, opts Options) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Sheet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header = normalizeAll(header, opts.Normalize)

	// The header was consumed above; hand csvutil the (normalized) names so
	// struct tags match after folding.
	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, fmt.Errorf("creating CSV decoder: %w", err)
	}

	sheet := &Sheet{Header: header}
	for {
		var row RawRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding rows: %w", err)
		}
		if row.blank() {
			continue
		}
		row.Line, _ = cr.FieldPos(0)
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}
