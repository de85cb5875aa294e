package source

// Required column names, as they appear in the spreadsheet header.
const (
	ColState    = "estado"
	ColYear     = "anio"
	ColMonth    = "mes"
	ColFuelType = "tipo_combustible"
	ColPrice    = "precio"
)

// RequiredColumns lists every column a price source must carry, in the
// canonical spreadsheet order.
var RequiredColumns = []string{ColState, ColYear, ColMonth, ColFuelType, ColPrice}

// RawRow holds the untyped cell values of one data row.
// Cells of absent columns are left empty.
type RawRow struct {
	State    string `csv:"estado"`
	Year     string `csv:"anio"`
	Month    string `csv:"mes"`
	FuelType string `csv:"tipo_combustible"`
	Price    string `csv:"precio"`

	Line int `csv:"-"` // 1-based source line
}

// Value returns the cell for a required column name.
func (r RawRow) Value(col string) string {
	switch col {
	case ColState:
		return r.State
	case ColYear:
		return r.Year
	case ColMonth:
		return r.Month
	case ColFuelType:
		return r.FuelType
	case ColPrice:
		return r.Price
	}
	return ""
}

// set assigns the cell for a required column name; other names are ignored.
func (r *RawRow) set(col, v string) {
	switch col {
	case ColState:
		r.State = v
	case ColYear:
		r.Year = v
	case ColMonth:
		r.Month = v
	case ColFuelType:
		r.FuelType = v
	case ColPrice:
		r.Price = v
	}
}

func (r RawRow) blank() bool {
	return r.State == "" && r.Year == "" && r.Month == "" && r.FuelType == "" && r.Price == ""
}

// Sheet is the header and rows read from a price source.
type Sheet struct {
	Path   string
	Name   string   // worksheet name for xlsx sources
	Header []string // column names, normalized when requested
	Rows   []RawRow
}

// Options controls how a source is read.
type Options struct {
	// Normalize folds header names to lowercase ASCII with underscores.
	Normalize bool
	// Sheet selects an xlsx worksheet by name; empty means the first sheet.
	Sheet string
}
