// Package dataset holds the raw and typed tabular data that flows through
// training and inference: Frame for untyped CSV cells, Table for cleaned
// typed columns, and Record for a single inference request.
package dataset

import (
	"strings"

	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// Column names of the house price CSVs.
const (
	ColBedrooms     = "Bedrooms"
	ColBathrooms    = "Bathrooms"
	ColErfSize      = "Erf Size"
	ColPropertyType = "Type of Property"
	ColPrice        = "Price"
	ColLocation     = "Location"
	ColID           = "ID"
	ColListingDate  = "Listing Date"
)

// NumericFeatures are the numeric model inputs in feature order.
var NumericFeatures = []string{ColBedrooms, ColBathrooms, ColErfSize}

// CategoricalFeatures are the categorical model inputs in feature order.
var CategoricalFeatures = []string{ColPropertyType}

// naTokens mirrors the cell values pandas' read_csv treats as missing.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNA reports whether a raw cell represents a missing value.
func IsNA(cell string) bool {
	_, ok := naTokens[strings.TrimSpace(cell)]
	return ok
}

// Frame is an ordered set of named columns over rows of raw string cells.
// Operations never modify the receiver; they return a new Frame.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewFrame builds a Frame. Every row must have one cell per column and
// column names must be unique.
func NewFrame(columns []string, rows [][]string) (*Frame, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, errors.NewValueError("NewFrame", "duplicate column "+name)
		}
		index[name] = i
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.Newf("NewFrame: row %d has %d cells, want %d", i, len(row), len(columns))
		}
	}
	return &Frame{
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    rows,
	}, nil
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a copy of the named column, or a SchemaError.
func (f *Frame) Column(name string) ([]string, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, errors.NewSchemaError("Frame.Column", name)
	}
	out := make([]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Row returns a copy of row i.
func (f *Frame) Row(i int) []string {
	return append([]string(nil), f.rows[i]...)
}

// Drop returns a frame without the named columns. Names that are not
// present are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[int]bool, len(names))
	for _, name := range names {
		if j, ok := f.index[name]; ok {
			drop[j] = true
		}
	}
	if len(drop) == 0 {
		return f.clone()
	}

	keep := make([]int, 0, len(f.columns)-len(drop))
	for j := range f.columns {
		if !drop[j] {
			keep = append(keep, j)
		}
	}
	columns := make([]string, len(keep))
	for k, j := range keep {
		columns[k] = f.columns[j]
	}
	rows := make([][]string, len(f.rows))
	for i, row := range f.rows {
		out := make([]string, len(keep))
		for k, j := range keep {
			out[k] = row[j]
		}
		rows[i] = out
	}
	nf, _ := NewFrame(columns, rows)
	return nf
}

// FilterRows returns a frame holding only the rows for which keep returns true.
func (f *Frame) FilterRows(keep func(i int) bool) *Frame {
	rows := make([][]string, 0, len(f.rows))
	for i, row := range f.rows {
		if keep(i) {
			rows = append(rows, append([]string(nil), row...))
		}
	}
	nf, _ := NewFrame(f.columns, rows)
	return nf
}

func (f *Frame) clone() *Frame {
	rows := make([][]string, len(f.rows))
	for i, row := range f.rows {
		rows[i] = append([]string(nil), row...)
	}
	nf, _ := NewFrame(f.columns, rows)
	return nf
}
