package dataset

import (
	"github.com/YuminosukeSato/housepricer/pkg/errors"
)

// Table is cleaned, typed, column-oriented data. Numeric columns hold
// NullFloat64, text columns hold NullString, and an optional target holds
// the label of every row. Column order is preserved.
//
// A Table is assembled once with the Add methods and treated as read-only
// afterwards.
type Table struct {
	rows    int
	columns []string
	numeric map[string][]NullFloat64
	text    map[string][]NullString
	target  []float64
}

// NewTable returns an empty table with the given number of rows.
func NewTable(rows int) *Table {
	return &Table{
		rows:    rows,
		numeric: make(map[string][]NullFloat64),
		text:    make(map[string][]NullString),
	}
}

// AddNumeric appends a numeric column.
func (t *Table) AddNumeric(name string, values []NullFloat64) error {
	if err := t.checkNew("Table.AddNumeric", name, len(values)); err != nil {
		return err
	}
	t.columns = append(t.columns, name)
	t.numeric[name] = values
	return nil
}

// AddText appends a text column.
func (t *Table) AddText(name string, values []NullString) error {
	if err := t.checkNew("Table.AddText", name, len(values)); err != nil {
		return err
	}
	t.columns = append(t.columns, name)
	t.text[name] = values
	return nil
}

// SetTarget sets the label column.
func (t *Table) SetTarget(y []float64) error {
	if len(y) != t.rows {
		return errors.NewDimensionError("Table.SetTarget", t.rows, len(y), 0)
	}
	t.target = y
	return nil
}

func (t *Table) checkNew(op, name string, n int) error {
	if t.Has(name) {
		return errors.NewValueError(op, "duplicate column "+name)
	}
	if n != t.rows {
		return errors.NewDimensionError(op, t.rows, n, 0)
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Columns returns the feature column names in order. The target is not
// included.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Has reports whether a feature column called name exists.
func (t *Table) Has(name string) bool {
	if _, ok := t.numeric[name]; ok {
		return true
	}
	_, ok := t.text[name]
	return ok
}

// Numeric returns the named numeric column. An absent column is a
// SchemaError; a text column of that name is a ValueError.
func (t *Table) Numeric(name string) ([]NullFloat64, error) {
	if col, ok := t.numeric[name]; ok {
		return col, nil
	}
	if _, ok := t.text[name]; ok {
		return nil, errors.NewValueError("Table.Numeric", "column "+name+" is not numeric")
	}
	return nil, errors.NewSchemaError("Table.Numeric", name)
}

// Text returns the named text column. An absent column is a SchemaError; a
// numeric column of that name is a ValueError.
func (t *Table) Text(name string) ([]NullString, error) {
	if col, ok := t.text[name]; ok {
		return col, nil
	}
	if _, ok := t.numeric[name]; ok {
		return nil, errors.NewValueError("Table.Text", "column "+name+" is not text")
	}
	return nil, errors.NewSchemaError("Table.Text", name)
}

// Target returns the labels and whether the table has them.
func (t *Table) Target() ([]float64, bool) {
	return t.target, t.target != nil
}

// Subset returns a new table holding the rows at idx, in that order.
func (t *Table) Subset(idx []int) *Table {
	out := NewTable(len(idx))
	for _, name := range t.columns {
		if col, ok := t.numeric[name]; ok {
			sub := make([]NullFloat64, len(idx))
			for k, i := range idx {
				sub[k] = col[i]
			}
			out.columns = append(out.columns, name)
			out.numeric[name] = sub
			continue
		}
		col := t.text[name]
		sub := make([]NullString, len(idx))
		for k, i := range idx {
			sub[k] = col[i]
		}
		out.columns = append(out.columns, name)
		out.text[name] = sub
	}
	if t.target != nil {
		y := make([]float64, len(idx))
		for k, i := range idx {
			y[k] = t.target[i]
		}
		out.target = y
	}
	return out
}

// Slice returns rows [start, end).
func (t *Table) Slice(start, end int) *Table {
	idx := make([]int, end-start)
	for i := range idx {
		idx[i] = start + i
	}
	return t.Subset(idx)
}
