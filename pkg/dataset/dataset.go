package dataset

import (
	"fmt"
	"math"
)

// ColumnKind is the inferred type of a column
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindString  ColumnKind = "string"
	KindBoolean ColumnKind = "boolean"
)

// Column is one named, typed column of a dataset. Numeric columns keep their
// values in Float with Null marking missing entries; string and boolean
// columns keep the raw text in Text.
type Column struct {
	Name  string     `json:"name"`
	Kind  ColumnKind `json:"kind"`
	Float []float64  `json:"-"`
	Text  []string   `json:"-"`
	Null  []bool     `json:"-"`
}

// NullCount returns the number of missing values in the column
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.Null {
		if isNull {
			n++
		}
	}
	return n
}

// IsNumeric reports whether the column holds numeric values
func (c *Column) IsNumeric() bool { return c.Kind == KindNumeric }

// Mean returns the mean of the column's non-null values. The second return
// is false when the column has no non-null value or the mean is NaN.
func (c *Column) Mean() (float64, bool) {
	if c.Kind != KindNumeric {
		return 0, false
	}
	sum := 0.0
	count := 0
	for i, v := range c.Float {
		if c.Null[i] {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0, false
	}
	mean := sum / float64(count)
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0, false
	}
	return mean, true
}

// Dataset is an in-memory table of rows by named columns. Columns keep the
// order they appeared in at ingestion; that order is what feature selection
// reports against.
type Dataset struct {
	columns []Column
	byName  map[string]int
	numRows int
}

// New builds a dataset from pre-typed columns. All columns must have the
// same length.
func New(columns []Column) (*Dataset, error) {
	ds := &Dataset{byName: make(map[string]int, len(columns))}
	for i, col := range columns {
		if i == 0 {
			ds.numRows = columnLen(&col)
		} else if columnLen(&col) != ds.numRows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, columnLen(&col), ds.numRows)
		}
		if _, dup := ds.byName[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		ds.byName[col.Name] = i
	}
	ds.columns = columns
	return ds, nil
}

func columnLen(c *Column) int {
	if c.Kind == KindNumeric {
		return len(c.Float)
	}
	return len(c.Text)
}

// NumRows returns the number of data rows
func (d *Dataset) NumRows() int { return d.numRows }

// NumColumns returns the number of columns
func (d *Dataset) NumColumns() int { return len(d.columns) }

// ColumnNames returns the column names in native order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i := range d.columns {
		names[i] = d.columns[i].Name
	}
	return names
}

// Columns returns the columns in native order
func (d *Dataset) Columns() []Column { return d.columns }

// Column returns the named column, or nil when absent
func (d *Dataset) Column(name string) *Column {
	idx, ok := d.byName[name]
	if !ok {
		return nil
	}
	return &d.columns[idx]
}

// HasColumn reports whether the named column exists
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// NumericColumns returns the names of all numeric columns in native order
func (d *Dataset) NumericColumns() []string {
	var names []string
	for i := range d.columns {
		if d.columns[i].IsNumeric() {
			names = append(names, d.columns[i].Name)
		}
	}
	return names
}

// StringValue returns the text value at row i of the named column, rendering
// numeric cells with %g. Missing cells and absent columns return "".
func (d *Dataset) StringValue(name string, i int) string {
	col := d.Column(name)
	if col == nil || i < 0 || i >= d.numRows || col.Null[i] {
		return ""
	}
	if col.Kind == KindNumeric {
		return fmt.Sprintf("%g", col.Float[i])
	}
	return col.Text[i]
}

// LabelDistribution counts the distinct non-null values of the named column
func (d *Dataset) LabelDistribution(name string) map[string]int {
	col := d.Column(name)
	if col == nil {
		return map[string]int{}
	}
	dist := make(map[string]int)
	for i := 0; i < d.numRows; i++ {
		if col.Null[i] {
			continue
		}
		dist[d.StringValue(name, i)]++
	}
	return dist
}

// FilterRows returns a new dataset containing only the rows for which keep
// returns true. Column order and types are preserved.
func (d *Dataset) FilterRows(keep func(row int) bool) *Dataset {
	var rows []int
	for i := 0; i < d.numRows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	cols := make([]Column, len(d.columns))
	for ci := range d.columns {
		src := &d.columns[ci]
		dst := Column{Name: src.Name, Kind: src.Kind, Null: make([]bool, len(rows))}
		if src.Kind == KindNumeric {
			dst.Float = make([]float64, len(rows))
		} else {
			dst.Text = make([]string, len(rows))
		}
		for ri, row := range rows {
			dst.Null[ri] = src.Null[row]
			if src.Kind == KindNumeric {
				dst.Float[ri] = src.Float[row]
			} else {
				dst.Text[ri] = src.Text[row]
			}
		}
		cols[ci] = dst
	}
	out, _ := New(cols)
	return out
}
