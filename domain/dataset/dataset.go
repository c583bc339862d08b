package dataset

import (
	"fmt"

	"labchart/domain/core"
)

// Dataset is an ordered, rectangular set of uniquely named columns.
// It is immutable; row filtering and column derivation return new Datasets.
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// ColumnInfo describes one column of a Dataset for display.
type ColumnInfo struct {
	Name         string `json:"name"`
	Kind         Kind   `json:"kind"`
	MissingCount int    `json:"missing_count"`
}

// New assembles a Dataset, enforcing unique names and equal column lengths.
func New(columns ...*Column) (*Dataset, error) {
	ds := &Dataset{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := ds.index[col.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateColumn, col.Name())
		}
		if i == 0 {
			ds.rows = col.Len()
		} else if col.Len() != ds.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", core.ErrRaggedColumns, col.Name(), col.Len(), ds.rows)
		}
		ds.index[col.Name()] = len(ds.columns)
		ds.columns = append(ds.columns, col)
	}
	return ds, nil
}

func (d *Dataset) NumRows() int    { return d.rows }
func (d *Dataset) NumColumns() int { return len(d.columns) }

// Columns returns the columns in display order.
func (d *Dataset) Columns() []*Column {
	return append([]*Column(nil), d.columns...)
}

// Names returns the column names in display order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name()
	}
	return names
}

// Column looks a column up by name.
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return d.columns[i], nil
}

// Lookup resolves several names at once, preserving the requested order.
func (d *Dataset) Lookup(names ...string) ([]*Column, error) {
	out := make([]*Column, 0, len(names))
	for _, name := range names {
		col, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// NumericColumns returns the Integer and Float columns in display order.
func (d *Dataset) NumericColumns() []*Column {
	var out []*Column
	for _, c := range d.columns {
		if c.Kind().IsNumeric() {
			out = append(out, c)
		}
	}
	return out
}

// Select returns a new Dataset holding only the given rows, in the given order.
func (d *Dataset) Select(rows []int) (*Dataset, error) {
	for _, r := range rows {
		if r < 0 || r >= d.rows {
			return nil, fmt.Errorf("%w: %d (dataset has %d rows)", core.ErrRowOutOfRange, r, d.rows)
		}
	}
	cols := make([]*Column, len(d.columns))
	for i, c := range d.columns {
		cols[i] = c.take(rows)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.rows = len(rows)
	return out, nil
}

// Drop returns a new Dataset without the given rows.
func (d *Dataset) Drop(rows []int) (*Dataset, error) {
	drop := make(map[int]bool, len(rows))
	for _, r := range rows {
		drop[r] = true
	}
	keep := make([]int, 0, d.rows)
	for r := 0; r < d.rows; r++ {
		if !drop[r] {
			keep = append(keep, r)
		}
	}
	return d.Select(keep)
}

// WithColumn returns a new Dataset with col appended, or replacing the column of the same name.
func (d *Dataset) WithColumn(col *Column) (*Dataset, error) {
	cols := d.Columns()
	if i, ok := d.index[col.Name()]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	if len(d.columns) > 0 && col.Len() != d.rows {
		return nil, fmt.Errorf("%w: %q has %d rows, expected %d", core.ErrRaggedColumns, col.Name(), col.Len(), d.rows)
	}
	return New(cols...)
}

// Describe lists name, kind and missing count per column.
func (d *Dataset) Describe() []ColumnInfo {
	out := make([]ColumnInfo, len(d.columns))
	for i, c := range d.columns {
		out[i] = ColumnInfo{Name: c.Name(), Kind: c.Kind(), MissingCount: c.MissingCount()}
	}
	return out
}
