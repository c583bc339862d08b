package dataset

import (
	"fmt"
	"time"
)

// Column is a named, typed, immutable sequence of cells aligned by row index.
// Exactly one of the typed backing slices is populated, selected by kind.
type Column struct {
	name  string
	kind  Kind
	valid []bool

	ints   []int64
	floats []float64
	texts  []string
	times  []time.Time
	bools  []bool
}

// NewIntegerColumn builds an Integer column. A nil valid mask means no Missing cells.
func NewIntegerColumn(name string, values []int64, valid []bool) (*Column, error) {
	c := &Column{name: name, kind: KindInteger, ints: append([]int64(nil), values...)}
	return c, c.setMask(valid, len(values))
}

// NewFloatColumn builds a Float column. A nil valid mask means no Missing cells.
func NewFloatColumn(name string, values []float64, valid []bool) (*Column, error) {
	c := &Column{name: name, kind: KindFloat, floats: append([]float64(nil), values...)}
	return c, c.setMask(valid, len(values))
}

// NewTextColumn builds a Text column. A nil valid mask means no Missing cells.
func NewTextColumn(name string, values []string, valid []bool) (*Column, error) {
	c := &Column{name: name, kind: KindText, texts: append([]string(nil), values...)}
	return c, c.setMask(valid, len(values))
}

// NewDateTimeColumn builds a DateTime column. A nil valid mask means no Missing cells.
func NewDateTimeColumn(name string, values []time.Time, valid []bool) (*Column, error) {
	c := &Column{name: name, kind: KindDateTime, times: append([]time.Time(nil), values...)}
	return c, c.setMask(valid, len(values))
}

// NewBooleanColumn builds a Boolean column. A nil valid mask means no Missing cells.
func NewBooleanColumn(name string, values []bool, valid []bool) (*Column, error) {
	c := &Column{name: name, kind: KindBoolean, bools: append([]bool(nil), values...)}
	return c, c.setMask(valid, len(values))
}

// NewColumnFromValues builds a column of the given kind from typed cells.
// Every non-missing cell must carry exactly that kind.
func NewColumnFromValues(name string, kind Kind, values []Value) (*Column, error) {
	n := len(values)
	c := &Column{name: name, kind: kind, valid: make([]bool, n)}
	switch kind {
	case KindInteger:
		c.ints = make([]int64, n)
	case KindFloat:
		c.floats = make([]float64, n)
	case KindText:
		c.texts = make([]string, n)
	case KindDateTime:
		c.times = make([]time.Time, n)
	case KindBoolean:
		c.bools = make([]bool, n)
	default:
		return nil, fmt.Errorf("column %q: unknown kind %d", name, kind)
	}

	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		if v.kind != kind {
			return nil, fmt.Errorf("column %q row %d: %s value in %s column", name, i, v.kind, kind)
		}
		c.valid[i] = true
		switch kind {
		case KindInteger:
			c.ints[i] = v.i
		case KindFloat:
			c.floats[i] = v.f
		case KindText:
			c.texts[i] = v.s
		case KindDateTime:
			c.times[i] = v.t
		case KindBoolean:
			c.bools[i] = v.b
		}
	}
	return c, nil
}

func (c *Column) setMask(valid []bool, n int) error {
	if valid == nil {
		c.valid = make([]bool, n)
		for i := range c.valid {
			c.valid[i] = true
		}
		return nil
	}
	if len(valid) != n {
		return fmt.Errorf("column %q: mask length %d does not match %d values", c.name, len(valid), n)
	}
	c.valid = append([]bool(nil), valid...)
	return nil
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.valid) }

// IsMissing reports whether row i holds the Missing sentinel.
func (c *Column) IsMissing(i int) bool { return !c.valid[i] }

// MissingCount returns the number of Missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Value returns the typed cell at row i.
func (c *Column) Value(i int) Value {
	if !c.valid[i] {
		return Missing()
	}
	switch c.kind {
	case KindInteger:
		return IntegerValue(c.ints[i])
	case KindFloat:
		return FloatValue(c.floats[i])
	case KindText:
		return TextValue(c.texts[i])
	case KindDateTime:
		return DateTimeValue(c.times[i])
	case KindBoolean:
		return BooleanValue(c.bools[i])
	}
	return Missing()
}

// Values returns a copy of every cell in row order.
func (c *Column) Values() []Value {
	out := make([]Value, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// Float returns the numeric reading of row i (see Value.Float).
func (c *Column) Float(i int) (float64, bool) {
	if !c.valid[i] {
		return 0, false
	}
	switch c.kind {
	case KindInteger:
		return float64(c.ints[i]), true
	case KindFloat:
		return c.floats[i], true
	}
	return c.Value(i).Float()
}

// Floats returns a row-aligned numeric view and its presence mask. Text columns
// return an all-missing mask. The returned slices are copies.
func (c *Column) Floats() ([]float64, []bool) {
	n := c.Len()
	out := make([]float64, n)
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i], mask[i] = c.Float(i)
	}
	return out, mask
}

// Numbers returns the present numeric readings in row order, Missing skipped.
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Rename returns a copy of the column carrying a new name.
func (c *Column) Rename(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

// take builds a new column holding the given rows in the given order.
func (c *Column) take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind, valid: make([]bool, len(rows))}
	for j, r := range rows {
		out.valid[j] = c.valid[r]
	}
	switch c.kind {
	case KindInteger:
		out.ints = make([]int64, len(rows))
		for j, r := range rows {
			out.ints[j] = c.ints[r]
		}
	case KindFloat:
		out.floats = make([]float64, len(rows))
		for j, r := range rows {
			out.floats[j] = c.floats[r]
		}
	case KindText:
		out.texts = make([]string, len(rows))
		for j, r := range rows {
			out.texts[j] = c.texts[r]
		}
	case KindDateTime:
		out.times = make([]time.Time, len(rows))
		for j, r := range rows {
			out.times[j] = c.times[r]
		}
	case KindBoolean:
		out.bools = make([]bool, len(rows))
		for j, r := range rows {
			out.bools[j] = c.bools[r]
		}
	}
	return out
}
