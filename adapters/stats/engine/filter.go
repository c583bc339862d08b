package engine

import (
	"fmt"
	"strings"

	"labchart/domain/core"
	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"
)

// FilterRows returns, in ascending order, the rows of col that satisfy the predicate.
// Missing cells satisfy only IsMissing. Numeric and DateTime columns compare numerically
// (DateTime as instants), Booleans support equality only and Text supports equality and
// the substring predicates.
func (e *Engine) FilterRows(col *dataset.Column, pred domainStats.Predicate) ([]int, error) {
	if col == nil {
		return nil, core.NewInvalidParameterError("column", "nil column")
	}
	match, err := compile(col, pred)
	if err != nil {
		return nil, err
	}

	rows := []int{}
	for i := 0; i < col.Len(); i++ {
		if match(col.Value(i)) {
			rows = append(rows, i)
		}
	}
	e.logger.Debug("filter %q %s: %d of %d rows", col.Name(), pred.Op, len(rows), col.Len())
	return rows, nil
}

// FilterDataset keeps the rows of ds whose column value satisfies the predicate,
// returning a new Dataset.
func (e *Engine) FilterDataset(ds *dataset.Dataset, column string, pred domainStats.Predicate) (*dataset.Dataset, error) {
	col, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	rows, err := e.FilterRows(col, pred)
	if err != nil {
		return nil, err
	}
	return ds.Select(rows)
}

type matcher func(v dataset.Value) bool

func compile(col *dataset.Column, pred domainStats.Predicate) (matcher, error) {
	switch pred.Op {
	case domainStats.IsMissing:
		return func(v dataset.Value) bool { return v.IsMissing() }, nil
	case domainStats.NotMissing:
		return func(v dataset.Value) bool { return !v.IsMissing() }, nil
	}

	unsupported := core.NewUnsupportedKindError(fmt.Sprintf("filter %q", pred.Op), col.Name(), col.Kind())

	switch col.Kind() {
	case dataset.KindText:
		if pred.Op.IsOrdering() {
			return nil, unsupported
		}
		return compileText(pred)
	case dataset.KindBoolean:
		if pred.Op.IsOrdering() || pred.Op.IsTextual() {
			return nil, unsupported
		}
	default:
		if pred.Op.IsTextual() {
			return nil, unsupported
		}
	}
	return compileNumeric(pred)
}

func compileNumeric(pred domainStats.Predicate) (matcher, error) {
	if pred.Op == domainStats.In {
		set := make(map[float64]bool, len(pred.Set))
		for _, lit := range pred.Set {
			x, ok := lit.Float()
			if !ok {
				return nil, literalError(pred.Op, lit)
			}
			set[x] = true
		}
		return func(v dataset.Value) bool {
			x, ok := v.Float()
			return ok && set[x]
		}, nil
	}

	lit, ok := pred.Literal.Float()
	if !ok {
		return nil, literalError(pred.Op, pred.Literal)
	}

	var test func(x float64) bool
	switch pred.Op {
	case domainStats.Less:
		test = func(x float64) bool { return x < lit }
	case domainStats.LessEqual:
		test = func(x float64) bool { return x <= lit }
	case domainStats.Equal:
		test = func(x float64) bool { return x == lit }
	case domainStats.GreaterEqual:
		test = func(x float64) bool { return x >= lit }
	case domainStats.Greater:
		test = func(x float64) bool { return x > lit }
	case domainStats.NotEqual:
		test = func(x float64) bool { return x != lit }
	case domainStats.Between:
		hi, ok := pred.Upper.Float()
		if !ok {
			return nil, literalError(pred.Op, pred.Upper)
		}
		test = func(x float64) bool { return x >= lit && x <= hi }
	default:
		return nil, core.NewInvalidParameterError("comparator", fmt.Sprintf("%q is not a numeric comparator", pred.Op))
	}

	return func(v dataset.Value) bool {
		x, ok := v.Float()
		return ok && test(x)
	}, nil
}

func compileText(pred domainStats.Predicate) (matcher, error) {
	if pred.Op == domainStats.In {
		set := make(map[string]bool, len(pred.Set))
		for _, lit := range pred.Set {
			set[textOf(lit)] = true
		}
		return func(v dataset.Value) bool {
			s, ok := v.Text()
			return ok && set[s]
		}, nil
	}

	if pred.Literal.IsMissing() {
		return nil, literalError(pred.Op, pred.Literal)
	}
	lit := textOf(pred.Literal)

	var test func(s string) bool
	switch pred.Op {
	case domainStats.Equal:
		test = func(s string) bool { return s == lit }
	case domainStats.NotEqual:
		test = func(s string) bool { return s != lit }
	case domainStats.Contains:
		test = func(s string) bool { return strings.Contains(s, lit) }
	case domainStats.StartsWith:
		test = func(s string) bool { return strings.HasPrefix(s, lit) }
	case domainStats.EndsWith:
		test = func(s string) bool { return strings.HasSuffix(s, lit) }
	default:
		return nil, core.NewInvalidParameterError("comparator", fmt.Sprintf("%q is not a text comparator", pred.Op))
	}

	return func(v dataset.Value) bool {
		s, ok := v.Text()
		return ok && test(s)
	}, nil
}

func textOf(v dataset.Value) string {
	if s, ok := v.Text(); ok {
		return s
	}
	return v.String()
}

func literalError(op domainStats.Comparator, lit dataset.Value) error {
	return core.NewInvalidParameterError("literal", fmt.Sprintf("%s cannot be compared with %q", lit, op))
}
