package engine

import (
	"fmt"

	"labchart/domain/core"
	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"
)

// Derive combines two or more numeric columns row by row, folding left:
// subtract computes a - b - c, divide a / b / c. A row is Missing if any input is Missing
// or a divisor is zero.
func (e *Engine) Derive(name string, op domainStats.DeriveOp, cols ...*dataset.Column) (*dataset.Column, error) {
	if name == "" {
		return nil, core.NewInvalidParameterError("name", "derived column needs a name")
	}
	if len(cols) < 2 {
		return nil, core.NewInvalidParameterError("columns", fmt.Sprintf("%s needs at least two columns, got %d", op, len(cols)))
	}

	var apply func(acc, v float64) (float64, bool)
	switch op {
	case domainStats.DeriveAdd:
		apply = func(acc, v float64) (float64, bool) { return acc + v, true }
	case domainStats.DeriveSubtract:
		apply = func(acc, v float64) (float64, bool) { return acc - v, true }
	case domainStats.DeriveMultiply:
		apply = func(acc, v float64) (float64, bool) { return acc * v, true }
	case domainStats.DeriveDivide:
		apply = func(acc, v float64) (float64, bool) {
			if v == 0 {
				return 0, false
			}
			return acc / v, true
		}
	default:
		return nil, core.NewInvalidParameterError("op", fmt.Sprintf("unknown operation %q", op))
	}

	out, mask, err := numericInput("derive", cols[0])
	if err != nil {
		return nil, err
	}
	for _, col := range cols[1:] {
		values, valid, err := numericInput("derive", col)
		if err != nil {
			return nil, err
		}
		if len(values) != len(out) {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", core.ErrRaggedColumns, col.Name(), len(values), len(out))
		}
		for i := range out {
			if !mask[i] {
				continue
			}
			if !valid[i] {
				mask[i] = false
				continue
			}
			out[i], mask[i] = apply(out[i], values[i])
		}
	}

	e.logger.Debug("derived %q = %s(%d columns)", name, op, len(cols))
	return floatColumn(name, out, mask)
}
