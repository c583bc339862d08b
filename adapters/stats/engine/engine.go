package engine

import (
	"labchart/domain/core"
	"labchart/domain/dataset"
	"labchart/internal"
)

// Engine runs the column analyses: scaling, statistics, filtering, smoothing,
// correlation, transforms and derived columns. It keeps no state besides the logger,
// so one Engine may be shared across goroutines.
type Engine struct {
	logger *internal.Logger
}

// New creates an engine. A nil logger discards diagnostics.
func New(logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.Discard()
	}
	return &Engine{logger: logger.With("engine")}
}

// numericInput returns the row-aligned values and presence mask of an Integer or Float column
func numericInput(operation string, col *dataset.Column) ([]float64, []bool, error) {
	if col == nil {
		return nil, nil, core.NewInvalidParameterError("column", "nil column")
	}
	if !col.Kind().IsNumeric() {
		return nil, nil, core.NewUnsupportedKindError(operation, col.Name(), col.Kind())
	}
	values, mask := col.Floats()
	return values, mask, nil
}

// floatColumn wraps computed values as a Float column; rows with valid[i] == false are Missing.
func floatColumn(name string, values []float64, valid []bool) (*dataset.Column, error) {
	return dataset.NewFloatColumn(name, values, valid)
}
