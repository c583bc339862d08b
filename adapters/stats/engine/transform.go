package engine

import (
	"fmt"

	"labchart/domain/core"
	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Transform applies one of the series transforms to a numeric column and returns a
// row-aligned Float column.
//
//   - log: as Scale in log mode; values <= 0 become Missing with one warning
//   - difference: out[i] = in[i] - in[i-1], out[0] Missing, Missing if either side is
//   - normalize: (in[i] - mean) / std with the sample std; a constant column gives 0
//   - cumsum: running total over the present values; Missing rows stay Missing and do
//     not reset the total
func (e *Engine) Transform(col *dataset.Column, kind domainStats.TransformKind, params domainStats.TransformParams) (domainStats.TransformedSeries, error) {
	values, valid, err := numericInput("transform", col)
	if err != nil {
		return domainStats.TransformedSeries{}, err
	}

	result := domainStats.TransformedSeries{Kind: kind}
	var out []float64
	var mask []bool

	switch kind {
	case domainStats.TransformLog:
		if err := domainStats.LogSpec(params.Base).Validate(); err != nil {
			return result, err
		}
		var dropped int
		out, mask, dropped = logValues(values, valid, params.Base)
		if dropped > 0 {
			msg := fmt.Sprintf("column %q: %d non-positive value(s) set to missing by log transform", col.Name(), dropped)
			e.logger.Warn("%s", msg)
			result.Warnings = append(result.Warnings, msg)
		}

	case domainStats.TransformDifference:
		out, mask = difference(values, valid)

	case domainStats.TransformNormalize:
		out, mask = normalize(values, valid)

	case domainStats.TransformCumulativeSum:
		out, mask = cumulativeSum(values, valid)

	default:
		return result, core.NewInvalidParameterError("transform", fmt.Sprintf("unknown transform %q", kind))
	}

	if result.Column, err = floatColumn(col.Name(), out, mask); err != nil {
		return domainStats.TransformedSeries{}, err
	}
	return result, nil
}

func difference(values []float64, valid []bool) ([]float64, []bool) {
	out := make([]float64, len(values))
	mask := make([]bool, len(values))
	for i := 1; i < len(values); i++ {
		if valid[i] && valid[i-1] {
			out[i] = values[i] - values[i-1]
			mask[i] = true
		}
	}
	return out, mask
}

func normalize(values []float64, valid []bool) ([]float64, []bool) {
	out := make([]float64, len(values))
	mask := append([]bool(nil), valid...)

	present := presentValues(values, valid)
	if len(present) < 2 || constant(present) {
		return out, mask
	}
	mean, std := stat.MeanStdDev(present, nil)
	for i, v := range values {
		if mask[i] {
			out[i] = (v - mean) / std
		}
	}
	return out, mask
}

func cumulativeSum(values []float64, valid []bool) ([]float64, []bool) {
	out := make([]float64, len(values))
	mask := append([]bool(nil), valid...)

	present := presentValues(values, valid)
	sums := floats.CumSum(make([]float64, len(present)), present)
	k := 0
	for i := range values {
		if mask[i] {
			out[i] = sums[k]
			k++
		}
	}
	return out, mask
}

func presentValues(values []float64, valid []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if valid[i] {
			out = append(out, v)
		}
	}
	return out
}
