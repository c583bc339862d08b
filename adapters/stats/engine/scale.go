package engine

import (
	"fmt"
	"math"

	"labchart/domain/core"
	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"

	"gonum.org/v1/gonum/floats"
)

// Scale produces a rescaled Float copy of col. Integer and Float columns are accepted;
// DateTime columns are read as Unix seconds. Missing inputs stay Missing in every mode.
//
// Linear remaps [src_min, src_max] onto [target_min, target_max], with the source range
// taken from the column unless the ScalingSpec pins it; a degenerate source range maps
// every value to target_min. Log treats values <= 0 as Missing and reports that once.
func (e *Engine) Scale(col *dataset.Column, spec domainStats.ScalingSpec) (domainStats.ScaledColumn, error) {
	if err := spec.Validate(); err != nil {
		return domainStats.ScaledColumn{}, err
	}
	if col == nil {
		return domainStats.ScaledColumn{}, core.NewInvalidParameterError("column", "nil column")
	}
	if !col.Kind().IsNumeric() && col.Kind() != dataset.KindDateTime {
		return domainStats.ScaledColumn{}, core.NewUnsupportedKindError("scale", col.Name(), col.Kind())
	}

	in, valid := col.Floats()
	out := make([]float64, len(in))
	result := domainStats.ScaledColumn{Spec: spec}

	switch spec.Mode {
	case domainStats.ScaleIdentity:
		copy(out, in)

	case domainStats.ScaleLinear:
		present := col.Numbers()
		if len(present) == 0 {
			break
		}
		srcMin := spec.SourceMin.Or(floats.Min(present))
		srcMax := spec.SourceMax.Or(floats.Max(present))
		span := srcMax - srcMin
		for i, v := range in {
			if !valid[i] {
				continue
			}
			if span == 0 {
				out[i] = spec.TargetMin
				continue
			}
			out[i] = spec.TargetMin + (v-srcMin)/span*(spec.TargetMax-spec.TargetMin)
		}

	case domainStats.ScaleLog:
		var dropped int
		out, valid, dropped = logValues(in, valid, spec.Base)
		if dropped > 0 {
			msg := fmt.Sprintf("column %q: %d non-positive value(s) set to missing by log scaling", col.Name(), dropped)
			e.logger.Warn("%s", msg)
			result.Warnings = append(result.Warnings, msg)
		}
	}

	name := spec.OutputName
	if name == "" {
		name = col.Name()
	}
	scaled, err := floatColumn(name, out, valid)
	if err != nil {
		return domainStats.ScaledColumn{}, err
	}
	result.Column = scaled
	return result, nil
}

// logValues takes logarithms of the present values. Values <= 0 become Missing and are
// counted. Base 0 means natural logarithm.
func logValues(in []float64, valid []bool, base float64) ([]float64, []bool, int) {
	out := make([]float64, len(in))
	mask := append([]bool(nil), valid...)
	dropped := 0
	for i, v := range in {
		if !mask[i] {
			continue
		}
		if v <= 0 {
			mask[i] = false
			dropped++
			continue
		}
		out[i] = logBase(v, base)
	}
	return out, mask, dropped
}

func logBase(v, base float64) float64 {
	switch base {
	case 0, math.E:
		return math.Log(v)
	case 10:
		return math.Log10(v)
	case 2:
		return math.Log2(v)
	}
	return math.Log(v) / math.Log(base)
}
