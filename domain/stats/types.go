package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"labchart/domain/core"
	"labchart/domain/dataset"
)

// ============================================================================
// SCALING
// ============================================================================

// ScalingMode selects how a column is rescaled.
type ScalingMode string

const (
	ScaleIdentity ScalingMode = "identity"
	ScaleLinear   ScalingMode = "linear"
	ScaleLog      ScalingMode = "log"
)

// ScalingSpec describes one rescaling. For Linear mode the source range defaults to the
// column's own min/max when SourceMin/SourceMax are Missing.
type ScalingSpec struct {
	Mode      ScalingMode `json:"mode"`
	SourceMin Optional    `json:"source_min"`
	SourceMax Optional    `json:"source_max"`
	TargetMin float64     `json:"target_min"`
	TargetMax float64     `json:"target_max"`
	Base      float64     `json:"base,omitempty"`
	// OutputName names the resulting column; empty keeps the input name.
	OutputName string `json:"output_name,omitempty"`
}

// LinearSpec remaps the column's observed range onto [targetMin, targetMax].
func LinearSpec(targetMin, targetMax float64) ScalingSpec {
	return ScalingSpec{Mode: ScaleLinear, TargetMin: targetMin, TargetMax: targetMax}
}

// UnitRangeSpec is LinearSpec(0, 1), the chart "normalize data" option.
func UnitRangeSpec() ScalingSpec {
	return LinearSpec(0, 1)
}

// LogSpec takes logarithms in the given base. A base of 0 means natural log.
func LogSpec(base float64) ScalingSpec {
	return ScalingSpec{Mode: ScaleLog, Base: base}
}

// IdentitySpec converts the column to Float without changing values.
func IdentitySpec() ScalingSpec {
	return ScalingSpec{Mode: ScaleIdentity}
}

// WithSourceRange pins the linear source range instead of using the column's min/max.
func (s ScalingSpec) WithSourceRange(min, max float64) ScalingSpec {
	s.SourceMin = Some(min)
	s.SourceMax = Some(max)
	return s
}

// Validate checks parameters that are independent of the data.
func (s ScalingSpec) Validate() error {
	switch s.Mode {
	case ScaleIdentity, ScaleLinear:
	case ScaleLog:
		if s.Base < 0 || s.Base == 1 || math.IsNaN(s.Base) {
			return core.NewInvalidParameterError("base", fmt.Sprintf("%g is not a valid logarithm base", s.Base))
		}
	default:
		return core.NewInvalidParameterError("mode", fmt.Sprintf("unknown scaling mode %q", s.Mode))
	}
	return nil
}

// ScaledColumn is the result of a scaling operation.
type ScaledColumn struct {
	Column   *dataset.Column `json:"-"`
	Spec     ScalingSpec     `json:"spec"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ============================================================================
// STATISTICS
// ============================================================================

// Summary holds descriptive statistics over the non-missing values of one column.
// With Count == 0 every statistic is Missing.
type Summary struct {
	Column   string   `json:"column"`
	Count    int      `json:"count"`
	Missing  int      `json:"missing"`
	Mean     Optional `json:"mean"`
	Std      Optional `json:"std"`
	Min      Optional `json:"min"`
	Max      Optional `json:"max"`
	Median   Optional `json:"median"`
	Q1       Optional `json:"q1"`
	Q3       Optional `json:"q3"`
	Range    Optional `json:"range"`
	IQR      Optional `json:"iqr"`
	Skewness Optional `json:"skewness"`
	Kurtosis Optional `json:"kurtosis"`
}

// ============================================================================
// OUTLIERS
// ============================================================================

// OutlierMethod selects the outlier rule.
type OutlierMethod string

const (
	OutlierIQR    OutlierMethod = "iqr"
	OutlierZScore OutlierMethod = "zscore"
)

const (
	DefaultIQRMultiplier  = 1.5
	DefaultZScoreCutoff   = 3.0
	DefaultSmoothingWidth = 5
)

// OutlierParams configures detection. Zero fields take the method defaults.
type OutlierParams struct {
	Method    OutlierMethod `json:"method"`
	K         float64       `json:"k,omitempty"`
	Threshold float64       `json:"threshold,omitempty"`
}

// WithDefaults fills unset parameters.
func (p OutlierParams) WithDefaults() OutlierParams {
	if p.Method == "" {
		p.Method = OutlierIQR
	}
	if p.K == 0 {
		p.K = DefaultIQRMultiplier
	}
	if p.Threshold == 0 {
		p.Threshold = DefaultZScoreCutoff
	}
	return p
}

// OutlierSet lists the flagged rows of one column together with the bounds used.
// Bounds are Missing when the column has no values.
type OutlierSet struct {
	Column string        `json:"column"`
	Method OutlierMethod `json:"method"`
	Rows   []int         `json:"rows"`
	Lower  Optional      `json:"lower"`
	Upper  Optional      `json:"upper"`
}

// Contains reports whether row was flagged.
func (o OutlierSet) Contains(row int) bool {
	i := sort.SearchInts(o.Rows, row)
	return i < len(o.Rows) && o.Rows[i] == row
}

// ============================================================================
// SMOOTHING
// ============================================================================

// SmoothingMethod selects the smoother.
type SmoothingMethod string

const (
	SmoothMovingAverage SmoothingMethod = "moving_avg"
	SmoothGaussian      SmoothingMethod = "gaussian"
	SmoothSavitzkyGolay SmoothingMethod = "savgol"
)

// SmoothingParams configures Smooth. Window applies to the moving average and the
// Savitzky-Golay filter, Sigma to the Gaussian kernel.
type SmoothingParams struct {
	Method SmoothingMethod `json:"method"`
	Window int             `json:"window"`
	Sigma  float64         `json:"sigma,omitempty"`
}

// SmoothedSeries is the Float output of a smoother, row-aligned with its input.
type SmoothedSeries struct {
	Params SmoothingParams `json:"params"`
	Column *dataset.Column `json:"-"`
}

// ============================================================================
// TRANSFORMS
// ============================================================================

// TransformKind names an elementwise or sequence transform.
type TransformKind string

const (
	TransformLog           TransformKind = "log"
	TransformDifference    TransformKind = "difference"
	TransformNormalize     TransformKind = "normalize"
	TransformCumulativeSum TransformKind = "cumsum"
)

// TransformParams carries per-kind options. Base is used by TransformLog (0 means e).
type TransformParams struct {
	Base float64 `json:"base,omitempty"`
}

// TransformedSeries is a Float column derived from one input column.
type TransformedSeries struct {
	Kind     TransformKind   `json:"kind"`
	Column   *dataset.Column `json:"-"`
	Warnings []string        `json:"warnings,omitempty"`
}

// DeriveOp combines several columns row by row.
type DeriveOp string

const (
	DeriveAdd      DeriveOp = "add"
	DeriveSubtract DeriveOp = "subtract"
	DeriveMultiply DeriveOp = "multiply"
	DeriveDivide   DeriveOp = "divide"
)

// ParseTransformKind accepts the CLI spellings of a transform.
func ParseTransformKind(s string) (TransformKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "log", "ln":
		return TransformLog, nil
	case "diff", "difference":
		return TransformDifference, nil
	case "normalize", "zscore", "standardize":
		return TransformNormalize, nil
	case "cumsum", "cumulative", "cumulative_sum":
		return TransformCumulativeSum, nil
	}
	return "", core.NewInvalidParameterError("transform", fmt.Sprintf("unknown transform %q", s))
}

// ParseDeriveOp accepts operation names and their arithmetic symbols.
func ParseDeriveOp(s string) (DeriveOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "+", "sum":
		return DeriveAdd, nil
	case "subtract", "-", "sub":
		return DeriveSubtract, nil
	case "multiply", "*", "mul":
		return DeriveMultiply, nil
	case "divide", "/", "div":
		return DeriveDivide, nil
	}
	return "", core.NewInvalidParameterError("op", fmt.Sprintf("unknown operation %q", s))
}

// ParseOutlierMethod accepts "iqr" and "zscore".
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "iqr":
		return OutlierIQR, nil
	case "zscore", "z-score", "z":
		return OutlierZScore, nil
	}
	return "", core.NewInvalidParameterError("method", fmt.Sprintf("unknown outlier method %q", s))
}

// ParseSmoothingMethod accepts "moving_avg", "gaussian" and "savgol".
func ParseSmoothingMethod(s string) (SmoothingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "moving_avg", "moving-average", "ma", "":
		return SmoothMovingAverage, nil
	case "gaussian", "gauss":
		return SmoothGaussian, nil
	case "savgol", "savitzky-golay", "sg":
		return SmoothSavitzkyGolay, nil
	}
	return "", core.NewInvalidParameterError("method", fmt.Sprintf("unknown smoothing method %q", s))
}
