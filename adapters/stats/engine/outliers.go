package engine

import (
	"fmt"
	"math"
	"sort"

	"labchart/domain/core"
	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"

	"github.com/montanaflynn/stats"
)

// DetectOutliers flags rows of a numeric column.
//
// IQR flags values strictly outside [Q1 - k*IQR, Q3 + k*IQR]. Z-score flags values with
// |v - mean| / std strictly above the threshold, using the population std; a constant column
// flags nothing. Missing rows are never flagged. Rows come back in ascending order.
func (e *Engine) DetectOutliers(col *dataset.Column, params domainStats.OutlierParams) (domainStats.OutlierSet, error) {
	values, valid, err := numericInput("detect outliers", col)
	if err != nil {
		return domainStats.OutlierSet{}, err
	}
	params = params.WithDefaults()

	set := domainStats.OutlierSet{Column: col.Name(), Method: params.Method, Rows: []int{}}
	data := col.Numbers()
	if len(data) == 0 {
		if params.Method != domainStats.OutlierIQR && params.Method != domainStats.OutlierZScore {
			return set, unknownOutlierMethod(params.Method)
		}
		return set, nil
	}

	var lower, upper float64
	var flagged func(v float64) bool
	switch params.Method {
	case domainStats.OutlierIQR:
		if params.K < 0 {
			return set, core.NewInvalidParameterError("k", fmt.Sprintf("%g must not be negative", params.K))
		}
		sorted := append([]float64(nil), data...)
		sort.Float64s(sorted)
		q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
		iqr := q3 - q1
		lower, upper = q1-params.K*iqr, q3+params.K*iqr
		flagged = func(v float64) bool { return v < lower || v > upper }

	case domainStats.OutlierZScore:
		if params.Threshold < 0 {
			return set, core.NewInvalidParameterError("threshold", fmt.Sprintf("%g must not be negative", params.Threshold))
		}
		mean, _ := stats.Mean(data)
		std, _ := stats.StandardDeviationPopulation(data)
		if std == 0 || constant(data) {
			set.Lower, set.Upper = domainStats.Some(mean), domainStats.Some(mean)
			return set, nil
		}
		lower, upper = mean-params.Threshold*std, mean+params.Threshold*std
		flagged = func(v float64) bool { return zscore(v, mean, std) > params.Threshold }

	default:
		return set, unknownOutlierMethod(params.Method)
	}

	for i, v := range values {
		if valid[i] && flagged(v) {
			set.Rows = append(set.Rows, i)
		}
	}
	set.Lower, set.Upper = domainStats.Some(lower), domainStats.Some(upper)

	e.logger.Debug("outliers in %q (%s): %d of %d", col.Name(), params.Method, len(set.Rows), len(data))
	return set, nil
}

// MaskOutliers returns a Float copy of col with the flagged rows replaced by Missing.
func (e *Engine) MaskOutliers(col *dataset.Column, set domainStats.OutlierSet) (*dataset.Column, error) {
	values, valid, err := numericInput("mask outliers", col)
	if err != nil {
		return nil, err
	}
	for _, row := range set.Rows {
		if row < 0 || row >= len(valid) {
			return nil, fmt.Errorf("%w: %d", core.ErrRowOutOfRange, row)
		}
		valid[row] = false
	}
	return floatColumn(col.Name(), values, valid)
}

func unknownOutlierMethod(m domainStats.OutlierMethod) error {
	return core.NewInvalidParameterError("method", fmt.Sprintf("unknown outlier method %q", m))
}

// zscore is |v - mean| / std; callers guarantee std > 0.
func zscore(v, mean, std float64) float64 {
	return math.Abs(v-mean) / std
}
