package engine

import (
	"fmt"
	"math"

	"labchart/domain/core"
	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Smooth produces a row-aligned smoothed copy of a numeric column.
//
// The moving average takes an odd window W (0 means the default of 5) centred on each row;
// near the ends the window shrinks to the rows that exist. The Gaussian kernel weights
// neighbours by N(0, sigma) out to 4 sigma. Both methods skip Missing neighbours and
// renormalise; a row whose whole window is Missing stays Missing.
//
// Savitzky-Golay fits a polynomial of order min(3, W-1) over the present values and rounds
// an even W up to the next odd width. Missing rows stay Missing.
func (e *Engine) Smooth(col *dataset.Column, params domainStats.SmoothingParams) (domainStats.SmoothedSeries, error) {
	values, valid, err := numericInput("smooth", col)
	if err != nil {
		return domainStats.SmoothedSeries{}, err
	}
	if params.Method == "" {
		params.Method = domainStats.SmoothMovingAverage
	}
	n := len(values)

	var radius int
	var weight func(offset int) float64
	switch params.Method {
	case domainStats.SmoothMovingAverage:
		if params.Window == 0 {
			params.Window = domainStats.DefaultSmoothingWidth
		}
		if params.Window < 1 || params.Window%2 == 0 {
			return domainStats.SmoothedSeries{}, core.NewInvalidWindowSizeError(params.Window)
		}
		radius = params.Window / 2
		weight = func(int) float64 { return 1 }

	case domainStats.SmoothGaussian:
		if !(params.Sigma > 0) || math.IsInf(params.Sigma, 0) {
			return domainStats.SmoothedSeries{}, core.NewInvalidParameterError("sigma", fmt.Sprintf("%g must be a positive number", params.Sigma))
		}
		// beyond n-1 every row already sees the whole column
		if 4*params.Sigma >= float64(n) {
			radius = max(n-1, 0)
		} else {
			radius = int(math.Ceil(4 * params.Sigma))
		}
		kernel := distuv.Normal{Mu: 0, Sigma: params.Sigma}
		weights := make([]float64, radius+1)
		for k := range weights {
			weights[k] = kernel.Prob(float64(k))
		}
		weight = func(offset int) float64 {
			if offset < 0 {
				offset = -offset
			}
			return weights[offset]
		}

	case domainStats.SmoothSavitzkyGolay:
		if params.Window == 0 {
			params.Window = domainStats.DefaultSmoothingWidth
		}
		if params.Window < 1 {
			return domainStats.SmoothedSeries{}, core.NewInvalidWindowSizeError(params.Window)
		}
		order := min(3, params.Window-1)
		params.Window |= 1
		out, mask, err := savitzkyGolay(values, valid, params.Window, order)
		if err != nil {
			return domainStats.SmoothedSeries{}, err
		}
		return smoothedSeries(col.Name(), params, out, mask)

	default:
		return domainStats.SmoothedSeries{}, core.NewInvalidParameterError("method", fmt.Sprintf("unknown smoothing method %q", params.Method))
	}

	out := make([]float64, n)
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		lo, hi := max(0, i-radius), min(n-1, i+radius)
		var sum, total float64
		for j := lo; j <= hi; j++ {
			if !valid[j] {
				continue
			}
			w := weight(j - i)
			sum += w * values[j]
			total += w
		}
		if total > 0 {
			out[i] = sum / total
			mask[i] = true
		}
	}

	return smoothedSeries(col.Name(), params, out, mask)
}

func smoothedSeries(name string, params domainStats.SmoothingParams, out []float64, mask []bool) (domainStats.SmoothedSeries, error) {
	smoothed, err := floatColumn(name, out, mask)
	if err != nil {
		return domainStats.SmoothedSeries{}, err
	}
	return domainStats.SmoothedSeries{Params: params, Column: smoothed}, nil
}

// savitzkyGolay runs the filter over the present values in row order. Each value takes the
// least-squares polynomial of its centred window; the first and last half-window use the
// fit of the first and last full window.
func savitzkyGolay(values []float64, valid []bool, window, order int) ([]float64, []bool, error) {
	present := make([]int, 0, len(values))
	for i, ok := range valid {
		if ok {
			present = append(present, i)
		}
	}
	m := len(present)
	if m <= window {
		return nil, nil, core.NewInvalidParameterError("window", fmt.Sprintf("savgol window %d needs more than %d present values, got %d", window, window, m))
	}

	hat, err := savgolProjection(window, order)
	if err != nil {
		return nil, nil, err
	}

	half := window / 2
	out := make([]float64, len(values))
	mask := make([]bool, len(values))
	for k := 0; k < m; k++ {
		start := min(max(0, k-half), m-window)
		var sum float64
		for r := 0; r < window; r++ {
			sum += hat.At(k-start, r) * values[present[start+r]]
		}
		out[present[k]] = sum
		mask[present[k]] = true
	}
	return out, mask, nil
}

// savgolProjection returns the window x window matrix mapping samples to the fitted
// polynomial evaluated at each position of the window.
func savgolProjection(window, order int) (*mat.Dense, error) {
	half := window / 2
	design := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x, p := float64(i-half), 1.0
		for j := 0; j <= order; j++ {
			design.Set(i, j, p)
			p *= x
		}
	}

	ones := make([]float64, window)
	for i := range ones {
		ones[i] = 1
	}
	var coef mat.Dense
	if err := coef.Solve(design, mat.NewDiagDense(window, ones)); err != nil {
		return nil, fmt.Errorf("savgol coefficients: %w", err)
	}
	var hat mat.Dense
	hat.Mul(design, &coef)
	return &hat, nil
}
