package engine

import (
	"fmt"
	"math"
	"sort"

	"labchart/domain/core"
	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Correlate computes the correlation matrix of numeric columns using pairwise-complete
// observations: each pair uses only the rows where both are present. Spearman ranks those
// rows (ties get their average rank) before taking Pearson's r; Kendall is tau-b.
// A pair with fewer than two such rows, or where either side is constant over them, is
// Missing. The matrix is symmetric and the diagonal is exactly 1 for non-constant columns.
func (e *Engine) Correlate(cols []*dataset.Column, method domainStats.CorrelationMethod) (domainStats.CorrelationMatrix, error) {
	if method == "" {
		method = domainStats.CorrelationPearson
	}
	var coefficient func(xs, ys []float64) float64
	switch method {
	case domainStats.CorrelationPearson:
		coefficient = func(xs, ys []float64) float64 { return stat.Correlation(xs, ys, nil) }
	case domainStats.CorrelationSpearman:
		coefficient = func(xs, ys []float64) float64 { return stat.Correlation(ranks(xs), ranks(ys), nil) }
	case domainStats.CorrelationKendall:
		coefficient = kendallTauB
	default:
		return domainStats.CorrelationMatrix{}, core.NewInvalidParameterError("method", fmt.Sprintf("unknown correlation method %q", method))
	}

	n := len(cols)
	values := make([][]float64, n)
	valid := make([][]bool, n)
	names := make([]string, n)
	seen := make(map[string]bool, n)
	for i, col := range cols {
		var err error
		if values[i], valid[i], err = numericInput("correlate", col); err != nil {
			return domainStats.CorrelationMatrix{}, err
		}
		if seen[col.Name()] {
			return domainStats.CorrelationMatrix{}, core.NewInvalidParameterError("columns", "column "+col.Name()+" listed twice")
		}
		seen[col.Name()] = true
		names[i] = col.Name()
		if len(values[i]) != len(values[0]) {
			return domainStats.CorrelationMatrix{}, fmt.Errorf("%w: %q has %d rows, expected %d", core.ErrRaggedColumns, col.Name(), len(values[i]), len(values[0]))
		}
	}

	m := domainStats.CorrelationMatrix{
		Method:       method,
		Columns:      names,
		Coefficients: make([][]domainStats.Optional, n),
		Observations: make([][]int, n),
	}
	for i := range m.Coefficients {
		m.Coefficients[i] = make([]domainStats.Optional, n)
		m.Observations[i] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r, obs := pairwise(values[i], valid[i], values[j], valid[j], i == j, coefficient)
			m.Coefficients[i][j], m.Coefficients[j][i] = r, r
			m.Observations[i][j], m.Observations[j][i] = obs, obs
		}
	}

	e.logger.Debug("correlated %d columns (%s)", n, method)
	return m, nil
}

// pairwise correlates the rows where both series are present.
func pairwise(x []float64, xValid []bool, y []float64, yValid []bool, self bool, coefficient func(xs, ys []float64) float64) (domainStats.Optional, int) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if xValid[i] && yValid[i] {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	obs := len(xs)
	if obs < 2 {
		return domainStats.None(), obs
	}
	if constant(xs) || constant(ys) {
		return domainStats.None(), obs
	}
	if self {
		return domainStats.Some(1), obs
	}
	r := coefficient(xs, ys)
	return domainStats.Some(math.Max(-1, math.Min(1, r))), obs
}

// ranks converts values to 1-based ranks, giving tied values their average rank.
func ranks(data []float64) []float64 {
	n := len(data)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return data[order[a]] < data[order[b]]
	})

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && data[order[j]] == data[order[i]] {
			j++
		}
		avg := float64(i+1) + float64(j-i-1)/2
		for k := i; k < j; k++ {
			out[order[k]] = avg
		}
		i = j
	}
	return out
}

// kendallTauB counts concordant and discordant pairs and corrects the denominator for
// pairs tied in either series. Callers rule out constant inputs.
func kendallTauB(xs, ys []float64) float64 {
	var concordant, discordant, tiedX, tiedY, pairs float64
	for i := 0; i < len(xs); i++ {
		for j := i + 1; j < len(xs); j++ {
			pairs++
			dx, dy := sign(xs[j]-xs[i]), sign(ys[j]-ys[i])
			if dx == 0 {
				tiedX++
			}
			if dy == 0 {
				tiedY++
			}
			switch dx * dy {
			case 1:
				concordant++
			case -1:
				discordant++
			}
		}
	}
	return (concordant - discordant) / math.Sqrt((pairs-tiedX)*(pairs-tiedY))
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func constant(xs []float64) bool {
	return floats.Min(xs) == floats.Max(xs)
}
