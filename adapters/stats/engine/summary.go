package engine

import (
	"math"
	"sort"

	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summarize computes descriptive statistics over the non-missing values of an Integer or
// Float column. Std is the sample standard deviation, 0 for a single value. Median and
// quartiles interpolate linearly between order statistics (type 7). Skewness and excess
// kurtosis are the biased moment ratios m3/m2^1.5 and m4/m2^2 - 3.
func (e *Engine) Summarize(col *dataset.Column) (domainStats.Summary, error) {
	if _, _, err := numericInput("summarize", col); err != nil {
		return domainStats.Summary{}, err
	}

	data := col.Numbers()
	summary := domainStats.Summary{
		Column:  col.Name(),
		Count:   len(data),
		Missing: col.MissingCount(),
	}
	if len(data) == 0 {
		return summary, nil
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}
	std := 0.0
	if len(data) > 1 {
		if std, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	}

	summary.Mean = domainStats.Some(mean)
	summary.Std = domainStats.Some(std)
	summary.Min = domainStats.Some(sorted[0])
	summary.Max = domainStats.Some(sorted[len(sorted)-1])
	summary.Median = domainStats.Some(quantile(sorted, 0.5))
	summary.Q1 = domainStats.Some(quantile(sorted, 0.25))
	summary.Q3 = domainStats.Some(quantile(sorted, 0.75))

	if len(data) >= 2 {
		summary.Range = domainStats.Some(sorted[len(sorted)-1] - sorted[0])
		summary.IQR = domainStats.Some(summary.Q3.Value - summary.Q1.Value)
	}
	// Some() maps the NaN of a constant column to Missing
	m2 := stat.Moment(2, data, nil)
	if len(data) >= 3 {
		summary.Skewness = domainStats.Some(stat.Moment(3, data, nil) / math.Pow(m2, 1.5))
	}
	if len(data) >= 4 {
		summary.Kurtosis = domainStats.Some(stat.Moment(4, data, nil)/(m2*m2) - 3)
	}

	e.logger.Trace("summarized %q: n=%d mean=%g std=%g", col.Name(), summary.Count, mean, std)
	return summary, nil
}

// quantile returns the type-7 quantile of ascending data: h = (n-1)p, interpolating
// between the order statistics at floor(h) and floor(h)+1.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
