package engine

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"labchart/domain/core"
	"labchart/domain/dataset"
	domainStats "labchart/domain/stats"
	"labchart/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatCol(t *testing.T, name string, values []float64, valid []bool) *dataset.Column {
	t.Helper()
	col, err := dataset.NewFloatColumn(name, values, valid)
	require.NoError(t, err)
	return col
}

func intCol(t *testing.T, name string, values ...int64) *dataset.Column {
	t.Helper()
	col, err := dataset.NewIntegerColumn(name, values, nil)
	require.NoError(t, err)
	return col
}

func textCol(t *testing.T, name string, values ...string) *dataset.Column {
	t.Helper()
	col, err := dataset.NewTextColumn(name, values, nil)
	require.NoError(t, err)
	return col
}

// assertSeries compares a column against expected values; nil entries are Missing.
func assertSeries(t *testing.T, want []*float64, col *dataset.Column) {
	t.Helper()
	require.Equal(t, len(want), col.Len())
	for i, w := range want {
		got, ok := col.Float(i)
		if w == nil {
			assert.False(t, ok, "row %d should be missing", i)
			continue
		}
		require.True(t, ok, "row %d should be present", i)
		assert.InDelta(t, *w, got, 1e-9, "row %d", i)
	}
}

func f(v float64) *float64 { return &v }

func TestDetectOutliers_IQRFlagsSpike(t *testing.T) {
	e := New(nil)
	set, err := e.DetectOutliers(intCol(t, "v", 1, 2, 3, 4, 100), domainStats.OutlierParams{Method: domainStats.OutlierIQR})
	require.NoError(t, err)

	assert.Equal(t, []int{4}, set.Rows)
	assert.Equal(t, -1.0, set.Lower.Value)
	assert.Equal(t, 7.0, set.Upper.Value)
	assert.True(t, set.Contains(4))
}

func TestConstantColumnIsDegenerateNotError(t *testing.T) {
	e := New(nil)
	col := intCol(t, "c", 2, 2, 2, 2)

	summary, err := e.Summarize(col)
	require.NoError(t, err)
	require.True(t, summary.Std.Valid)
	assert.Equal(t, 0.0, summary.Std.Value)
	assert.False(t, summary.Skewness.Valid)

	set, err := e.DetectOutliers(col, domainStats.OutlierParams{Method: domainStats.OutlierZScore})
	require.NoError(t, err)
	assert.Empty(t, set.Rows)

	norm, err := e.Transform(col, domainStats.TransformNormalize, domainStats.TransformParams{})
	require.NoError(t, err)
	assertSeries(t, []*float64{f(0), f(0), f(0), f(0)}, norm.Column)
}

func TestScaleLogDropsNonPositive(t *testing.T) {
	var buf bytes.Buffer
	e := New(internal.NewLoggerTo(&buf, internal.LogLevelWarn))

	scaled, err := e.Scale(floatCol(t, "v", []float64{-1, 0, 10}, nil), domainStats.LogSpec(0))
	require.NoError(t, err)

	assertSeries(t, []*float64{nil, nil, f(math.Log(10))}, scaled.Column)
	assert.Equal(t, dataset.KindFloat, scaled.Column.Kind())
	assert.Len(t, scaled.Warnings, 1)
	assert.Equal(t, 1, strings.Count(buf.String(), "[WARN]"))
}

func TestScaleLinear(t *testing.T) {
	e := New(nil)

	t.Run("maps observed range onto target", func(t *testing.T) {
		scaled, err := e.Scale(floatCol(t, "v", []float64{0, 5, 10, 0}, []bool{true, true, true, false}), domainStats.LinearSpec(-1, 1))
		require.NoError(t, err)
		assertSeries(t, []*float64{f(-1), f(0), f(1), nil}, scaled.Column)
	})

	t.Run("degenerate range gives target min", func(t *testing.T) {
		scaled, err := e.Scale(intCol(t, "v", 3, 3, 3), domainStats.LinearSpec(2, 4))
		require.NoError(t, err)
		assertSeries(t, []*float64{f(2), f(2), f(2)}, scaled.Column)
	})

	t.Run("pinned source range", func(t *testing.T) {
		spec := domainStats.UnitRangeSpec().WithSourceRange(0, 100)
		spec.OutputName = "pct"
		scaled, err := e.Scale(intCol(t, "v", 25, 50), spec)
		require.NoError(t, err)
		assert.Equal(t, "pct", scaled.Column.Name())
		assertSeries(t, []*float64{f(0.25), f(0.5)}, scaled.Column)
	})

	t.Run("datetime reads as unix seconds", func(t *testing.T) {
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		col, err := dataset.NewDateTimeColumn("at", []time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)}, nil)
		require.NoError(t, err)
		scaled, err := e.Scale(col, domainStats.UnitRangeSpec())
		require.NoError(t, err)
		assertSeries(t, []*float64{f(0), f(0.5), f(1)}, scaled.Column)
	})

	t.Run("identity and log base 10", func(t *testing.T) {
		scaled, err := e.Scale(intCol(t, "v", 1, 100), domainStats.IdentitySpec())
		require.NoError(t, err)
		assertSeries(t, []*float64{f(1), f(100)}, scaled.Column)

		scaled, err = e.Scale(intCol(t, "v", 1, 100), domainStats.LogSpec(10))
		require.NoError(t, err)
		assertSeries(t, []*float64{f(0), f(2)}, scaled.Column)
		assert.Empty(t, scaled.Warnings)
	})

	t.Run("text is rejected", func(t *testing.T) {
		_, err := e.Scale(textCol(t, "s", "a"), domainStats.UnitRangeSpec())
		assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)
	})
}

func TestSummarize(t *testing.T) {
	e := New(nil)

	col := floatCol(t, "v", []float64{1, 2, 3, 4, 0}, []bool{true, true, true, true, false})
	s, err := e.Summarize(col)
	require.NoError(t, err)

	assert.Equal(t, "v", s.Column)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.InDelta(t, 2.5, s.Mean.Value, 1e-12)
	assert.InDelta(t, 1.2909944487358056, s.Std.Value, 1e-12)
	assert.Equal(t, 1.0, s.Min.Value)
	assert.Equal(t, 4.0, s.Max.Value)
	assert.InDelta(t, 2.5, s.Median.Value, 1e-12)
	assert.InDelta(t, 1.75, s.Q1.Value, 1e-12)
	assert.InDelta(t, 3.25, s.Q3.Value, 1e-12)
	assert.InDelta(t, 3.0, s.Range.Value, 1e-12)
	assert.InDelta(t, 1.5, s.IQR.Value, 1e-12)
	assert.InDelta(t, 0.0, s.Skewness.Value, 1e-12)
	assert.InDelta(t, -1.36, s.Kurtosis.Value, 1e-9)
}

func TestSummarizeBiasedMoments(t *testing.T) {
	e := New(nil)

	s, err := e.Summarize(intCol(t, "v", 1, 2, 10))
	require.NoError(t, err)
	// m2 = 146/9, m3 = 1190/27
	assert.InDelta(t, (1190.0/27)/math.Pow(146.0/9, 1.5), s.Skewness.Value, 1e-12)
	assert.False(t, s.Kurtosis.Valid)
}

func TestSummarizeEdgeCases(t *testing.T) {
	e := New(nil)

	empty, err := e.Summarize(floatCol(t, "v", []float64{0, 0}, []bool{false, false}))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 2, empty.Missing)
	assert.False(t, empty.Mean.Valid)
	assert.False(t, empty.Median.Valid)

	single, err := e.Summarize(intCol(t, "v", 7))
	require.NoError(t, err)
	assert.Equal(t, 0.0, single.Std.Value)
	assert.Equal(t, 7.0, single.Q3.Value)
	assert.False(t, single.Range.Valid)

	odd, err := e.Summarize(intCol(t, "v", 5, 1, 4, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, odd.Median.Value)
	assert.Equal(t, 2.0, odd.Q1.Value)

	_, err = e.Summarize(textCol(t, "s", "a", "b"))
	assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)
}

func TestQuantileType7(t *testing.T) {
	assert.Equal(t, 12.5, quantile([]float64{10, 20}, 0.25))
	assert.Equal(t, 20.0, quantile([]float64{10, 20}, 1))
	assert.Equal(t, 10.0, quantile([]float64{10, 20}, 0))
}

func TestDetectOutliers_ZScore(t *testing.T) {
	e := New(nil)
	values := []int64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 50}
	set, err := e.DetectOutliers(intCol(t, "v", values...), domainStats.OutlierParams{Method: domainStats.OutlierZScore})
	require.NoError(t, err)
	assert.Equal(t, []int{11}, set.Rows)

	set, err = e.DetectOutliers(intCol(t, "v", values...), domainStats.OutlierParams{Method: domainStats.OutlierZScore, Threshold: 4})
	require.NoError(t, err)
	assert.Empty(t, set.Rows)

	_, err = e.DetectOutliers(intCol(t, "v", 1), domainStats.OutlierParams{Method: "mad"})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestDetectOutliers_ZScoreUsesPopulationStd(t *testing.T) {
	e := New(nil)

	// population std is sqrt(2), so both ends sit at |z| = 1.414; the sample std would give 1.265
	set, err := e.DetectOutliers(intCol(t, "v", 1, 2, 3, 4, 5), domainStats.OutlierParams{Method: domainStats.OutlierZScore, Threshold: 1.4})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, set.Rows)
	assert.InDelta(t, 3-1.4*math.Sqrt2, set.Lower.Value, 1e-12)
}

func TestMaskOutliers(t *testing.T) {
	e := New(nil)
	col := intCol(t, "v", 1, 2, 3, 4, 100)
	set, err := e.DetectOutliers(col, domainStats.OutlierParams{})
	require.NoError(t, err)

	masked, err := e.MaskOutliers(col, set)
	require.NoError(t, err)
	assertSeries(t, []*float64{f(1), f(2), f(3), f(4), nil}, masked)

	_, err = e.MaskOutliers(col, domainStats.OutlierSet{Rows: []int{9}})
	assert.ErrorIs(t, err, core.ErrRowOutOfRange)
}

func TestFilterRows(t *testing.T) {
	e := New(nil)
	nums := floatCol(t, "v", []float64{1, 0, 3, 0}, []bool{true, true, true, false})

	tests := []struct {
		name string
		pred domainStats.Predicate
		want []int
	}{
		{"greater", domainStats.Compare(domainStats.Greater, 0.5), []int{0, 2}},
		{"less equal", domainStats.Compare(domainStats.LessEqual, 1), []int{0, 1}},
		{"equal zero skips missing", domainStats.Compare(domainStats.Equal, 0), []int{1}},
		{"not equal skips missing", domainStats.Compare(domainStats.NotEqual, 0), []int{0, 2}},
		{"between inclusive", domainStats.InRange(1, 3), []int{0, 2}},
		{"is missing", domainStats.Missingness(true), []int{3}},
		{"not missing", domainStats.Missingness(false), []int{0, 1, 2}},
		{"one of", domainStats.OneOf(dataset.IntegerValue(3), dataset.FloatValue(1)), []int{0, 2}},
		{"nothing matches", domainStats.Compare(domainStats.Greater, 10), []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := e.FilterRows(nums, tt.pred)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestFilterRowsByKind(t *testing.T) {
	e := New(nil)

	names := textCol(t, "sample", "alpha-1", "beta-2", "alpha-3")
	rows, err := e.FilterRows(names, domainStats.Match(domainStats.StartsWith, "alpha"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rows)

	rows, err = e.FilterRows(names, domainStats.Match(domainStats.Contains, "-2"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rows)

	_, err = e.FilterRows(names, domainStats.Compare(domainStats.Less, 1))
	assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)

	_, err = e.FilterRows(intCol(t, "v", 1), domainStats.Match(domainStats.Contains, "1"))
	assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)

	flags, err := dataset.NewBooleanColumn("ok", []bool{true, false, true}, nil)
	require.NoError(t, err)
	rows, err = e.FilterRows(flags, domainStats.CompareValue(domainStats.Equal, dataset.BooleanValue(true)))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rows)
	_, err = e.FilterRows(flags, domainStats.Compare(domainStats.Greater, 0))
	assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	times, err := dataset.NewDateTimeColumn("at", []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}, nil)
	require.NoError(t, err)
	rows, err = e.FilterRows(times, domainStats.CompareValue(domainStats.Greater, dataset.DateTimeValue(base.Add(30*time.Minute))))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rows)
}

func TestFilterDatasetReturnsNewDataset(t *testing.T) {
	e := New(nil)
	ds, err := dataset.New(intCol(t, "t", 0, 1, 2, 3), floatCol(t, "v", []float64{5, 50, 6, 60}, nil))
	require.NoError(t, err)

	out, err := e.FilterDataset(ds, "v", domainStats.Compare(domainStats.Less, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, 4, ds.NumRows())

	tcol, _ := out.Column("t")
	assertSeries(t, []*float64{f(0), f(2)}, tcol)

	_, err = e.FilterDataset(ds, "nope", domainStats.Compare(domainStats.Less, 10))
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestSmoothMovingAverage(t *testing.T) {
	e := New(nil)

	t.Run("window one is identity", func(t *testing.T) {
		col := floatCol(t, "v", []float64{1.5, 0, -2, 7}, []bool{true, false, true, true})
		out, err := e.Smooth(col, domainStats.SmoothingParams{Window: 1})
		require.NoError(t, err)
		assertSeries(t, []*float64{f(1.5), nil, f(-2), f(7)}, out.Column)
	})

	t.Run("edges shrink", func(t *testing.T) {
		out, err := e.Smooth(intCol(t, "v", 1, 2, 3, 4, 5), domainStats.SmoothingParams{Window: 3})
		require.NoError(t, err)
		assertSeries(t, []*float64{f(1.5), f(2), f(3), f(4), f(4.5)}, out.Column)
	})

	t.Run("missing excluded from window", func(t *testing.T) {
		col := floatCol(t, "v", []float64{1, 0, 3, 0, 0, 0}, []bool{true, false, true, false, false, false})
		out, err := e.Smooth(col, domainStats.SmoothingParams{Window: 3})
		require.NoError(t, err)
		assertSeries(t, []*float64{f(1), f(2), f(3), f(3), nil, nil}, out.Column)
	})

	t.Run("default window", func(t *testing.T) {
		out, err := e.Smooth(intCol(t, "v", 1, 2, 3, 4, 5), domainStats.SmoothingParams{})
		require.NoError(t, err)
		assert.Equal(t, 5, out.Params.Window)
		v, _ := out.Column.Float(2)
		assert.InDelta(t, 3.0, v, 1e-12)
	})

	t.Run("even and negative windows rejected", func(t *testing.T) {
		_, err := e.Smooth(intCol(t, "v", 1, 2), domainStats.SmoothingParams{Window: 4})
		assert.ErrorIs(t, err, core.ErrInvalidWindowSize)
		_, err = e.Smooth(intCol(t, "v", 1, 2), domainStats.SmoothingParams{Window: -3})
		assert.ErrorIs(t, err, core.ErrInvalidWindowSize)
	})
}

func TestSmoothGaussian(t *testing.T) {
	e := New(nil)

	out, err := e.Smooth(intCol(t, "v", 4, 4, 4, 4, 4), domainStats.SmoothingParams{Method: domainStats.SmoothGaussian, Sigma: 1})
	require.NoError(t, err)
	assertSeries(t, []*float64{f(4), f(4), f(4), f(4), f(4)}, out.Column)

	out, err = e.Smooth(intCol(t, "v", 0, 0, 10, 0, 0), domainStats.SmoothingParams{Method: domainStats.SmoothGaussian, Sigma: 1})
	require.NoError(t, err)
	mid, _ := out.Column.Float(2)
	side, _ := out.Column.Float(1)
	assert.Less(t, mid, 10.0)
	assert.Greater(t, mid, side)
	assert.Greater(t, side, 0.0)

	_, err = e.Smooth(intCol(t, "v", 1), domainStats.SmoothingParams{Method: domainStats.SmoothGaussian})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestSmoothGaussianHugeSigma(t *testing.T) {
	e := New(nil)

	for _, sigma := range []float64{1e9, 1e18} {
		out, err := e.Smooth(intCol(t, "v", 1, 2, 3), domainStats.SmoothingParams{Method: domainStats.SmoothGaussian, Sigma: sigma})
		require.NoError(t, err, sigma)
		assertSeries(t, []*float64{f(2), f(2), f(2)}, out.Column)
	}

	out, err := e.Smooth(floatCol(t, "v", nil, nil), domainStats.SmoothingParams{Method: domainStats.SmoothGaussian, Sigma: 1e18})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Column.Len())
}

func TestSmoothSavitzkyGolay(t *testing.T) {
	e := New(nil)
	cubic := func(x float64) float64 { return x*x*x - 2*x*x + 1 }

	t.Run("reproduces a cubic including edges", func(t *testing.T) {
		values := make([]float64, 10)
		want := make([]*float64, 10)
		for i := range values {
			values[i] = cubic(float64(i))
			want[i] = f(values[i])
		}
		out, err := e.Smooth(floatCol(t, "v", values, nil), domainStats.SmoothingParams{Method: domainStats.SmoothSavitzkyGolay, Window: 5})
		require.NoError(t, err)
		assert.Equal(t, "v", out.Column.Name())
		for i, w := range want {
			got, ok := out.Column.Float(i)
			require.True(t, ok)
			assert.InDelta(t, *w, got, 1e-6, "row %d", i)
		}
	})

	t.Run("even window rounds up", func(t *testing.T) {
		out, err := e.Smooth(intCol(t, "v", 1, 2, 3, 4, 5, 6, 7), domainStats.SmoothingParams{Method: domainStats.SmoothSavitzkyGolay, Window: 4})
		require.NoError(t, err)
		assert.Equal(t, 5, out.Params.Window)
		v, _ := out.Column.Float(3)
		assert.InDelta(t, 4.0, v, 1e-9)
	})

	t.Run("quadratic window smooths a spike", func(t *testing.T) {
		// window 3 fits a quadratic through every 3 points, so it reproduces them
		out, err := e.Smooth(intCol(t, "v", 0, 0, 9, 0, 0), domainStats.SmoothingParams{Method: domainStats.SmoothSavitzkyGolay, Window: 3})
		require.NoError(t, err)
		assertSeries(t, []*float64{f(0), f(0), f(9), f(0), f(0)}, out.Column)

		out, err = e.Smooth(intCol(t, "v", 0, 0, 0, 9, 0, 0, 0), domainStats.SmoothingParams{Method: domainStats.SmoothSavitzkyGolay, Window: 5})
		require.NoError(t, err)
		mid, _ := out.Column.Float(3)
		assert.Less(t, mid, 9.0)
		assert.Greater(t, mid, 0.0)
	})

	t.Run("missing rows stay missing", func(t *testing.T) {
		col := floatCol(t, "v", []float64{1, 2, 0, 3, 4, 5, 6, 7}, []bool{true, true, false, true, true, true, true, true})
		out, err := e.Smooth(col, domainStats.SmoothingParams{Method: domainStats.SmoothSavitzkyGolay, Window: 3})
		require.NoError(t, err)
		assert.True(t, out.Column.IsMissing(2))
		assert.Equal(t, 7, out.Column.Len()-out.Column.MissingCount())
	})

	t.Run("too few values", func(t *testing.T) {
		_, err := e.Smooth(intCol(t, "v", 1, 2, 3, 4, 5), domainStats.SmoothingParams{Method: domainStats.SmoothSavitzkyGolay, Window: 5})
		assert.ErrorIs(t, err, core.ErrInvalidParameter)
		_, err = e.Smooth(intCol(t, "v", 1, 2, 3), domainStats.SmoothingParams{Method: domainStats.SmoothSavitzkyGolay, Window: -1})
		assert.ErrorIs(t, err, core.ErrInvalidWindowSize)
	})
}

func TestCorrelate(t *testing.T) {
	e := New(nil)
	x := intCol(t, "x", 1, 2, 3, 4)
	y := intCol(t, "y", 2, 4, 6, 8)
	z := intCol(t, "z", 4, 3, 2, 1)
	c := intCol(t, "c", 5, 5, 5, 5)
	w := floatCol(t, "w", []float64{1, 0, 2, 4}, []bool{true, false, true, true})

	m, err := e.Correlate([]*dataset.Column{x, y, z, c, w}, "")
	require.NoError(t, err)

	get := func(a, b string) domainStats.Optional {
		v, err := m.At(a, b)
		require.NoError(t, err)
		return v
	}

	assert.InDelta(t, 1.0, get("x", "y").Value, 1e-12)
	assert.InDelta(t, -1.0, get("x", "z").Value, 1e-12)
	assert.Equal(t, 1.0, get("x", "x").Value)
	assert.False(t, get("c", "c").Valid)
	assert.False(t, get("x", "c").Valid)
	assert.True(t, get("x", "w").Valid)
	assert.Equal(t, 3, m.Observations[0][4])

	for i := range m.Columns {
		for j := range m.Columns {
			assert.Equal(t, m.Coefficients[i][j], m.Coefficients[j][i])
		}
	}

	_, err = e.Correlate([]*dataset.Column{x, textCol(t, "s", "a", "b", "c", "d")}, domainStats.CorrelationPearson)
	assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)
}

func TestCorrelateTooFewObservations(t *testing.T) {
	e := New(nil)
	a := floatCol(t, "a", []float64{1, 2, 0}, []bool{true, true, false})
	b := floatCol(t, "b", []float64{0, 5, 6}, []bool{false, true, true})

	m, err := e.Correlate([]*dataset.Column{a, b}, domainStats.CorrelationSpearman)
	require.NoError(t, err)
	v, _ := m.At("a", "b")
	assert.False(t, v.Valid)
	assert.Equal(t, 1, m.Observations[0][1])
}

func TestCorrelateRankMethods(t *testing.T) {
	e := New(nil)
	x := intCol(t, "x", 1, 2, 3, 4, 5, 6)
	cube := intCol(t, "cube", 1, 8, 27, 64, 125, 216)
	rev := floatCol(t, "rev", []float64{9, 0, 4, 2, 1, 0.5}, []bool{true, false, true, true, true, true})
	tied := intCol(t, "tied", 1, 1, 2, 2, 3, 3)

	for _, method := range []domainStats.CorrelationMethod{domainStats.CorrelationSpearman, domainStats.CorrelationKendall} {
		t.Run(string(method), func(t *testing.T) {
			m, err := e.Correlate([]*dataset.Column{x, cube, rev, tied}, method)
			require.NoError(t, err)
			assert.Equal(t, method, m.Method)

			r, _ := m.At("x", "cube")
			assert.InDelta(t, 1.0, r.Value, 1e-12)
			r, _ = m.At("x", "rev")
			assert.InDelta(t, -1.0, r.Value, 1e-12)
			r, _ = m.At("tied", "tied")
			assert.Equal(t, 1.0, r.Value)

			for i := range m.Columns {
				for j := range m.Columns {
					assert.Equal(t, m.Coefficients[i][j], m.Coefficients[j][i])
				}
			}
		})
	}

	pearson, err := e.Correlate([]*dataset.Column{x, cube}, domainStats.CorrelationPearson)
	require.NoError(t, err)
	r, _ := pearson.At("x", "cube")
	assert.Less(t, r.Value, 0.99)

	// tau-b: 12 concordant, 0 discordant, 3 pairs tied in y out of 15
	kendall, err := e.Correlate([]*dataset.Column{x, tied}, domainStats.CorrelationKendall)
	require.NoError(t, err)
	r, _ = kendall.At("x", "tied")
	assert.InDelta(t, 12/math.Sqrt(15*12), r.Value, 1e-12)

	_, err = e.Correlate([]*dataset.Column{x, cube}, "distance")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestRanksAverageTies(t *testing.T) {
	assert.Equal(t, []float64{3, 1.5, 4, 1.5}, ranks([]float64{5, 2, 7, 2}))
}

func TestTransformDifferenceCumsumRoundTrip(t *testing.T) {
	e := New(nil)
	original := []float64{3, 5, 4, 10, 7}
	col := floatCol(t, "v", original, nil)

	diff, err := e.Transform(col, domainStats.TransformDifference, domainStats.TransformParams{})
	require.NoError(t, err)
	assert.True(t, diff.Column.IsMissing(0))

	sum, err := e.Transform(diff.Column, domainStats.TransformCumulativeSum, domainStats.TransformParams{})
	require.NoError(t, err)
	for i := 1; i < len(original); i++ {
		v, ok := sum.Column.Float(i)
		require.True(t, ok)
		assert.InDelta(t, original[i], original[0]+v, 1e-12)
	}
}

func TestTransforms(t *testing.T) {
	e := New(nil)

	cum, err := e.Transform(floatCol(t, "v", []float64{1, 0, 2, 3}, []bool{true, false, true, true}), domainStats.TransformCumulativeSum, domainStats.TransformParams{})
	require.NoError(t, err)
	assertSeries(t, []*float64{f(1), nil, f(3), f(6)}, cum.Column)

	diff, err := e.Transform(floatCol(t, "v", []float64{1, 0, 2, 5}, []bool{true, false, true, true}), domainStats.TransformDifference, domainStats.TransformParams{})
	require.NoError(t, err)
	assertSeries(t, []*float64{nil, nil, nil, f(3)}, diff.Column)

	norm, err := e.Transform(intCol(t, "v", 1, 2, 3), domainStats.TransformNormalize, domainStats.TransformParams{})
	require.NoError(t, err)
	assertSeries(t, []*float64{f(-1), f(0), f(1)}, norm.Column)

	logged, err := e.Transform(intCol(t, "v", 100, -5), domainStats.TransformLog, domainStats.TransformParams{Base: 10})
	require.NoError(t, err)
	assertSeries(t, []*float64{f(2), nil}, logged.Column)
	assert.Len(t, logged.Warnings, 1)

	_, err = e.Transform(intCol(t, "v", 1), "fft", domainStats.TransformParams{})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	_, err = e.Transform(textCol(t, "s", "a"), domainStats.TransformDifference, domainStats.TransformParams{})
	assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)
}

func TestDerive(t *testing.T) {
	e := New(nil)
	a := floatCol(t, "a", []float64{1, 2, 0, 6}, []bool{true, true, false, true})
	b := intCol(t, "b", 10, 0, 30, 3)

	sum, err := e.Derive("a+b", domainStats.DeriveAdd, a, b)
	require.NoError(t, err)
	assert.Equal(t, "a+b", sum.Name())
	assertSeries(t, []*float64{f(11), f(2), nil, f(9)}, sum)

	ratio, err := e.Derive("a/b", domainStats.DeriveDivide, a, b)
	require.NoError(t, err)
	assertSeries(t, []*float64{f(0.1), nil, nil, f(2)}, ratio)

	diff, err := e.Derive("b-a-a", domainStats.DeriveSubtract, b, a, a)
	require.NoError(t, err)
	assertSeries(t, []*float64{f(8), f(-4), nil, f(-9)}, diff)

	_, err = e.Derive("x", domainStats.DeriveAdd, a)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	_, err = e.Derive("x", domainStats.DeriveAdd, a, intCol(t, "short", 1))
	assert.ErrorIs(t, err, core.ErrRaggedColumns)
	_, err = e.Derive("x", domainStats.DeriveMultiply, a, textCol(t, "s", "a", "b", "c", "d"))
	assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)
}
