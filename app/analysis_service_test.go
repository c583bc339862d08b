package app

import (
	"context"
	"strings"
	"testing"

	"labchart/adapters/ingest"
	"labchart/adapters/stats/engine"
	"labchart/domain/core"
	"labchart/domain/dataset"
	"labchart/domain/stats"
	"labchart/internal/config"
	"labchart/internal/testkit"
	"labchart/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Time,Temp,Pressure,Label
0,20.1,101.2,a
1,20.3,101.0,b
2,20.2,NA,c
3,20.6,100.7,d
4,35.0,100.1,e
`

func newTestService(workers int) *AnalysisService {
	return NewAnalysisService(
		ingest.NewLoader(ingest.DefaultLoaderConfig(), nil),
		engine.New(nil),
		config.AnalysisConfig{IQRMultiplier: 1.5, ZScoreThreshold: 3, SmoothingWindow: 5, Workers: workers},
		nil,
	)
}

func TestAnalyzeNumericColumns(t *testing.T) {
	svc := newTestService(2)
	ctx := context.Background()

	ds, err := svc.Load(ctx, strings.NewReader(sampleCSV), ingest.LoadOptions{})
	require.NoError(t, err)

	report, err := svc.Analyze(ctx, ds, ReportRequest{TopN: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID.String())
	assert.Equal(t, 5, report.Rows)
	assert.Len(t, report.Columns, 4)
	require.Len(t, report.Summaries, 3)
	assert.Equal(t, "Time", report.Summaries[0].Column)
	assert.Equal(t, "Pressure", report.Summaries[2].Column)
	assert.Equal(t, 4, report.Summaries[2].Count)
	assert.Equal(t, 1, report.Summaries[2].Missing)

	require.Len(t, report.Outliers, 3)
	assert.Equal(t, []int{4}, report.Outliers[1].Rows)

	require.NotNil(t, report.Correlation)
	assert.Equal(t, []string{"Time", "Temp", "Pressure"}, report.Correlation.Columns)
	assert.Len(t, report.TopPartners["Temp"], 1)
}

func TestAnalyzeSelectedColumns(t *testing.T) {
	svc := newTestService(1)
	ctx := context.Background()
	ds, err := svc.Load(ctx, strings.NewReader(sampleCSV), ingest.LoadOptions{})
	require.NoError(t, err)

	report, err := svc.Analyze(ctx, ds, ReportRequest{Columns: []string{"Temp"}})
	require.NoError(t, err)
	assert.Len(t, report.Summaries, 1)
	assert.Nil(t, report.Correlation)

	_, err = svc.Analyze(ctx, ds, ReportRequest{Columns: []string{"Label"}})
	assert.ErrorIs(t, err, core.ErrUnsupportedColumnKind)

	_, err = svc.Analyze(ctx, ds, ReportRequest{Columns: []string{"Missing"}})
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestAnalyzeHonoursCancellation(t *testing.T) {
	svc := newTestService(1)
	ds, err := svc.Load(context.Background(), strings.NewReader(sampleCSV), ingest.LoadOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Analyze(ctx, ds, ReportRequest{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.Load(ctx, strings.NewReader(sampleCSV), ingest.LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultsComeFromConfig(t *testing.T) {
	svc := NewAnalysisService(nil, engine.New(nil), config.AnalysisConfig{IQRMultiplier: 3, ZScoreThreshold: 2, SmoothingWindow: 7, Workers: 1}, nil)

	p := svc.OutlierDefaults(stats.OutlierParams{})
	assert.Equal(t, stats.OutlierIQR, p.Method)
	assert.Equal(t, 3.0, p.K)
	assert.Equal(t, 2.0, p.Threshold)

	assert.Equal(t, 7, svc.SmoothingDefaults(stats.SmoothingParams{}).Window)
	assert.Equal(t, 0, svc.SmoothingDefaults(stats.SmoothingParams{Method: stats.SmoothGaussian, Sigma: 1}).Window)
}

// failingEngine fails Summarize for one column and delegates everything else.
type failingEngine struct {
	ports.ColumnEngine
	column string
}

func (f failingEngine) Summarize(col *dataset.Column) (stats.Summary, error) {
	if col.Name() == f.column {
		return stats.Summary{}, core.NewInvalidParameterError("column", "boom")
	}
	return f.ColumnEngine.Summarize(col)
}

func TestAnalyzePropagatesColumnErrors(t *testing.T) {
	svc := NewAnalysisService(
		ingest.NewLoader(ingest.DefaultLoaderConfig(), nil),
		failingEngine{ColumnEngine: engine.New(nil), column: "Pressure"},
		config.AnalysisConfig{Workers: 3},
		nil,
	)
	ctx := context.Background()
	ds, err := svc.Load(ctx, strings.NewReader(sampleCSV), ingest.LoadOptions{})
	require.NoError(t, err)

	_, err = svc.Analyze(ctx, ds, ReportRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Contains(t, err.Error(), `"Pressure"`)
}

func TestAnalyzeGeneratedRun(t *testing.T) {
	run := testkit.NewRunGenerator(testkit.DefaultRunConfig()).Generate()
	svc := newTestService(4)
	ctx := context.Background()

	ds, err := svc.Load(ctx, strings.NewReader(run.CSV(true)), ingest.LoadOptions{})
	require.NoError(t, err)

	report, err := svc.Analyze(ctx, ds, ReportRequest{Columns: []string{"Temp", "Pressure", "Counts"}, TopN: 1})
	require.NoError(t, err)

	assert.Equal(t, run.Spikes, report.Outliers[0].Rows)
	assert.Equal(t, len(run.Missing), report.Summaries[1].Missing)

	r, err := report.Correlation.At("Temp", "Pressure")
	require.NoError(t, err)
	require.True(t, r.Valid)
	assert.Less(t, r.Value, -0.9)
	assert.Equal(t, "Pressure", report.TopPartners["Temp"][0].Column)
}
