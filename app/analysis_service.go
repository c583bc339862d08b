package app

import (
	"context"
	"fmt"
	"io"

	"labchart/adapters/ingest"
	"labchart/domain/core"
	"labchart/domain/dataset"
	"labchart/domain/stats"
	"labchart/internal"
	"labchart/internal/config"
	"labchart/ports"

	"golang.org/x/sync/errgroup"
)

// AnalysisService loads datasets and runs the column analyses with configured defaults
type AnalysisService struct {
	loader   ports.DatasetLoader
	engine   ports.ColumnEngine
	analysis config.AnalysisConfig
	logger   *internal.Logger
}

// ReportRequest selects what Analyze computes. Empty Columns means every numeric column.
type ReportRequest struct {
	Columns  []string
	Outliers stats.OutlierParams
	// Correlation defaults to Pearson.
	Correlation stats.CorrelationMethod
	// TopN is how many partners to list per column; 0 skips the ranking.
	TopN int
}

// Report is the outcome of one Analyze call. It holds copies only, nothing refers back
// to the Dataset.
type Report struct {
	ID          core.ReportID              `json:"id"`
	CreatedAt   core.Timestamp             `json:"created_at"`
	Rows        int                        `json:"rows"`
	Columns     []dataset.ColumnInfo       `json:"columns"`
	Summaries   []stats.Summary            `json:"summaries"`
	Outliers    []stats.OutlierSet         `json:"outliers"`
	Correlation *stats.CorrelationMatrix   `json:"correlation,omitempty"`
	TopPartners map[string][]stats.Partner `json:"top_partners,omitempty"`
	RuntimeMs   int64                      `json:"runtime_ms"`
}

// NewAnalysisService creates the service. analysis supplies the default outlier and
// smoothing parameters and the worker count.
func NewAnalysisService(loader ports.DatasetLoader, eng ports.ColumnEngine, analysis config.AnalysisConfig, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.Discard()
	}
	if analysis.Workers < 1 {
		analysis.Workers = 1
	}
	return &AnalysisService{
		loader:   loader,
		engine:   eng,
		analysis: analysis,
		logger:   logger.With("analysis"),
	}
}

// Engine exposes the underlying engine for single operations.
func (s *AnalysisService) Engine() ports.ColumnEngine {
	return s.engine
}

// Load reads a delimited text stream into a Dataset.
func (s *AnalysisService) Load(ctx context.Context, r io.Reader, opts ingest.LoadOptions) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.loader.Load(r, opts)
}

// LoadSheet reads an .xlsx worksheet into a Dataset.
func (s *AnalysisService) LoadSheet(ctx context.Context, r io.Reader, opts ingest.SheetOptions) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.loader.LoadSheet(r, opts)
}

// OutlierDefaults fills unset outlier parameters from configuration.
func (s *AnalysisService) OutlierDefaults(p stats.OutlierParams) stats.OutlierParams {
	if p.K == 0 {
		p.K = s.analysis.IQRMultiplier
	}
	if p.Threshold == 0 {
		p.Threshold = s.analysis.ZScoreThreshold
	}
	return p.WithDefaults()
}

// SmoothingDefaults fills an unset moving-average window from configuration.
func (s *AnalysisService) SmoothingDefaults(p stats.SmoothingParams) stats.SmoothingParams {
	if p.Window == 0 && p.Method != stats.SmoothGaussian {
		p.Window = s.analysis.SmoothingWindow
	}
	return p
}

// Analyze summarizes and scans each selected column for outliers, one column per task
// on a bounded errgroup, then correlates the selection. Cancelling ctx stops queued
// columns; columns already running finish.
func (s *AnalysisService) Analyze(ctx context.Context, ds *dataset.Dataset, req ReportRequest) (*Report, error) {
	start := core.Now()

	cols, err := s.selectColumns(ds, req.Columns)
	if err != nil {
		return nil, err
	}
	outlierParams := s.OutlierDefaults(req.Outliers)

	report := &Report{
		ID:        core.NewReportID(),
		CreatedAt: start,
		Rows:      ds.NumRows(),
		Columns:   ds.Describe(),
		Summaries: make([]stats.Summary, len(cols)),
		Outliers:  make([]stats.OutlierSet, len(cols)),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.analysis.Workers)
	for i, col := range cols {
		i, col := i, col
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			summary, err := s.engine.Summarize(col)
			if err != nil {
				return fmt.Errorf("summarize %q: %w", col.Name(), err)
			}
			set, err := s.engine.DetectOutliers(col, outlierParams)
			if err != nil {
				return fmt.Errorf("outliers %q: %w", col.Name(), err)
			}
			report.Summaries[i] = summary
			report.Outliers[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(cols) >= 2 {
		matrix, err := s.engine.Correlate(cols, req.Correlation)
		if err != nil {
			return nil, fmt.Errorf("correlate: %w", err)
		}
		report.Correlation = &matrix

		if req.TopN > 0 {
			report.TopPartners = make(map[string][]stats.Partner, len(cols))
			for _, name := range matrix.Columns {
				top, err := matrix.Top(name, req.TopN)
				if err != nil {
					return nil, err
				}
				report.TopPartners[name] = top
			}
		}
	}

	report.RuntimeMs = start.Since().Milliseconds()
	s.logger.Info("report %s: %d columns over %d rows in %dms", report.ID, len(cols), report.Rows, report.RuntimeMs)
	return report, nil
}

func (s *AnalysisService) selectColumns(ds *dataset.Dataset, names []string) ([]*dataset.Column, error) {
	if len(names) == 0 {
		return ds.NumericColumns(), nil
	}
	cols, err := ds.Lookup(names...)
	if err != nil {
		return nil, err
	}
	for _, col := range cols {
		if !col.Kind().IsNumeric() {
			return nil, core.NewUnsupportedKindError("analyze", col.Name(), col.Kind())
		}
	}
	return cols, nil
}
