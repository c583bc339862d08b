package ports

import (
	"labchart/domain/dataset"
	"labchart/domain/stats"
)

// ColumnEngine runs the per-column analyses. Implementations are stateless between calls
// and never modify their inputs.
type ColumnEngine interface {
	Scale(col *dataset.Column, spec stats.ScalingSpec) (stats.ScaledColumn, error)
	Summarize(col *dataset.Column) (stats.Summary, error)

	DetectOutliers(col *dataset.Column, params stats.OutlierParams) (stats.OutlierSet, error)
	MaskOutliers(col *dataset.Column, set stats.OutlierSet) (*dataset.Column, error)

	FilterRows(col *dataset.Column, pred stats.Predicate) ([]int, error)
	FilterDataset(ds *dataset.Dataset, column string, pred stats.Predicate) (*dataset.Dataset, error)

	Smooth(col *dataset.Column, params stats.SmoothingParams) (stats.SmoothedSeries, error)
	Correlate(cols []*dataset.Column, method stats.CorrelationMethod) (stats.CorrelationMatrix, error)
	Transform(col *dataset.Column, kind stats.TransformKind, params stats.TransformParams) (stats.TransformedSeries, error)
	Derive(name string, op stats.DeriveOp, cols ...*dataset.Column) (*dataset.Column, error)
}
