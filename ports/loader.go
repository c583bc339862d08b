package ports

import (
	"io"

	"labchart/adapters/ingest"
	"labchart/domain/dataset"
)

// DatasetLoader turns a byte stream into a typed Dataset
type DatasetLoader interface {
	Load(r io.Reader, opts ingest.LoadOptions) (*dataset.Dataset, error)
	LoadSheet(r io.Reader, opts ingest.SheetOptions) (*dataset.Dataset, error)
}
