package ports_test

import (
	"labchart/adapters/ingest"
	"labchart/adapters/stats/engine"
	"labchart/ports"
)

var (
	_ ports.DatasetLoader = (*ingest.Loader)(nil)
	_ ports.ColumnEngine  = (*engine.Engine)(nil)
)
