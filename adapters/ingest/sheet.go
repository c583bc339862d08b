package ingest

import (
	"fmt"
	"io"
	"time"

	"labchart/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// SheetOptions selects the worksheet and header handling for workbook input
type SheetOptions struct {
	// Sheet defaults to the first sheet in the workbook.
	Sheet  string
	Header HeaderMode
}

// LoadSheet reads one worksheet of an .xlsx workbook into a Dataset. Cells go through
// the same header detection and type inference as delimited text. Trailing empty cells
// that excelize drops are restored so every row spans the first row's width.
func (l *Loader) LoadSheet(r io.Reader, opts SheetOptions) (*dataset.Dataset, error) {
	start := time.Now()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	if len(rows) > 0 {
		width := len(rows[0])
		for i, row := range rows {
			if len(row) < width {
				padded := make([]string, width)
				copy(padded, row)
				rows[i] = padded
			}
		}
	}

	ds, err := l.fromRecords(rows, nil, opts.Header, l.coercer)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("sheet %q loaded %d rows x %d columns in %.2fms",
		sheet, ds.NumRows(), ds.NumColumns(), float64(time.Since(start).Nanoseconds())/1e6)
	return ds, nil
}
