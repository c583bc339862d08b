package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"labchart/domain/core"
	"labchart/domain/dataset"
	"labchart/internal"
)

// LoaderConfig holds the settings shared by every Load call
type LoaderConfig struct {
	Coercion         CoercionConfig `json:"coercion"`
	HeaderSampleRows int            `json:"header_sample_rows"`
}

// DefaultLoaderConfig returns sensible defaults
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Coercion:         DefaultCoercionConfig(),
		HeaderSampleRows: DefaultHeaderSampleRows,
	}
}

// LoadOptions are the per-file choices a caller may force instead of detecting.
type LoadOptions struct {
	// Delimiter is detected from the first line when zero.
	Delimiter rune
	Header    HeaderMode
	Encoding  Encoding
}

// Loader turns delimited text into a typed Dataset
type Loader struct {
	coercer    *TypeCoercer
	sampleRows int
	logger     *internal.Logger
}

// NewLoader creates a loader with the given config
func NewLoader(config LoaderConfig, logger *internal.Logger) *Loader {
	if config.HeaderSampleRows < 2 {
		config.HeaderSampleRows = DefaultHeaderSampleRows
	}
	if logger == nil {
		logger = internal.Discard()
	}
	return &Loader{
		coercer:    NewTypeCoercer(config.Coercion),
		sampleRows: config.HeaderSampleRows,
		logger:     logger.With("loader"),
	}
}

// Load reads the stream once, start to end, and builds a Dataset.
// A row whose field count differs from the header fails with *core.MalformedRowError;
// undecodable bytes fail with *core.EncodingError.
func (l *Loader) Load(r io.Reader, opts LoadOptions) (*dataset.Dataset, error) {
	start := time.Now()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	text, used, err := decode(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(firstLine(text))
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// blank lines produce no record, so each record keeps the line it started on
	var records [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &core.MalformedRowError{Row: perr.Line, Snippet: core.Snippet(perr.Err.Error(), 40)}
			}
			return nil, fmt.Errorf("failed to tokenize input: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}

	coercer := l.coercer.WithDecimalComma(delim == ';')
	ds, err := l.fromRecords(records, lines, opts.Header, coercer)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded %d rows x %d columns (encoding=%s, delimiter=%q) in %.2fms",
		ds.NumRows(), ds.NumColumns(), used, delim, float64(time.Since(start).Nanoseconds())/1e6)
	return ds, nil
}

// fromRecords applies header detection, row-length checks and per-column type inference.
// lines[i] is the 1-based source line of records[i]; nil means record i sits on line i+1.
func (l *Loader) fromRecords(records [][]string, lines []int, mode HeaderMode, coercer *TypeCoercer) (*dataset.Dataset, error) {
	if len(records) == 0 {
		return dataset.New()
	}

	hasHeader := mode == HeaderPresent
	if mode == HeaderAuto {
		sample := records
		if len(sample) > l.sampleRows {
			sample = sample[:l.sampleRows]
		}
		hasHeader = NewHeaderDetector(coercer).HasHeader(sample)
		l.logger.Trace("header detection over %d rows: %v", len(sample), hasHeader)
	}

	width := len(records[0])
	var header []string
	data := records
	first := 0
	if hasHeader {
		header = records[0]
		data = records[1:]
		first = 1
	}

	for i, row := range data {
		if len(row) != width {
			line := first + i + 1
			if lines != nil {
				line = lines[first+i]
			}
			return nil, &core.MalformedRowError{
				Row:      line,
				Expected: width,
				Actual:   len(row),
				Snippet:  core.Snippet(strings.Join(row, ","), 40),
			}
		}
	}

	names := columnNames(header, width)
	columns := make([]*dataset.Column, width)
	cells := make([]string, len(data))
	for j := 0; j < width; j++ {
		for i, row := range data {
			cells[i] = row[j]
		}
		kind := coercer.InferKind(cells)
		values := make([]dataset.Value, len(cells))
		for i, cell := range cells {
			values[i] = coercer.Coerce(cell, kind)
		}
		col, err := dataset.NewColumnFromValues(names[j], kind, values)
		if err != nil {
			return nil, fmt.Errorf("failed to build column %q: %w", names[j], err)
		}
		columns[j] = col
	}

	return dataset.New(columns...)
}

// columnNames trims header cells, names blank ones "Unnamed: j" and suffixes repeats
// with ".1", ".2"... Without a header the columns are "Column 1".."Column n".
func columnNames(header []string, width int) []string {
	names := make([]string, width)
	if header == nil {
		for j := range names {
			names[j] = "Column " + strconv.Itoa(j+1)
		}
		return names
	}

	used := make(map[string]bool, width)
	repeats := make(map[string]int, width)
	for j := range names {
		base := strings.TrimSpace(header[j])
		if base == "" {
			base = "Unnamed: " + strconv.Itoa(j)
		}
		name := base
		for used[name] {
			repeats[base]++
			name = base + "." + strconv.Itoa(repeats[base])
		}
		used[name] = true
		names[j] = name
	}
	return names
}
