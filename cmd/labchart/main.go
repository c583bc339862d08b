package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"labchart/adapters/ingest"
	"labchart/adapters/stats/engine"
	"labchart/app"
	"labchart/domain/core"
	"labchart/domain/dataset"
	"labchart/internal"
	"labchart/internal/config"
	apperrors "labchart/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ [%s] %v\n", apperrors.GetCode(err), err)
		os.Exit(1)
	}
}

const sniffBufferSize = 64 << 10

// cliState is built once per invocation from the environment and the global flags.
type cliState struct {
	cfg      *config.Config
	logger   *internal.Logger
	service  *app.AnalysisService
	coercion ingest.CoercionConfig

	delimiter string
	header    string
	encoding  string
	sheet     string
	asJSON    bool

	// decimalComma is set once a semicolon-delimited file is loaded
	decimalComma bool
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "labchart",
		Short: "Load lab instrument exports and run column statistics",
		Long: `labchart reads CSV/TSV/semicolon files or .xlsx workbooks, infers column types and
runs scaling, statistics, outlier, filter, smoothing, correlation and transform operations.

Configuration comes from the environment (and an optional .env file):
- LOG_LEVEL (ERROR|WARN|INFO|DEBUG|TRACE, default INFO)
- LABCHART_MISSING_TOKENS (comma list, default NA,N/A,-,NaN,null)
- LABCHART_HEADER_SAMPLE_ROWS (default 5)
- LABCHART_ENCODING (auto|utf-8|latin-1, default auto)
- LABCHART_IQR_K, LABCHART_ZSCORE_THRESHOLD, LABCHART_SMOOTHING_WINDOW, LABCHART_WORKERS`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.bootstrap(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&st.delimiter, "delimiter", "", "Field delimiter (empty detects; use \\t or tab for tabs)")
	flags.StringVar(&st.header, "header", "auto", "Header row: auto|yes|no")
	flags.StringVar(&st.encoding, "encoding", "", "Input encoding: auto|utf-8|latin-1 (default from LABCHART_ENCODING)")
	flags.StringVar(&st.sheet, "sheet", "", "Worksheet name for .xlsx input (default first sheet)")
	flags.BoolVar(&st.asJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		newInfoCmd(st),
		newSummaryCmd(st),
		newReportCmd(st),
		newCorrelateCmd(st),
		newOutliersCmd(st),
		newFilterCmd(st),
		newScaleCmd(st),
		newSmoothCmd(st),
		newTransformCmd(st),
		newDeriveCmd(st),
	)

	return rootCmd
}

func (s *cliState) bootstrap(cmd *cobra.Command) error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = internal.NewLoggerTo(cmd.ErrOrStderr(), internal.ParseLogLevel(cfg.Log.Level))

	s.coercion = ingest.DefaultCoercionConfig()
	s.coercion.MissingTokens = cfg.Ingest.MissingTokens

	loader := ingest.NewLoader(ingest.LoaderConfig{
		Coercion:         s.coercion,
		HeaderSampleRows: cfg.Ingest.HeaderSampleRows,
	}, s.logger)
	s.service = app.NewAnalysisService(loader, engine.New(s.logger), cfg.Analysis, s.logger)
	return nil
}

// load opens path and routes it to the workbook or delimited-text loader by extension.
func (s *cliState) load(ctx context.Context, path string) (*dataset.Dataset, error) {
	header, err := parseHeaderMode(s.header)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var ds *dataset.Dataset
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		ds, err = s.service.LoadSheet(ctx, f, ingest.SheetOptions{Sheet: s.sheet, Header: header})
	} else {
		opts := ingest.LoadOptions{Header: header}
		if opts.Delimiter, err = parseDelimiter(s.delimiter); err != nil {
			return nil, err
		}
		in := bufio.NewReaderSize(f, sniffBufferSize)
		if opts.Delimiter == 0 {
			opts.Delimiter = ingest.SniffDelimiter(in)
		}
		s.decimalComma = opts.Delimiter == ';'
		encoding := s.encoding
		if encoding == "" {
			encoding = s.cfg.Ingest.Encoding
		}
		if opts.Encoding, err = ingest.ParseEncoding(encoding); err != nil {
			return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
		}
		ds, err = s.service.Load(ctx, in, opts)
	}
	if err != nil {
		if core.IsStructuralError(err) {
			return nil, apperrors.MalformedInput(path, err)
		}
		return nil, apperrors.Wrapf(err, "failed to load %s", path)
	}

	s.logger.Debug("loaded %s: %d rows, %d columns", path, ds.NumRows(), ds.NumColumns())
	return ds, nil
}

// column looks a column up, mapping a miss to a NOT_FOUND application error.
func column(ds *dataset.Dataset, name string) (*dataset.Column, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("--column is required")
	}
	col, err := ds.Column(name)
	if err != nil {
		return nil, apperrors.NotFound(fmt.Sprintf("column %q", name))
	}
	return col, nil
}

// operationError tags contract violations so the exit message carries a code.
func operationError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if core.IsContractError(err) {
		return apperrors.UnsupportedOperation(operation, err)
	}
	if core.IsNotFoundError(err) {
		return apperrors.WithCode(apperrors.CodeNotFound, err)
	}
	return apperrors.Wrapf(err, "%s failed", operation)
}

func parseHeaderMode(s string) (ingest.HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ingest.HeaderAuto, nil
	case "yes", "true", "present":
		return ingest.HeaderPresent, nil
	case "no", "false", "absent":
		return ingest.HeaderAbsent, nil
	}
	return ingest.HeaderAuto, apperrors.InvalidInput(fmt.Sprintf("--header must be auto, yes or no, got %q", s))
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("--delimiter must be a single character, got %q", s))
	}
	return runes[0], nil
}

func splitList(s string) []string {
	return splitListOn(s, ",")
}

func splitListOn(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
