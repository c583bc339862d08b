package main

import (
	"context"
	"fmt"
	"strings"

	"labchart/adapters/ingest"
	"labchart/app"
	"labchart/domain/dataset"
	"labchart/domain/stats"
	apperrors "labchart/internal/errors"

	"github.com/spf13/cobra"
)

func newInfoCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Show inferred columns, kinds and missing counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, st, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, st *cliState, path string) error {
	ds, err := st.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	if st.asJSON {
		return printJSON(cmd.OutOrStdout(), ds.Describe())
	}
	return printColumns(cmd.OutOrStdout(), ds.NumRows(), ds.Describe())
}

func newSummaryCmd(st *cliState) *cobra.Command {
	var columns string

	cmd := &cobra.Command{
		Use:   "summary [file]",
		Short: "Descriptive statistics per numeric column",
		Long: `Compute count, missing, mean, sample std, min, quartiles, max, skewness and
excess kurtosis over the non-missing values of each column.

Example: labchart summary run42.csv --columns Temp,Pressure`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, st, args[0], splitList(columns))
		},
	}

	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated columns (default every numeric column)")
	return cmd
}

func runSummary(cmd *cobra.Command, st *cliState, path string, names []string) error {
	_, cols, err := st.loadColumns(cmd.Context(), path, names)
	if err != nil {
		return err
	}

	summaries := make([]stats.Summary, 0, len(cols))
	for _, col := range cols {
		s, err := st.service.Engine().Summarize(col)
		if err != nil {
			return operationError("summary", err)
		}
		summaries = append(summaries, s)
	}
	if st.asJSON {
		return printJSON(cmd.OutOrStdout(), summaries)
	}
	return printSummaries(cmd.OutOrStdout(), summaries)
}

func newReportCmd(st *cliState) *cobra.Command {
	var columns string
	var method, correlation string
	var top int

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Summaries, outliers and correlations in one pass",
		Long: `Run the full analysis: per-column summaries and outlier scans on a bounded worker
pool (LABCHART_WORKERS), then the correlation matrix and strongest partners.

Example: labchart report run42.csv --top 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outlierMethod, err := stats.ParseOutlierMethod(method)
			if err != nil {
				return apperrors.WithCode(apperrors.CodeInvalidInput, err)
			}
			correlationMethod, err := stats.ParseCorrelationMethod(correlation)
			if err != nil {
				return apperrors.WithCode(apperrors.CodeInvalidInput, err)
			}
			req := app.ReportRequest{
				Columns:     splitList(columns),
				Outliers:    stats.OutlierParams{Method: outlierMethod},
				Correlation: correlationMethod,
				TopN:        top,
			}
			return runReport(cmd, st, args[0], req)
		},
	}

	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated columns (default every numeric column)")
	cmd.Flags().StringVar(&method, "method", "iqr", "Outlier rule: iqr|zscore")
	cmd.Flags().StringVar(&correlation, "correlation", "pearson", "Coefficient: pearson|spearman|kendall")
	cmd.Flags().IntVar(&top, "top", 3, "Strongest correlation partners to list per column")
	return cmd
}

func runReport(cmd *cobra.Command, st *cliState, path string, req app.ReportRequest) error {
	ctx := cmd.Context()
	ds, err := st.load(ctx, path)
	if err != nil {
		return err
	}
	report, err := st.service.Analyze(ctx, ds, req)
	if err != nil {
		return operationError("report", err)
	}

	out := cmd.OutOrStdout()
	if st.asJSON {
		return printJSON(out, report)
	}

	fmt.Fprintf(out, "📊 Report %s (%dms)\n", report.ID, report.RuntimeMs)
	if err := printColumns(out, report.Rows, report.Columns); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := printSummaries(out, report.Summaries); err != nil {
		return err
	}
	fmt.Fprintln(out)
	printOutliers(out, report.Outliers)
	if report.Correlation != nil {
		fmt.Fprintln(out)
		if err := printMatrix(out, *report.Correlation); err != nil {
			return err
		}
		if req.TopN > 0 {
			fmt.Fprintln(out)
			return printPartners(out, *report.Correlation, req.TopN)
		}
	}
	return nil
}

func newCorrelateCmd(st *cliState) *cobra.Command {
	var columns, method string
	var top int

	cmd := &cobra.Command{
		Use:   "correlate [file]",
		Short: "Pairwise correlation matrix (Pearson, Spearman or Kendall)",
		Long: `Compute correlation coefficients between numeric columns using pairwise-complete rows.
Undefined coefficients (constant columns, fewer than two shared rows) print as <missing>.

Example: labchart correlate run42.csv --columns Temp,Pressure,Flow --method spearman --top 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := stats.ParseCorrelationMethod(method)
			if err != nil {
				return apperrors.WithCode(apperrors.CodeInvalidInput, err)
			}
			return runCorrelate(cmd, st, args[0], splitList(columns), m, top)
		},
	}

	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated columns (default every numeric column)")
	cmd.Flags().StringVar(&method, "method", "pearson", "Coefficient: pearson|spearman|kendall")
	cmd.Flags().IntVar(&top, "top", 0, "Also list the N strongest partners per column")
	return cmd
}

func runCorrelate(cmd *cobra.Command, st *cliState, path string, names []string, method stats.CorrelationMethod, top int) error {
	_, cols, err := st.loadColumns(cmd.Context(), path, names)
	if err != nil {
		return err
	}
	matrix, err := st.service.Engine().Correlate(cols, method)
	if err != nil {
		return operationError("correlate", err)
	}

	out := cmd.OutOrStdout()
	if st.asJSON {
		return printJSON(out, matrix)
	}
	if err := printMatrix(out, matrix); err != nil {
		return err
	}
	if top > 0 {
		fmt.Fprintln(out)
		return printPartners(out, matrix, top)
	}
	return nil
}

func newOutliersCmd(st *cliState) *cobra.Command {
	var name, method, action string
	var k, threshold float64

	cmd := &cobra.Command{
		Use:   "outliers [file]",
		Short: "Flag outliers in a column, optionally masking or dropping them",
		Long: `Flag outliers with the IQR rule (outside [Q1 - k*IQR, Q3 + k*IQR]) or the z-score rule
(|x - mean| / std > threshold). Defaults come from LABCHART_IQR_K and LABCHART_ZSCORE_THRESHOLD.

--action list   prints the flagged rows (default)
--action mask   writes the dataset as CSV with a <column>_masked column
--action drop   writes the dataset as CSV without the flagged rows

Example: labchart outliers run42.csv --column Temp --method zscore --threshold 2.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outlierMethod, err := stats.ParseOutlierMethod(method)
			if err != nil {
				return apperrors.WithCode(apperrors.CodeInvalidInput, err)
			}
			params := stats.OutlierParams{Method: outlierMethod, K: k, Threshold: threshold}
			return runOutliers(cmd, st, args[0], name, params, action)
		},
	}

	cmd.Flags().StringVar(&name, "column", "", "Column to scan")
	cmd.Flags().StringVar(&method, "method", "iqr", "Outlier rule: iqr|zscore")
	cmd.Flags().Float64Var(&k, "k", 0, "IQR multiplier (default from config)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Z-score threshold (default from config)")
	cmd.Flags().StringVar(&action, "action", "list", "What to do with flagged rows: list|mask|drop")
	return cmd
}

func runOutliers(cmd *cobra.Command, st *cliState, path, name string, params stats.OutlierParams, action string) error {
	ds, err := st.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	col, err := column(ds, name)
	if err != nil {
		return err
	}

	eng := st.service.Engine()
	set, err := eng.DetectOutliers(col, st.service.OutlierDefaults(params))
	if err != nil {
		return operationError("outliers", err)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(action) {
	case "", "list":
		if st.asJSON {
			return printJSON(out, set)
		}
		printOutliers(out, []stats.OutlierSet{set})
		return nil
	case "mask":
		masked, err := eng.MaskOutliers(col, set)
		if err != nil {
			return operationError("mask outliers", err)
		}
		return appendAndWrite(cmd, ds, masked.Rename(col.Name()+"_masked"))
	case "drop":
		kept, err := ds.Drop(set.Rows)
		if err != nil {
			return operationError("drop outliers", err)
		}
		return writeCSV(out, kept)
	}
	return apperrors.InvalidInput(fmt.Sprintf("--action must be list, mask or drop, got %q", action))
}

func newFilterCmd(st *cliState) *cobra.Command {
	var name, op, value, upper string

	cmd := &cobra.Command{
		Use:   "filter [file]",
		Short: "Keep the rows whose column value satisfies a predicate",
		Long: `Filter rows and write the remaining dataset as CSV.

Operators: < <= = >= > != between is_missing not_missing contains starts_with ends_with in
For "between" pass --value as the lower and --upper as the upper bound (inclusive).
For "in" pass a comma-separated --value list.

Example: labchart filter run42.csv --column Temp --op between --value 20 --upper 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, st, args[0], name, op, value, upper)
		},
	}

	cmd.Flags().StringVar(&name, "column", "", "Column the predicate applies to")
	cmd.Flags().StringVar(&op, "op", "=", "Comparator")
	cmd.Flags().StringVar(&value, "value", "", "Literal to compare against")
	cmd.Flags().StringVar(&upper, "upper", "", "Upper bound for between")
	return cmd
}

func runFilter(cmd *cobra.Command, st *cliState, path, name, op, value, upper string) error {
	comparator, err := stats.ParseComparator(op)
	if err != nil {
		return apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	ds, err := st.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	col, err := column(ds, name)
	if err != nil {
		return err
	}
	pred, err := st.predicate(col.Kind(), comparator, value, upper)
	if err != nil {
		return err
	}

	filtered, err := st.service.Engine().FilterDataset(ds, col.Name(), pred)
	if err != nil {
		return operationError("filter", err)
	}
	st.logger.Info("filter kept %d of %d rows", filtered.NumRows(), ds.NumRows())
	return writeCSV(cmd.OutOrStdout(), filtered)
}

// predicate builds a Predicate with literals parsed as the column's kind. Integer columns
// take Float literals so "2.5" is a valid bound. After a semicolon-delimited load numbers
// use a decimal comma and "in" lists are separated by semicolons.
func (s *cliState) predicate(kind dataset.Kind, op stats.Comparator, value, upper string) (stats.Predicate, error) {
	switch op {
	case stats.IsMissing:
		return stats.Missingness(true), nil
	case stats.NotMissing:
		return stats.Missingness(false), nil
	case stats.Contains, stats.StartsWith, stats.EndsWith:
		return stats.Match(op, value), nil
	}

	coercer := ingest.NewTypeCoercer(s.coercion).WithDecimalComma(s.decimalComma)
	literal := func(raw string) (dataset.Value, error) {
		if kind == dataset.KindText {
			return dataset.TextValue(raw), nil
		}
		target := kind
		if kind.IsNumeric() {
			target = dataset.KindFloat
		}
		v := coercer.Coerce(raw, target)
		if v.IsMissing() {
			return v, apperrors.InvalidInput(fmt.Sprintf("%q is not a valid %s literal", raw, kind))
		}
		return v, nil
	}

	switch op {
	case stats.In:
		var set []dataset.Value
		sep := ","
		if s.decimalComma {
			sep = ";"
		}
		for _, raw := range splitListOn(value, sep) {
			v, err := literal(raw)
			if err != nil {
				return stats.Predicate{}, err
			}
			set = append(set, v)
		}
		return stats.OneOf(set...), nil
	case stats.Between:
		lo, err := literal(value)
		if err != nil {
			return stats.Predicate{}, err
		}
		hi, err := literal(upper)
		if err != nil {
			return stats.Predicate{}, err
		}
		return stats.Predicate{Op: stats.Between, Literal: lo, Upper: hi}, nil
	}

	v, err := literal(value)
	if err != nil {
		return stats.Predicate{}, err
	}
	return stats.CompareValue(op, v), nil
}

func newScaleCmd(st *cliState) *cobra.Command {
	var name, mode, output string
	var targetMin, targetMax, base float64
	var sourceMin, sourceMax float64
	var pinSource bool

	cmd := &cobra.Command{
		Use:   "scale [file]",
		Short: "Rescale a column (linear, unit, log or identity) and append it",
		Long: `Append a rescaled Float copy of a column and write the dataset as CSV.

Modes:
  linear    map [source min, source max] onto [--min, --max]
  unit      linear onto [0, 1]
  log       logarithm in --base (0 means natural log); values <= 0 become missing
  identity  copy as Float

Example: labchart scale run42.csv --column Temp --mode linear --min -1 --max 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var spec stats.ScalingSpec
			switch strings.ToLower(mode) {
			case "linear":
				spec = stats.LinearSpec(targetMin, targetMax)
			case "unit", "normalize":
				spec = stats.UnitRangeSpec()
			case "log":
				spec = stats.LogSpec(base)
			case "identity":
				spec = stats.IdentitySpec()
			default:
				return apperrors.InvalidInput(fmt.Sprintf("unknown scaling mode %q", mode))
			}
			if pinSource {
				spec = spec.WithSourceRange(sourceMin, sourceMax)
			}
			spec.OutputName = output
			return runScale(cmd, st, args[0], name, spec)
		},
	}

	cmd.Flags().StringVar(&name, "column", "", "Column to scale")
	cmd.Flags().StringVar(&mode, "mode", "unit", "Scaling mode: linear|unit|log|identity")
	cmd.Flags().Float64Var(&targetMin, "min", 0, "Target minimum for linear mode")
	cmd.Flags().Float64Var(&targetMax, "max", 1, "Target maximum for linear mode")
	cmd.Flags().Float64Var(&base, "base", 0, "Logarithm base (0 means e)")
	cmd.Flags().BoolVar(&pinSource, "pin-source", false, "Use --source-min/--source-max instead of the column range")
	cmd.Flags().Float64Var(&sourceMin, "source-min", 0, "Source minimum when --pin-source is set")
	cmd.Flags().Float64Var(&sourceMax, "source-max", 1, "Source maximum when --pin-source is set")
	cmd.Flags().StringVar(&output, "output", "", "Name of the appended column (default <column>_scaled)")
	return cmd
}

func runScale(cmd *cobra.Command, st *cliState, path, name string, spec stats.ScalingSpec) error {
	ds, err := st.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	col, err := column(ds, name)
	if err != nil {
		return err
	}
	if spec.OutputName == "" {
		spec.OutputName = col.Name() + "_scaled"
	}

	scaled, err := st.service.Engine().Scale(col, spec)
	if err != nil {
		return operationError("scale", err)
	}
	printWarnings(cmd.ErrOrStderr(), scaled.Warnings)
	return appendAndWrite(cmd, ds, scaled.Column)
}

func newSmoothCmd(st *cliState) *cobra.Command {
	var name, method string
	var window int
	var sigma float64

	cmd := &cobra.Command{
		Use:   "smooth [file]",
		Short: "Append a smoothed copy of a column",
		Long: `Smooth a numeric column with a centred moving average (odd --window, default from
LABCHART_SMOOTHING_WINDOW), a Gaussian kernel (--sigma > 0) or a Savitzky-Golay filter
(--window rounded up to odd, cubic at most) and write the dataset as CSV.

Example: labchart smooth run42.csv --column Temp --method savgol --window 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			smoothing, err := stats.ParseSmoothingMethod(method)
			if err != nil {
				return apperrors.WithCode(apperrors.CodeInvalidInput, err)
			}
			params := stats.SmoothingParams{Method: smoothing, Window: window, Sigma: sigma}
			return runSmooth(cmd, st, args[0], name, params)
		},
	}

	cmd.Flags().StringVar(&name, "column", "", "Column to smooth")
	cmd.Flags().StringVar(&method, "method", "moving_avg", "Smoother: moving_avg|gaussian|savgol")
	cmd.Flags().IntVar(&window, "window", 0, "Smoothing window in rows (default from config)")
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "Gaussian kernel standard deviation in rows")
	return cmd
}

func runSmooth(cmd *cobra.Command, st *cliState, path, name string, params stats.SmoothingParams) error {
	ds, err := st.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	col, err := column(ds, name)
	if err != nil {
		return err
	}
	smoothed, err := st.service.Engine().Smooth(col, st.service.SmoothingDefaults(params))
	if err != nil {
		return operationError("smooth", err)
	}
	return appendAndWrite(cmd, ds, smoothed.Column.Rename(col.Name()+"_smooth"))
}

func newTransformCmd(st *cliState) *cobra.Command {
	var name, kind string
	var base float64

	cmd := &cobra.Command{
		Use:   "transform [file]",
		Short: "Append a log, difference, normalize or cumsum transform of a column",
		Long: `Apply a transform and write the dataset as CSV with a <column>_<kind> column.

  log         logarithm in --base (0 means e); values <= 0 become missing
  difference  x[i] - x[i-1]; the first row is missing
  normalize   (x - mean) / std; a constant column gives zeros
  cumsum      running total; missing rows stay missing

Example: labchart transform run42.csv --column Flow --kind cumsum`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transform, err := stats.ParseTransformKind(kind)
			if err != nil {
				return apperrors.WithCode(apperrors.CodeInvalidInput, err)
			}
			return runTransform(cmd, st, args[0], name, transform, stats.TransformParams{Base: base})
		},
	}

	cmd.Flags().StringVar(&name, "column", "", "Column to transform")
	cmd.Flags().StringVar(&kind, "kind", "", "Transform: log|difference|normalize|cumsum")
	cmd.Flags().Float64Var(&base, "base", 0, "Logarithm base for log (0 means e)")
	return cmd
}

func runTransform(cmd *cobra.Command, st *cliState, path, name string, kind stats.TransformKind, params stats.TransformParams) error {
	ds, err := st.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	col, err := column(ds, name)
	if err != nil {
		return err
	}
	result, err := st.service.Engine().Transform(col, kind, params)
	if err != nil {
		return operationError("transform", err)
	}
	printWarnings(cmd.ErrOrStderr(), result.Warnings)
	return appendAndWrite(cmd, ds, result.Column.Rename(fmt.Sprintf("%s_%s", col.Name(), kind)))
}

func newDeriveCmd(st *cliState) *cobra.Command {
	var name, op, columns string

	cmd := &cobra.Command{
		Use:   "derive [file]",
		Short: "Append a column combining two or more numeric columns",
		Long: `Combine columns row by row, folding left (a - b - c, a / b / c). Missing inputs and
division by zero give missing cells.

Example: labchart derive run42.csv --name Ratio --op divide --columns Flow,Pressure`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deriveOp, err := stats.ParseDeriveOp(op)
			if err != nil {
				return apperrors.WithCode(apperrors.CodeInvalidInput, err)
			}
			return runDerive(cmd, st, args[0], name, deriveOp, splitList(columns))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the derived column")
	cmd.Flags().StringVar(&op, "op", "add", "Operation: add|subtract|multiply|divide")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated input columns (at least two)")
	return cmd
}

func runDerive(cmd *cobra.Command, st *cliState, path, name string, op stats.DeriveOp, names []string) error {
	ds, err := st.load(cmd.Context(), path)
	if err != nil {
		return err
	}
	cols, err := ds.Lookup(names...)
	if err != nil {
		return operationError("derive", err)
	}
	derived, err := st.service.Engine().Derive(name, op, cols...)
	if err != nil {
		return operationError("derive", err)
	}
	return appendAndWrite(cmd, ds, derived)
}

// loadColumns loads path and resolves names, defaulting to every numeric column.
func (s *cliState) loadColumns(ctx context.Context, path string, names []string) (*dataset.Dataset, []*dataset.Column, error) {
	ds, err := s.load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		return ds, ds.NumericColumns(), nil
	}
	cols, err := ds.Lookup(names...)
	if err != nil {
		return nil, nil, apperrors.WithCode(apperrors.CodeNotFound, err)
	}
	return ds, cols, nil
}

func appendAndWrite(cmd *cobra.Command, ds *dataset.Dataset, col *dataset.Column) error {
	out, err := ds.WithColumn(col)
	if err != nil {
		return operationError("append column", err)
	}
	return writeCSV(cmd.OutOrStdout(), out)
}
