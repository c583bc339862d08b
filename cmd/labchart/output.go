package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"labchart/domain/dataset"
	"labchart/domain/stats"
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeCSV prints the dataset as comma-separated text; Missing cells are empty fields.
func writeCSV(w io.Writer, ds *dataset.Dataset) error {
	out := csv.NewWriter(w)
	if err := out.Write(ds.Names()); err != nil {
		return err
	}
	cols := ds.Columns()
	record := make([]string, len(cols))
	for i := 0; i < ds.NumRows(); i++ {
		for j, col := range cols {
			if v := col.Value(i); v.IsMissing() {
				record[j] = ""
			} else {
				record[j] = v.String()
			}
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printColumns(w io.Writer, rows int, infos []dataset.ColumnInfo) error {
	fmt.Fprintf(w, "📄 %d rows, %d columns\n\n", rows, len(infos))
	tw := newTable(w)
	fmt.Fprintln(tw, "COLUMN\tKIND\tMISSING")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", info.Name, info.Kind, info.MissingCount)
	}
	return tw.Flush()
}

func printSummaries(w io.Writer, summaries []stats.Summary) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "COLUMN\tCOUNT\tMISSING\tMEAN\tSTD\tMIN\tQ1\tMEDIAN\tQ3\tMAX\tSKEW\tKURT")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Column, s.Count, s.Missing, s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max, s.Skewness, s.Kurtosis)
	}
	return tw.Flush()
}

func printMatrix(w io.Writer, m stats.CorrelationMatrix) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(m.Columns, "\t"))
	for i, name := range m.Columns {
		cells := make([]string, len(m.Columns))
		for j := range m.Columns {
			cells[j] = m.Coefficients[i][j].String()
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func printPartners(w io.Writer, m stats.CorrelationMatrix, n int) error {
	for _, name := range m.Columns {
		top, err := m.Top(name, n)
		if err != nil {
			return err
		}
		parts := make([]string, len(top))
		for i, p := range top {
			parts[i] = fmt.Sprintf("%s (%.3f)", p.Column, p.Coefficient)
		}
		fmt.Fprintf(w, "🔗 %s: %s\n", name, strings.Join(parts, ", "))
	}
	return nil
}

func printOutliers(w io.Writer, sets []stats.OutlierSet) {
	for _, set := range sets {
		fmt.Fprintf(w, "🚩 %s [%s] bounds %s..%s: %d flagged %v\n",
			set.Column, set.Method, set.Lower, set.Upper, len(set.Rows), set.Rows)
	}
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "⚠️  %s\n", msg)
	}
}
