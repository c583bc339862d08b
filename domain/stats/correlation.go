package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"labchart/domain/core"
)

// CorrelationMethod selects the coefficient computed for each pair.
type CorrelationMethod string

const (
	CorrelationPearson  CorrelationMethod = "pearson"
	CorrelationSpearman CorrelationMethod = "spearman"
	CorrelationKendall  CorrelationMethod = "kendall"
)

// ParseCorrelationMethod accepts "pearson", "spearman" and "kendall"; empty means pearson.
func ParseCorrelationMethod(s string) (CorrelationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pearson", "":
		return CorrelationPearson, nil
	case "spearman", "rank":
		return CorrelationSpearman, nil
	case "kendall", "tau":
		return CorrelationKendall, nil
	}
	return "", core.NewInvalidParameterError("method", fmt.Sprintf("unknown correlation method %q", s))
}

// CorrelationMatrix is a symmetric matrix of coefficients between named columns.
// Undefined coefficients (constant series, fewer than two paired rows) are Missing.
type CorrelationMatrix struct {
	Method       CorrelationMethod `json:"method"`
	Columns      []string          `json:"columns"`
	Coefficients [][]Optional      `json:"coefficients"`
	// Observations holds the pairwise-complete row count behind each coefficient.
	Observations [][]int `json:"observations"`
}

// Partner is one entry of a column's strongest correlations.
type Partner struct {
	Column      string  `json:"column"`
	Coefficient float64 `json:"coefficient"`
}

func (m CorrelationMatrix) indexOf(name string) (int, error) {
	for i, c := range m.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, core.NewColumnNotFoundError(name)
}

// At returns the coefficient for the pair (a, b).
func (m CorrelationMatrix) At(a, b string) (Optional, error) {
	i, err := m.indexOf(a)
	if err != nil {
		return None(), err
	}
	j, err := m.indexOf(b)
	if err != nil {
		return None(), err
	}
	return m.Coefficients[i][j], nil
}

// Top returns up to n partners of column ordered by descending |r|, excluding itself and
// Missing entries. Ties keep column order.
func (m CorrelationMatrix) Top(column string, n int) ([]Partner, error) {
	i, err := m.indexOf(column)
	if err != nil {
		return nil, err
	}
	var out []Partner
	for j, c := range m.Columns {
		if j == i || !m.Coefficients[i][j].Valid {
			continue
		}
		out = append(out, Partner{Column: c, Coefficient: m.Coefficients[i][j].Value})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Coefficient) > math.Abs(out[b].Coefficient)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
