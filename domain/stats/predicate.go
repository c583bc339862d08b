package stats

import (
	"fmt"
	"strings"

	"labchart/domain/core"
	"labchart/domain/dataset"
)

// Comparator is the operator of a row filter.
type Comparator string

const (
	Less         Comparator = "<"
	LessEqual    Comparator = "<="
	Equal        Comparator = "="
	GreaterEqual Comparator = ">="
	Greater      Comparator = ">"
	NotEqual     Comparator = "!="
	Between      Comparator = "between"
	IsMissing    Comparator = "is_missing"
	NotMissing   Comparator = "not_missing"
	Contains     Comparator = "contains"
	StartsWith   Comparator = "starts_with"
	EndsWith     Comparator = "ends_with"
	In           Comparator = "in"
)

// ParseComparator accepts symbols and the long filter names.
func ParseComparator(s string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "<", "lt", "less_than":
		return Less, nil
	case "<=", "≤", "le", "less_equal":
		return LessEqual, nil
	case "=", "==", "eq", "equals":
		return Equal, nil
	case ">=", "≥", "ge", "greater_equal":
		return GreaterEqual, nil
	case ">", "gt", "greater_than":
		return Greater, nil
	case "!=", "≠", "<>", "ne", "not_equals":
		return NotEqual, nil
	case "between":
		return Between, nil
	case "is_missing", "is_null":
		return IsMissing, nil
	case "not_missing", "is_not_null":
		return NotMissing, nil
	case "contains":
		return Contains, nil
	case "starts_with":
		return StartsWith, nil
	case "ends_with":
		return EndsWith, nil
	case "in", "in_list":
		return In, nil
	}
	return "", core.NewInvalidParameterError("comparator", fmt.Sprintf("unknown comparator %q", s))
}

// IsOrdering reports whether the comparator orders values (numeric/datetime only).
func (c Comparator) IsOrdering() bool {
	switch c {
	case Less, LessEqual, GreaterEqual, Greater, Between:
		return true
	}
	return false
}

// IsTextual reports whether the comparator applies to Text columns only.
func (c Comparator) IsTextual() bool {
	switch c {
	case Contains, StartsWith, EndsWith:
		return true
	}
	return false
}

// Predicate is a row filter: Op applied against Literal (and Upper for Between, Set for In).
type Predicate struct {
	Op      Comparator      `json:"op"`
	Literal dataset.Value   `json:"-"`
	Upper   dataset.Value   `json:"-"`
	Set     []dataset.Value `json:"-"`
}

// Compare builds a numeric comparison predicate.
func Compare(op Comparator, literal float64) Predicate {
	return Predicate{Op: op, Literal: dataset.FloatValue(literal)}
}

// CompareValue builds a comparison against a typed literal.
func CompareValue(op Comparator, literal dataset.Value) Predicate {
	return Predicate{Op: op, Literal: literal}
}

// InRange builds an inclusive Between predicate.
func InRange(lo, hi float64) Predicate {
	return Predicate{Op: Between, Literal: dataset.FloatValue(lo), Upper: dataset.FloatValue(hi)}
}

// Match builds a text predicate (Contains, StartsWith, EndsWith, Equal, NotEqual).
func Match(op Comparator, text string) Predicate {
	return Predicate{Op: op, Literal: dataset.TextValue(text)}
}

// OneOf builds an In predicate over the given values.
func OneOf(values ...dataset.Value) Predicate {
	return Predicate{Op: In, Set: append([]dataset.Value(nil), values...)}
}

// Missingness builds IsMissing / NotMissing predicates.
func Missingness(missing bool) Predicate {
	if missing {
		return Predicate{Op: IsMissing}
	}
	return Predicate{Op: NotMissing}
}
