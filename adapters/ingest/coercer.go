package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"labchart/domain/dataset"
)

// TypeCoercer handles deterministic type coercion of raw cells
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]bool
}

// CoercionConfig defines which spellings are Missing and which date layouts are recognised
type CoercionConfig struct {
	MissingTokens []string `json:"missing_tokens"`
	DateLayouts   []string `json:"date_layouts"`
	// DecimalComma accepts "20,1" as 20.1. The loader turns it on for semicolon files.
	DecimalComma bool `json:"decimal_comma"`
}

// DefaultDateLayouts covers ISO timestamps and the US/EU styles lab instruments export.
var DefaultDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"02-01-2006 15:04:05",
	"02.01.2006 15:04:05",
	"02.01.2006",
	"02-Jan-2006",
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		MissingTokens: []string{"NA", "N/A", "-", "NaN", "null"},
		DateLayouts:   DefaultDateLayouts,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if len(config.DateLayouts) == 0 {
		config.DateLayouts = DefaultDateLayouts
	}
	missing := make(map[string]bool, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[strings.ToLower(strings.TrimSpace(tok))] = true
	}
	return &TypeCoercer{config: config, missing: missing}
}

// WithDecimalComma returns a copy of the coercer with decimal-comma parsing switched.
func (c *TypeCoercer) WithDecimalComma(on bool) *TypeCoercer {
	cp := *c
	cp.config.DecimalComma = on
	return &cp
}

// IsMissing reports whether a raw cell is empty or one of the configured sentinel tokens
func (c *TypeCoercer) IsMissing(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || c.missing[strings.ToLower(s)]
}

// InferKind picks the column kind from all of its cells: Integer if every non-missing
// cell is an integer, else Float, else DateTime, else Boolean, else Text.
// A column with no values at all is Float.
func (c *TypeCoercer) InferKind(cells []string) dataset.Kind {
	isInt, isFloat, isTime, isBool := true, true, true, true
	seen := 0

	for _, raw := range cells {
		if c.IsMissing(raw) {
			continue
		}
		seen++
		s := strings.TrimSpace(raw)
		if isInt {
			_, isInt = c.tryParseInteger(s)
		}
		if isFloat {
			_, isFloat = c.tryParseFloat(s)
		}
		if isTime {
			_, isTime = c.tryParseTimestamp(s)
		}
		if isBool {
			_, isBool = c.tryParseBoolean(s)
		}
		if !isInt && !isFloat && !isTime && !isBool {
			return dataset.KindText
		}
	}

	switch {
	case seen == 0:
		return dataset.KindFloat
	case isInt:
		return dataset.KindInteger
	case isFloat:
		return dataset.KindFloat
	case isTime:
		return dataset.KindDateTime
	case isBool:
		return dataset.KindBoolean
	}
	return dataset.KindText
}

// Parses reports whether a non-missing cell can be read as kind.
func (c *TypeCoercer) Parses(raw string, kind dataset.Kind) bool {
	return !c.Coerce(raw, kind).IsMissing()
}

// Coerce converts a raw cell into a Value of the given kind, or Missing when it does not parse
func (c *TypeCoercer) Coerce(raw string, kind dataset.Kind) dataset.Value {
	if c.IsMissing(raw) {
		return dataset.Missing()
	}
	s := strings.TrimSpace(raw)

	switch kind {
	case dataset.KindInteger:
		if v, ok := c.tryParseInteger(s); ok {
			return dataset.IntegerValue(v)
		}
	case dataset.KindFloat:
		if v, ok := c.tryParseFloat(s); ok {
			return dataset.FloatValue(v)
		}
	case dataset.KindDateTime:
		if v, ok := c.tryParseTimestamp(s); ok {
			return dataset.DateTimeValue(v)
		}
	case dataset.KindBoolean:
		if v, ok := c.tryParseBoolean(s); ok {
			return dataset.BooleanValue(v)
		}
	case dataset.KindText:
		return dataset.TextValue(s)
	}
	return dataset.Missing()
}

// tryParseInteger accepts optionally signed base-10 integers
func (c *TypeCoercer) tryParseInteger(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

// tryParseFloat accepts decimal and scientific notation; NaN and infinities are rejected
func (c *TypeCoercer) tryParseFloat(s string) (float64, bool) {
	if c.config.DecimalComma && strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// tryParseTimestamp attempts to parse as timestamp with the configured layouts
func (c *TypeCoercer) tryParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range c.config.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tryParseBoolean accepts true/false, yes/no and 0/1 in any case
func (c *TypeCoercer) tryParseBoolean(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	}
	return false, false
}
