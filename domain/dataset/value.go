package dataset

import (
	"strconv"
	"time"
)

// Value is a single typed cell. The zero Value is Missing.
type Value struct {
	kind    Kind
	present bool
	i       int64
	f       float64
	s       string
	t       time.Time
	b       bool
}

// Missing returns the sentinel for "no datum".
func Missing() Value { return Value{} }

func IntegerValue(v int64) Value      { return Value{kind: KindInteger, present: true, i: v} }
func FloatValue(v float64) Value      { return Value{kind: KindFloat, present: true, f: v} }
func TextValue(v string) Value        { return Value{kind: KindText, present: true, s: v} }
func DateTimeValue(v time.Time) Value { return Value{kind: KindDateTime, present: true, t: v} }
func BooleanValue(v bool) Value       { return Value{kind: KindBoolean, present: true, b: v} }

// IsMissing returns true for the Missing sentinel
func (v Value) IsMissing() bool { return !v.present }

// Kind returns the value kind; meaningless when the value is Missing.
func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric reading of the value. Integers widen to float64,
// datetimes read as Unix seconds and booleans as 0/1. ok is false for Missing and Text.
func (v Value) Float() (float64, bool) {
	if !v.present {
		return 0, false
	}
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindDateTime:
		return float64(v.t.Unix()) + float64(v.t.Nanosecond())/1e9, true
	case KindBoolean:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (v Value) Int() (int64, bool)          { return v.i, v.present && v.kind == KindInteger }
func (v Value) Text() (string, bool)        { return v.s, v.present && v.kind == KindText }
func (v Value) DateTime() (time.Time, bool) { return v.t, v.present && v.kind == KindDateTime }
func (v Value) Bool() (bool, bool)          { return v.b, v.present && v.kind == KindBoolean }

// String returns the string representation of the value
func (v Value) String() string {
	if !v.present {
		return "<missing>"
	}
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindDateTime:
		return v.t.Format(time.RFC3339)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	}
	return "<invalid>"
}
