package stats

import (
	"encoding/json"
	"math"
	"strconv"
)

// Optional is a float result that may be undefined (Missing).
// The zero Optional is Missing.
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a defined value. NaN and infinities are not defined values and become Missing.
func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{Value: v, Valid: true}
}

// None returns the Missing result.
func None() Optional { return Optional{} }

// Or returns the value, or def when Missing.
func (o Optional) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

func (o Optional) String() string {
	if !o.Valid {
		return "<missing>"
	}
	return strconv.FormatFloat(o.Value, 'g', 6, 64)
}

// MarshalJSON encodes Missing as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
