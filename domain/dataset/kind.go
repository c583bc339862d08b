package dataset

// Kind is the inferred type of a column, decided once at load time.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindText
	KindDateTime
	KindBoolean
)

var kindNames = [...]string{
	KindInteger:  "integer",
	KindFloat:    "float",
	KindText:     "text",
	KindDateTime: "datetime",
	KindBoolean:  "boolean",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsNumeric reports whether statistics are defined for the kind.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// MarshalText lets kinds appear by name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
