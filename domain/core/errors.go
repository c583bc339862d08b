package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural errors raised while turning raw input into a Dataset
	ErrMalformedRow = errors.New("malformed row")
	ErrEncoding     = errors.New("input encoding error")

	// Contract violations
	ErrUnsupportedColumnKind = errors.New("unsupported column kind")
	ErrInvalidWindowSize     = errors.New("invalid window size")
	ErrInvalidParameter      = errors.New("invalid parameter")

	// Dataset shape errors
	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedColumns   = errors.New("columns have different lengths")
	ErrRowOutOfRange   = errors.New("row index out of range")
)

// MalformedRowError reports a data row whose field count disagrees with the header.
// Row is 1-based and counts physical records, header included.
type MalformedRowError struct {
	Row      int
	Expected int
	Actual   int
	Snippet  string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s: row %d has %d fields, expected %d (%q)",
		ErrMalformedRow, e.Row, e.Actual, e.Expected, e.Snippet)
}

func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedRow
}

// EncodingError reports input bytes that are not valid in the requested encoding.
type EncodingError struct {
	Encoding string
	Offset   int
	Snippet  string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: invalid %s sequence at byte %d (%q)", ErrEncoding, e.Encoding, e.Offset, e.Snippet)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

// Error constructors with context
func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

func NewUnsupportedKindError(operation, column string, kind fmt.Stringer) error {
	return fmt.Errorf("%w: %s is not defined for %s column %q", ErrUnsupportedColumnKind, operation, kind, column)
}

func NewInvalidWindowSizeError(size int) error {
	return fmt.Errorf("%w: %d (must be a positive odd integer)", ErrInvalidWindowSize, size)
}

func NewInvalidParameterError(name string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, name, reason)
}

// Snippet truncates raw input for inclusion in an error message.
func Snippet(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// Error checking helpers
func IsStructuralError(err error) bool {
	return errors.Is(err, ErrMalformedRow) || errors.Is(err, ErrEncoding)
}

func IsContractError(err error) bool {
	return errors.Is(err, ErrUnsupportedColumnKind) ||
		errors.Is(err, ErrInvalidWindowSize) ||
		errors.Is(err, ErrInvalidParameter)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}
