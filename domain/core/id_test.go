package core

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id == "" {
			t.Fatalf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Fatalf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
	assert.Len(t, ids, numIDs)
}

func TestReportIDIsTimeOrderedUUID(t *testing.T) {
	id := NewReportID()
	parsed, err := uuid.Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, "test-123", ID("test-123").String())
}

func TestMalformedRowErrorUnwraps(t *testing.T) {
	var err error = &MalformedRowError{Row: 3, Expected: 2, Actual: 3, Snippet: "1,2,3"}

	assert.True(t, errors.Is(err, ErrMalformedRow))
	assert.True(t, IsStructuralError(err))
	assert.False(t, IsContractError(err))
	assert.Contains(t, err.Error(), "row 3")

	var mre *MalformedRowError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 3, mre.Row)
}

func TestEncodingErrorUnwraps(t *testing.T) {
	err := &EncodingError{Encoding: "utf-8", Offset: 7, Snippet: "caf\xe9"}
	assert.ErrorIs(t, err, ErrEncoding)
	assert.Contains(t, err.Error(), "byte 7")
}

func TestContractHelpers(t *testing.T) {
	assert.True(t, IsContractError(NewInvalidWindowSizeError(4)))
	assert.True(t, IsContractError(NewInvalidParameterError("k", "must be positive")))
	assert.True(t, IsNotFoundError(NewColumnNotFoundError("Temp")))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "abc", Snippet("abc", 5))
	assert.Equal(t, "ab...", Snippet("abcdef", 2))
}
