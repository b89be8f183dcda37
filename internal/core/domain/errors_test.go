package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Distinct tests that sentinel errors do not match each other
func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrNotConfigured,
		ErrRunSuperseded,
		ErrImageTooLarge,
		ErrNotifierClosed,
	}

	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("record a1: %w", &ValidationError{Field: FieldTags, Reason: ReasonMistyped, Detail: "got string"})

	assert.EqualError(t, err, "record a1: field tags mistyped: got string")
	assert.ErrorIs(t, err, ErrInvalidInput)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, FieldTags, ve.Field)

	_, ok = AsValidationError(ErrNotFound)
	assert.False(t, ok)
}

func TestValidationError_WithoutDetail(t *testing.T) {
	err := &ValidationError{Field: FieldEmoji, Reason: ReasonMissing}
	assert.Equal(t, "field emoji missing", err.Error())
}

// TestWrappedErrors_Unwrap tests the typed errors keep their cause
func TestWrappedErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"index", &IndexConnectionError{Err: cause}, "geo index unavailable: boom"},
		{"fetch", &FetchError{Key: "k1", Err: cause}, "fetch k1: boom"},
		{"list", &ImageListError{Path: "images/a1", Err: cause}, "list images under images/a1: boom"},
		{"download", &ImageDownloadError{Path: "images/a1/1.png", Err: cause}, "download image images/a1/1.png: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.message)
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestImageDownloadError_TooLarge(t *testing.T) {
	err := &ImageDownloadError{Path: "big.png", Err: ErrImageTooLarge}

	var de *ImageDownloadError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
