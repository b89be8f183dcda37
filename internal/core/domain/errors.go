package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required adapter has no configuration.
	ErrNotConfigured = errors.New("not configured")

	// ErrRunSuperseded indicates a region query was replaced by a newer one.
	ErrRunSuperseded = errors.New("region query superseded")

	// ErrImageTooLarge indicates a blob exceeded the download size cap.
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrNotifierClosed indicates the notification sink has been closed.
	ErrNotifierClosed = errors.New("notifier closed")
)

// Validation failure reasons.
const (
	// ReasonMissing means the field is absent or null.
	ReasonMissing = "missing"

	// ReasonMistyped means the field holds the wrong variant.
	ReasonMistyped = "mistyped"

	// ReasonMalformed means the field has the right type but an unusable value.
	ReasonMalformed = "malformed"
)

// IndexConnectionError means a geo query could not be started or failed
// before its ready signal. It is fatal to that region query.
type IndexConnectionError struct {
	Err error
}

func (e *IndexConnectionError) Error() string {
	return fmt.Sprintf("geo index unavailable: %v", e.Err)
}

func (e *IndexConnectionError) Unwrap() error {
	return e.Err
}

// FetchError is a store-level failure for one key.
type FetchError struct {
	Key GeoKey
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError names the first required field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("field %s %s: %s", e.Field, e.Reason, e.Detail)
	}
	return fmt.Sprintf("field %s %s", e.Field, e.Reason)
}

// Unwrap lets callers match validation failures with ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ImageListError means the blob listing for a reference path failed.
type ImageListError struct {
	Path string
	Err  error
}

func (e *ImageListError) Error() string {
	return fmt.Sprintf("list images under %s: %v", e.Path, e.Err)
}

func (e *ImageListError) Unwrap() error {
	return e.Err
}

// ImageDownloadError means a single blob could not be downloaded.
type ImageDownloadError struct {
	Path string
	Err  error
}

func (e *ImageDownloadError) Error() string {
	return fmt.Sprintf("download image %s: %v", e.Path, e.Err)
}

func (e *ImageDownloadError) Unwrap() error {
	return e.Err
}

// AsValidationError extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
