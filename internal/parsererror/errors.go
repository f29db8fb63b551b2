// Package parsererror defines the typed errors returned by the receipt,
// upload, verification and registration layers.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNoText is returned when a document was read but contained no
// extractable text.
var ErrNoText = errors.New("no text could be extracted from the document")

// ParseError wraps a failure while turning a document into text.
type ParseError struct {
	Source string // extractor name, e.g. "pdf" or "gemini"
	File   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to extract text from '%s': %v", e.Source, e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError reports an input that is not the expected document type.
type InvalidFormatError struct {
	File           string
	ExpectedFormat string
	ActualFormat   string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualFormat != "" {
		return fmt.Sprintf("invalid format for '%s': expected %s, got %s", e.File, e.ExpectedFormat, e.ActualFormat)
	}
	return fmt.Sprintf("invalid format for '%s': expected %s", e.File, e.ExpectedFormat)
}

// ValidationError reports a rejected form value or file.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// UploadError wraps a failure of the file hosting service.
type UploadError struct {
	Provider string
	File     string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload to %s failed for '%s': %v", e.Provider, e.File, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// VerificationError reports a failed call to the remote verification API.
type VerificationError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *VerificationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("verification via %s failed: %v", e.Endpoint, e.Err)
	case e.Message != "":
		return fmt.Sprintf("verification via %s failed with status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("verification via %s failed with status %d", e.Endpoint, e.StatusCode)
	}
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing registration.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("registration %s not found", e.ID)
}

// IsValidation reports whether err is, or wraps, a ValidationError or an
// InvalidFormatError. Both map to client errors at the HTTP boundary.
func IsValidation(err error) bool {
	var v *ValidationError
	var f *InvalidFormatError
	return errors.As(err, &v) || errors.As(err, &f) || errors.Is(err, ErrNoText)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
