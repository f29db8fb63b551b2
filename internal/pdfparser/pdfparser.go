// Package pdfparser turns uploaded receipt documents into plain text.
package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/parsererror"
	"fjacquet/camp-registration/internal/textutils"
)

// Extractor defines the interface for extracting text from a document.
// Implementations return text with line structure preserved; callers
// normalize further as needed.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Extractor kinds accepted by New.
const (
	KindLibrary   = "library"
	KindPdftotext = "pdftotext"
)

const pdfHeader = "%PDF-"

// IsPDF reports whether data starts with the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte(pdfHeader))
}

// New returns the extractor configured by kind.
func New(kind string, logger logging.Logger) (Extractor, error) {
	switch kind {
	case KindLibrary, "":
		return NewLibraryExtractor(logger), nil
	case KindPdftotext:
		return NewPdftotextExtractor(logger), nil
	default:
		return nil, fmt.Errorf("unknown pdf extractor: %s", kind)
	}
}

func checkHeader(data []byte) error {
	if IsPDF(data) {
		return nil
	}
	return &parsererror.InvalidFormatError{
		File:           "upload",
		ExpectedFormat: "application/pdf",
		ActualFormat:   http.DetectContentType(data),
	}
}

// finish normalizes extracted text and rejects documents without any.
func finish(text string) (string, error) {
	text = textutils.NormalizeLines(text)
	if text == "" {
		return "", parsererror.ErrNoText
	}
	return text, nil
}
