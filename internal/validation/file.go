package validation

import (
	"fmt"
	"net/http"
	"strings"

	"fjacquet/camp-registration/internal/parsererror"
)

// DefaultMaxFileBytes is the receipt upload limit.
const DefaultMaxFileBytes int64 = 5 * 1024 * 1024

// MIMEPDF is the content type of PDF receipts.
const MIMEPDF = "application/pdf"

// DetectMIME returns declared when it is set and specific, otherwise the
// type sniffed from data.
func DetectMIME(declared string, data []byte) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

func checkSize(size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if size == 0 {
		return &parsererror.ValidationError{Field: "file", Reason: "No file uploaded"}
	}
	if size > maxBytes {
		return &parsererror.ValidationError{Field: "file", Reason: fmt.Sprintf("File size must be less than %dMB", maxBytes/(1024*1024))}
	}
	return nil
}

// ValidateReceiptFile accepts images and PDFs up to maxBytes.
func ValidateReceiptFile(mime string, size, maxBytes int64) error {
	if err := checkSize(size, maxBytes); err != nil {
		return err
	}
	if !strings.HasPrefix(mime, "image/") && mime != MIMEPDF {
		return &parsererror.ValidationError{Field: "file", Reason: "Invalid file type. Please upload an image or PDF file."}
	}
	return nil
}

// ValidatePDFFile accepts PDFs up to maxBytes.
func ValidatePDFFile(mime string, size, maxBytes int64) error {
	if err := checkSize(size, maxBytes); err != nil {
		return err
	}
	if mime != MIMEPDF {
		return &parsererror.ValidationError{Field: "file", Reason: "Only PDF files are allowed"}
	}
	return nil
}
