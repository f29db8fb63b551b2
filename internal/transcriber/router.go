package transcriber

import (
	"context"
	"net/http"
	"strings"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/parsererror"
	"fjacquet/camp-registration/internal/pdfparser"
)

// MIMERouter dispatches a document to the PDF extractor or the image
// transcriber based on its sniffed content type.
type MIMERouter struct {
	PDF    pdfparser.Extractor
	Image  pdfparser.Extractor // nil when transcription is disabled
	logger logging.Logger
}

// NewMIMERouter creates a router. image may be nil.
func NewMIMERouter(pdf, image pdfparser.Extractor, logger logging.Logger) *MIMERouter {
	return &MIMERouter{PDF: pdf, Image: image, logger: logger}
}

// ExtractText implements pdfparser.Extractor.
func (r *MIMERouter) ExtractText(ctx context.Context, data []byte) (string, error) {
	mime := http.DetectContentType(data)
	switch {
	case pdfparser.IsPDF(data):
		return r.PDF.ExtractText(ctx, data)
	case strings.HasPrefix(mime, "image/"):
		if r.Image == nil {
			r.logger.Warn("Image receipt received but transcription is disabled",
				logging.F(logging.FieldMIMEType, mime))
			return "", &parsererror.ValidationError{Field: "file", Reason: "image receipts cannot be read, upload the PDF receipt instead"}
		}
		return r.Image.ExtractText(ctx, data)
	default:
		return "", &parsererror.InvalidFormatError{File: "upload", ExpectedFormat: "application/pdf or image/*", ActualFormat: mime}
	}
}
