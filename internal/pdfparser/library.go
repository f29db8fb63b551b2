package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dslipak/pdf"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/parsererror"
)

// LibraryExtractor reads PDFs in process with github.com/dslipak/pdf.
type LibraryExtractor struct {
	logger logging.Logger
}

// NewLibraryExtractor creates a LibraryExtractor.
func NewLibraryExtractor(logger logging.Logger) *LibraryExtractor {
	return &LibraryExtractor{logger: logger}
}

// ExtractText implements Extractor.
func (e *LibraryExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if err := checkHeader(data); err != nil {
		return "", err
	}

	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &parsererror.ParseError{Source: "pdf", File: "upload", Err: fmt.Errorf("malformed document: %v", r)}
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &parsererror.ParseError{Source: "pdf", File: "upload", Err: err}
	}

	var sb strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			e.logger.WithError(err).Warn("Skipping unreadable page", logging.F("page", i))
			continue
		}
		for _, row := range rows {
			sb.WriteString(joinWords(row.Content))
			sb.WriteByte('\n')
		}
	}

	e.logger.Debug("Extracted PDF text",
		logging.F("pages", doc.NumPage()),
		logging.F(logging.FieldCount, sb.Len()))

	return finish(sb.String())
}

// joinWords concatenates the text runs of a row, inserting a space where
// the horizontal gap between runs is wider than a fraction of the font size.
func joinWords(words []pdf.Text) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			prev := words[i-1]
			if w.X-(prev.X+prev.W) > prev.FontSize*0.2 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(w.S)
	}
	return sb.String()
}
