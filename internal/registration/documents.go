package registration

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
	"fjacquet/camp-registration/internal/receipt"
	"fjacquet/camp-registration/internal/textutils"
	"fjacquet/camp-registration/internal/validation"
)

// Reasons returned when a PDF is readable but not acceptable.
const (
	ReasonNoText      = "No text could be extracted from the PDF"
	ReasonNotTelebirr = "Invalid receipt. Must be an official Telebirr receipt"
)

// ProcessPDF reads an uploaded PDF receipt and accepts it only when it is
// an official Telebirr receipt.
func (s *Service) ProcessPDF(ctx context.Context, name, mime string, data []byte) (*models.ProcessedPDF, error) {
	mime = validation.DetectMIME(mime, data)
	if err := validation.ValidatePDFFile(mime, int64(len(data)), s.maxFileBytes); err != nil {
		return nil, err
	}

	raw, err := s.pdf.ExtractText(ctx, data)
	if err != nil {
		if errors.Is(err, parsererror.ErrNoText) {
			return nil, &parsererror.ValidationError{Field: "file", Reason: ReasonNoText}
		}
		s.logger.WithError(err).Error("Error processing PDF", logging.F(logging.FieldFile, name))
		return nil, fmt.Errorf("error processing PDF: %w", err)
	}

	text := textutils.Normalize(raw)
	if text == "" {
		return nil, &parsererror.ValidationError{Field: "file", Reason: ReasonNoText}
	}
	if !receipt.IsTelebirrText(text) {
		s.logger.Info("Rejected non-Telebirr receipt", logging.F(logging.FieldFile, name))
		return nil, &parsererror.ValidationError{Field: "file", Reason: ReasonNotTelebirr}
	}

	return &models.ProcessedPDF{
		Success:     true,
		FileName:    name,
		FileSize:    int64(len(data)),
		PreviewText: textutils.Preview(text, s.previewChars),
		IsTelebirr:  true,
	}, nil
}

// ScrapePDF returns the text of a PDF with line structure kept.
func (s *Service) ScrapePDF(ctx context.Context, data []byte) (string, error) {
	return s.pdf.ExtractText(ctx, data)
}

// Extraction is the outcome of reading a receipt document.
type Extraction struct {
	File     string                  `json:"file,omitempty" yaml:"file,omitempty"`
	Provider string                  `json:"provider,omitempty" yaml:"provider,omitempty"`
	Text     string                  `json:"text" yaml:"text"`
	Fields   receipt.Fields          `json:"fields" yaml:"fields"`
	Telebirr *receipt.TelebirrFields `json:"telebirr,omitempty" yaml:"telebirr,omitempty"`
}

// NewExtraction classifies text and extracts its fields with e. Telebirr
// receipts also get the Telebirr record.
func NewExtraction(e *receipt.Extractor, text, fileName string) *Extraction {
	ex := &Extraction{
		File:     fileName,
		Provider: ClassifyProvider(receipt.ClassifyInput{Text: text, Filename: fileName}),
		Text:     text,
		Fields:   e.Extract(text),
	}
	if ex.Provider == receipt.ProviderTelebirr {
		tb := receipt.ScrapeTelebirr(text)
		ex.Telebirr = &tb
	}
	return ex
}

// ExtractText runs the field extractor over already available text.
func (s *Service) ExtractText(text, fileName string) *Extraction {
	return NewExtraction(s.receipts, text, fileName)
}

// ExtractDocument reads a PDF or image receipt and extracts its fields.
func (s *Service) ExtractDocument(ctx context.Context, name string, data []byte) (*Extraction, error) {
	text, err := s.documents.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}
	ex := s.ExtractText(text, name)
	s.logger.Debug("Receipt fields extracted",
		logging.F(logging.FieldFile, name),
		logging.F(logging.FieldProvider, ex.Provider))
	return ex, nil
}

// ClassifyProvider names the provider a receipt belongs to, or "" when
// neither applies. Telebirr is checked first. CBE receipts print the bank's
// initials in capitals, which the filename rule also accepts.
func ClassifyProvider(in receipt.ClassifyInput) string {
	switch {
	case receipt.Classify(in, receipt.ProviderTelebirr):
		return receipt.ProviderTelebirr
	case receipt.Classify(in, cbeKeyword):
		return receipt.ProviderCBE
	}
	return ""
}

const cbeKeyword = "CBE"
