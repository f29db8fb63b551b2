// Package registration implements the camp registration flows: submitting
// the form, hosting the payment receipt, reading receipt documents and
// verifying the payment with the remote API.
package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
	"fjacquet/camp-registration/internal/pdfparser"
	"fjacquet/camp-registration/internal/receipt"
	"fjacquet/camp-registration/internal/store"
	"fjacquet/camp-registration/internal/upload"
	"fjacquet/camp-registration/internal/validation"
	"fjacquet/camp-registration/internal/verifier"
)

// DefaultPreviewChars is the length of the text preview returned for a
// processed PDF.
const DefaultPreviewChars = 1000

// Verifier is the subset of the verification API used by the service.
type Verifier interface {
	VerifyImage(ctx context.Context, fileName string, data []byte, opts verifier.ImageOptions) (*verifier.ImageResult, error)
	VerifyTelebirr(ctx context.Context, reference string) (map[string]any, error)
	VerifyCBE(ctx context.Context, req verifier.CBERequest) (*verifier.CBEResponse, error)
}

// Deps are the collaborators of a Service. PDF reads PDF documents only,
// Documents reads anything the deployment supports (PDF and, when
// transcription is enabled, images).
type Deps struct {
	Store     store.RegistrationStore
	Uploader  upload.Uploader
	PDF       pdfparser.Extractor
	Documents pdfparser.Extractor
	Verifier  Verifier
	Receipts  *receipt.Extractor
	Logger    logging.Logger
}

// Options tune a Service. Zero values select the defaults.
type Options struct {
	MaxFileBytes int64
	PreviewChars int
	Image        verifier.ImageOptions
	// CheckoutURL is the payment page shown after registering.
	CheckoutURL string
}

// Service runs the registration flows.
type Service struct {
	store     store.RegistrationStore
	uploader  upload.Uploader
	pdf       pdfparser.Extractor
	documents pdfparser.Extractor
	verifier  Verifier
	receipts  *receipt.Extractor
	logger    logging.Logger

	maxFileBytes int64
	previewChars int
	imageOpts    verifier.ImageOptions
	checkoutURL  string

	now func() time.Time
}

// NewService wires a Service. Store, Uploader, PDF and Logger are required;
// Documents defaults to PDF and Receipts to the default extractor.
func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("registration store cannot be nil")
	}
	if deps.Uploader == nil {
		return nil, fmt.Errorf("receipt uploader cannot be nil")
	}
	if deps.PDF == nil {
		return nil, fmt.Errorf("pdf extractor cannot be nil")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if deps.Documents == nil {
		deps.Documents = deps.PDF
	}
	if deps.Receipts == nil {
		deps.Receipts = receipt.NewExtractor()
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = validation.DefaultMaxFileBytes
	}
	if opts.PreviewChars <= 0 {
		opts.PreviewChars = DefaultPreviewChars
	}

	return &Service{
		store:        deps.Store,
		uploader:     deps.Uploader,
		pdf:          deps.PDF,
		documents:    deps.Documents,
		verifier:     deps.Verifier,
		receipts:     deps.Receipts,
		logger:       deps.Logger,
		maxFileBytes: opts.MaxFileBytes,
		previewChars: opts.PreviewChars,
		imageOpts:    opts.Image,
		checkoutURL:  opts.CheckoutURL,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// Submit validates the form and stores a new registration carrying the
// already uploaded receipt.
func (s *Service) Submit(ctx context.Context, form validation.Form, rcpt *models.ReceiptData) (*models.Registration, error) {
	if err := validation.ValidateForm(form); err != nil {
		return nil, err
	}
	if rcpt == nil {
		rcpt = &models.ReceiptData{}
	}

	uploadedAt := rcpt.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = s.now()
	}
	phone := form.Phone()
	reg := &models.Registration{
		FullName:          strings.TrimSpace(form.FullName),
		Age:               form.Age,
		Gender:            form.Gender,
		ParentName:        strings.TrimSpace(form.ParentName),
		Phone:             phone,
		EmergencyContact:  phone,
		Grade:             form.Grade,
		Hobbies:           strings.TrimSpace(form.Hobbies),
		Allergies:         strings.TrimSpace(form.Allergies),
		ReceiptURL:        rcpt.URL,
		ReceiptFileName:   rcpt.FileName,
		ReceiptUploadedAt: &uploadedAt,
		PaymentStatus:     models.PaymentPending,
	}
	if !reg.HasReceipt() {
		return nil, &parsererror.ValidationError{Field: "receipt", Reason: "Please upload your payment receipt before submitting"}
	}

	id, err := s.store.Create(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}
	reg.ID = id

	s.logger.Info("Registration submitted",
		logging.F(logging.FieldRegistrationID, id),
		logging.F(logging.FieldFile, rcpt.FileName))
	return reg, nil
}

// CheckoutURL returns the payment page, or "" when none is configured.
func (s *Service) CheckoutURL() string {
	return s.checkoutURL
}

// UploadReceipt checks the receipt file and hands it to the file host.
func (s *Service) UploadReceipt(ctx context.Context, name, mime string, data []byte) (models.ReceiptData, error) {
	mime = validation.DetectMIME(mime, data)
	if err := validation.ValidateReceiptFile(mime, int64(len(data)), s.maxFileBytes); err != nil {
		return models.ReceiptData{}, err
	}

	start := time.Now()
	rd, err := s.uploader.Upload(ctx, name, data)
	if err != nil {
		s.logger.WithError(err).Error("Receipt upload failed", logging.F(logging.FieldFile, name))
		return models.ReceiptData{}, err
	}
	rd.MIMEType = mime
	if rd.FileSize == 0 {
		rd.FileSize = int64(len(data))
	}

	s.logger.Info("Receipt uploaded",
		logging.F(logging.FieldFile, rd.FileName),
		logging.F(logging.FieldFileSize, rd.FileSize),
		logging.F(logging.FieldURL, rd.URL),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return rd, nil
}

// AttachReceipt records a hosted receipt on an existing registration and
// moves it to payment_pending_verification.
func (s *Service) AttachReceipt(ctx context.Context, id string, rcpt models.ReceiptData) error {
	if rcpt.URL == "" {
		return &parsererror.ValidationError{Field: "receipt", Reason: "receipt URL is required"}
	}
	uploadedAt := rcpt.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = s.now()
	}

	fields := map[string]any{
		models.FieldReceiptURL:        rcpt.URL,
		models.FieldReceiptFileName:   rcpt.FileName,
		models.FieldReceiptUploadedAt: uploadedAt,
		models.FieldStatus:            models.StatusPaymentPendingVerification,
	}
	if err := s.store.Update(ctx, id, fields); err != nil {
		return fmt.Errorf("failed to attach receipt: %w", err)
	}

	s.logger.Info("Receipt attached",
		logging.F(logging.FieldRegistrationID, id),
		logging.F(logging.FieldURL, rcpt.URL))
	return nil
}

// Get returns one registration.
func (s *Service) Get(ctx context.Context, id string) (*models.Registration, error) {
	return s.store.Get(ctx, id)
}

// List returns every registration, oldest first.
func (s *Service) List(ctx context.Context) ([]models.Registration, error) {
	return s.store.List(ctx)
}
