// Package container provides dependency injection for the camp registration
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"

	"fjacquet/camp-registration/internal/config"
	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/pdfparser"
	"fjacquet/camp-registration/internal/receipt"
	"fjacquet/camp-registration/internal/registration"
	"fjacquet/camp-registration/internal/store"
	"fjacquet/camp-registration/internal/transcriber"
	"fjacquet/camp-registration/internal/upload"
	"fjacquet/camp-registration/internal/verifier"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     store.RegistrationStore
	uploader  upload.Uploader
	pdf       pdfparser.Extractor
	documents pdfparser.Extractor
	verifier  *verifier.Client
	receipts  *receipt.Extractor
	service   *registration.Service

	closers []io.Closer
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(ctx, cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with a caller supplied logger.
func NewContainerWithLogger(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	c := &Container{logger: logger, config: cfg}
	built := false
	defer func() {
		if !built {
			_ = c.Close()
		}
	}()

	var err error

	if c.store, err = newStore(ctx, cfg, logger); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.store)

	if c.uploader, err = newUploader(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if cl, ok := c.uploader.(io.Closer); ok {
		c.closers = append(c.closers, cl)
	}

	router, closer, err := NewDocumentExtractor(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}
	c.pdf, c.documents = router.PDF, router

	// Leave the interface nil when verification is disabled.
	var v registration.Verifier
	if cfg.Verify.APIKey != "" {
		c.verifier = verifier.NewClient(cfg.Verify.BaseURL, cfg.Verify.APIKey, cfg.VerifyTimeout(), nil, logger)
		v = c.verifier
	} else {
		logger.Warn("VERIFY_API_KEY not set, payment verification disabled")
	}

	c.receipts = NewReceiptExtractor(cfg)

	c.service, err = registration.NewService(registration.Deps{
		Store:     c.store,
		Uploader:  c.uploader,
		PDF:       c.pdf,
		Documents: c.documents,
		Verifier:  v,
		Receipts:  c.receipts,
		Logger:    logger,
	}, registration.Options{
		MaxFileBytes: cfg.MaxUploadBytes(),
		PreviewChars: cfg.Server.PreviewChars,
		Image: verifier.ImageOptions{
			AutoVerify: cfg.Verify.AutoVerify,
			Suffix:     cfg.Verify.Suffix,
		},
		CheckoutURL: cfg.Payment.CheckoutURL,
	})
	if err != nil {
		return nil, err
	}

	built = true
	logger.Info("Container initialized successfully",
		logging.F("store", cfg.Store.Driver),
		logging.F("upload", cfg.Upload.Provider),
		logging.F("pdf", cfg.PDF.Extractor),
		logging.F("verify_enabled", c.verifier != nil))
	return c, nil
}

// NewDocumentExtractor builds the PDF extractor and, when AI is enabled, the
// image transcriber behind a MIME router. The returned closer is nil unless
// a transcriber was created.
func NewDocumentExtractor(ctx context.Context, cfg *config.Config, logger logging.Logger) (*transcriber.MIMERouter, io.Closer, error) {
	pdf, err := pdfparser.New(cfg.PDF.Extractor, logger)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.AI.Enabled {
		logger.Info("Image transcription disabled")
		return transcriber.NewMIMERouter(pdf, nil, logger), nil, nil
	}
	gt, err := transcriber.NewGeminiTranscriber(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AITimeout(), logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Image transcription enabled", logging.F("model", cfg.AI.Model))
	return transcriber.NewMIMERouter(pdf, gt, logger), gt, nil
}

// NewReceiptExtractor returns the field extractor configured with the
// camp's receiving account.
func NewReceiptExtractor(cfg *config.Config) *receipt.Extractor {
	return receipt.NewExtractor(receipt.WithDefaultReceiverAccount(cfg.Receipt.DefaultReceiverAccount))
}

func newStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.RegistrationStore, error) {
	switch cfg.Store.Driver {
	case "firestore":
		return store.NewFirestoreStore(ctx, cfg.Store.FirestoreProject, cfg.Store.FirestoreCollection, logger)
	case "sqlite", "":
		return store.NewSQLiteStore(ctx, cfg.Store.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

func newUploader(ctx context.Context, cfg *config.Config, logger logging.Logger) (upload.Uploader, error) {
	switch cfg.Upload.Provider {
	case "gcs":
		return upload.NewGCSUploader(ctx, cfg.Upload.GCSBucket, logger)
	case "imgbb", "":
		if cfg.ImgBB.APIKey == "" {
			logger.Warn("IMGBB_API_KEY not set, receipt uploads will be rejected by the host")
		}
		return upload.NewImgBBClient(cfg.ImgBB.Endpoint, cfg.ImgBB.APIKey, nil, logger), nil
	default:
		return nil, fmt.Errorf("unknown upload provider: %s", cfg.Upload.Provider)
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the registration store.
func (c *Container) GetStore() store.RegistrationStore {
	return c.store
}

// GetUploader returns the receipt file host.
func (c *Container) GetUploader() upload.Uploader {
	return c.uploader
}

// GetPDFExtractor returns the PDF text extractor.
func (c *Container) GetPDFExtractor() pdfparser.Extractor {
	return c.pdf
}

// GetDocumentExtractor returns the extractor that accepts PDFs and, when
// enabled, images.
func (c *Container) GetDocumentExtractor() pdfparser.Extractor {
	return c.documents
}

// GetVerifier returns the verification API client, or nil when disabled.
func (c *Container) GetVerifier() *verifier.Client {
	return c.verifier
}

// GetReceiptExtractor returns the configured field extractor.
func (c *Container) GetReceiptExtractor() *receipt.Extractor {
	return c.receipts
}

// GetService returns the registration service.
func (c *Container) GetService() *registration.Service {
	return c.service
}

// Close releases every client the container opened, in reverse order.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	c.logger.Info("Container closed")
	return first
}
