package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
)

const providerGCS = "gcs"

// ObjectPrefix is the folder receipts are stored under in the bucket.
const ObjectPrefix = "receipts/"

// GCSUploader stores receipts in a Google Cloud Storage bucket. It assumes
// Application Default Credentials are configured.
type GCSUploader struct {
	client    *storage.Client
	bucket    string
	logger    logging.Logger
	newWriter func(ctx context.Context, object, contentType string) io.WriteCloser
	now       func() time.Time
}

// NewGCSUploader creates a storage client for bucket.
func NewGCSUploader(ctx context.Context, bucket string, logger logging.Logger) (*GCSUploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	u := &GCSUploader{client: client, bucket: bucket, logger: logger, now: time.Now}
	u.newWriter = func(ctx context.Context, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return u, nil
}

// Upload implements Uploader.
func (u *GCSUploader) Upload(ctx context.Context, name string, data []byte) (models.ReceiptData, error) {
	name = SanitizeFileName(name)
	object := ObjectPrefix + uuid.NewString() + "-" + name
	contentType := http.DetectContentType(data)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := u.newWriter(ctx, object, contentType)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return models.ReceiptData{}, &parsererror.UploadError{Provider: providerGCS, File: name, Err: fmt.Errorf("write object: %w", err)}
	}
	// The object is only committed on Close.
	if err := w.Close(); err != nil {
		return models.ReceiptData{}, &parsererror.UploadError{Provider: providerGCS, File: name, Err: fmt.Errorf("close object writer: %w", err)}
	}

	u.logger.Info("Uploaded receipt",
		logging.F(logging.FieldProvider, providerGCS),
		logging.F(logging.FieldFile, object),
		logging.F(logging.FieldFileSize, len(data)))

	return models.ReceiptData{
		URL:        PublicURL(u.bucket, object),
		FileName:   name,
		FileSize:   int64(len(data)),
		MIMEType:   contentType,
		UploadedAt: u.now().UTC(),
	}, nil
}

// Close releases the storage client.
func (u *GCSUploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}

// PublicURL returns the public HTTPS URL of an object.
func PublicURL(bucket, object string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + (&url.URL{Path: object}).EscapedPath()
}
