package upload

import (
	"context"
	"sync"
	"time"

	"fjacquet/camp-registration/internal/models"
)

// MockUploader records uploads and returns a fixed base URL.
type MockUploader struct {
	BaseURL string
	Err     error

	mu    sync.Mutex
	names []string
}

// Upload implements Uploader.
func (m *MockUploader) Upload(ctx context.Context, name string, data []byte) (models.ReceiptData, error) {
	m.mu.Lock()
	m.names = append(m.names, name)
	m.mu.Unlock()
	if m.Err != nil {
		return models.ReceiptData{}, m.Err
	}
	name = SanitizeFileName(name)
	return models.ReceiptData{
		URL:        m.BaseURL + "/" + name,
		FileName:   name,
		FileSize:   int64(len(data)),
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Uploaded returns the names passed to Upload.
func (m *MockUploader) Uploaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}
