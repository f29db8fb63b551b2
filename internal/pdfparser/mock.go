package pdfparser

import (
	"context"
	"sync"
)

// MockExtractor implements Extractor for tests. It returns Text or Err and
// records the number of calls.
type MockExtractor struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls int
}

// NewMockExtractor creates a MockExtractor with the given result.
func NewMockExtractor(text string, err error) *MockExtractor {
	return &MockExtractor{Text: text, Err: err}
}

// ExtractText returns the predefined text or error.
func (m *MockExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// Calls returns how many times ExtractText was called.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
