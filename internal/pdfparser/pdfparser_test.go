package pdfparser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/parsererror"
)

func stubPdftotext(t *testing.T, out string, err error) *string {
	t.Helper()
	var gotPath string
	orig := runPdftotext
	runPdftotext = func(ctx context.Context, pdfFile string) ([]byte, error) {
		gotPath = pdfFile
		return []byte(out), err
	}
	t.Cleanup(func() { runPdftotext = orig })
	return &gotPath
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n...")))
	assert.False(t, IsPDF([]byte("\x89PNG\r\n")))
	assert.False(t, IsPDF(nil))
}

func TestNew(t *testing.T) {
	logger := logging.NewMockLogger()

	ex, err := New(KindLibrary, logger)
	require.NoError(t, err)
	assert.IsType(t, &LibraryExtractor{}, ex)

	ex, err = New("", logger)
	require.NoError(t, err)
	assert.IsType(t, &LibraryExtractor{}, ex)

	ex, err = New(KindPdftotext, logger)
	require.NoError(t, err)
	assert.IsType(t, &PdftotextExtractor{}, ex)

	_, err = New("ocr", logger)
	assert.Error(t, err)
}

func TestExtractors_RejectNonPDF(t *testing.T) {
	logger := logging.NewMockLogger()
	for _, ex := range []Extractor{NewLibraryExtractor(logger), NewPdftotextExtractor(logger)} {
		_, err := ex.ExtractText(context.Background(), []byte("just some text"))
		var formatErr *parsererror.InvalidFormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, "application/pdf", formatErr.ExpectedFormat)
		assert.Contains(t, formatErr.ActualFormat, "text/plain")
		assert.True(t, parsererror.IsValidation(err))
	}
}

func TestLibraryExtractor_Malformed(t *testing.T) {
	ex := NewLibraryExtractor(logging.NewMockLogger())
	_, err := ex.ExtractText(context.Background(), []byte("%PDF-1.4\nnot really a pdf"))
	var parseErr *parsererror.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "pdf", parseErr.Source)
}

func TestPdftotextExtractor(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		runErr  error
		want    string
		wantErr error
	}{
		{"normalizes output", "  Telebirr   Receipt \r\n\r\n\fAmount\t1,000.00\n", nil, "Telebirr Receipt\nAmount 1,000.00", nil},
		{"blank output", " \n\f\n", nil, "", parsererror.ErrNoText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := stubPdftotext(t, tt.out, tt.runErr)
			ex := NewPdftotextExtractor(logging.NewMockLogger())

			got, err := ex.ExtractText(context.Background(), []byte("%PDF-1.4 fake"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, *path, "receipt-")
		})
	}
}

func TestPdftotextExtractor_ToolFailure(t *testing.T) {
	stubPdftotext(t, "", errors.New("exit status 1"))
	logger := logging.NewMockLogger()
	ex := NewPdftotextExtractor(logger)

	_, err := ex.ExtractText(context.Background(), []byte("%PDF-1.4 fake"))
	var parseErr *parsererror.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "pdftotext", parseErr.Source)
	assert.True(t, logger.HasEntry("ERROR", "Failed to run pdftotext command"))
}

func TestMockExtractor(t *testing.T) {
	m := NewMockExtractor("text", nil)
	got, err := m.ExtractText(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "text", got)

	m.Err = errors.New("boom")
	_, err = m.ExtractText(context.Background(), nil)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 2, m.Calls())
}
