package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/camp-registration/cmd/root"
	"fjacquet/camp-registration/internal/config"
	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/pdfparser"
	"fjacquet/camp-registration/internal/receipt"
	"fjacquet/camp-registration/internal/registration"
)

const telebirrText = "Telebirr Payment Receipt\n" +
	"Reference No. CGH1ABCDEF\n" +
	"Settled ETB1000.00\n"

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestDocument(t *testing.T) {
	cfg := loadConfig(t)

	tests := []struct {
		name         string
		text         string
		err          error
		wantProvider string
		wantErr      bool
	}{
		{name: "telebirr", text: telebirrText, wantProvider: receipt.ProviderTelebirr},
		{name: "unknown provider", text: "Bank slip Reference No. AB12345678", wantProvider: ""},
		{name: "extractor failure", err: errors.New("corrupt pdf"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logging.NewMockLogger()
			docs := pdfparser.NewMockExtractor(tt.text, tt.err)

			ex, err := Document(context.Background(), docs, cfg, log, "receipt.pdf", []byte("%PDF-1.4"))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, log.HasEntry("ERROR", "Failed to read receipt"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, ex.Provider)
			assert.True(t, log.HasEntry("INFO", "Receipt fields extracted"))
		})
	}
}

func TestRun_Text(t *testing.T) {
	root.SetConfig(loadConfig(t), logging.NewMockLogger())
	text = telebirrText
	t.Cleanup(func() { text = "" })

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), strings.NewReader(""), &out))

	var ex registration.Extraction
	require.NoError(t, json.Unmarshal(out.Bytes(), &ex))
	assert.Equal(t, receipt.ProviderTelebirr, ex.Provider)
	require.NotNil(t, ex.Telebirr)
	require.NotNil(t, ex.Telebirr.ReferenceNumber)
	assert.Equal(t, "CGH1ABCDEF", *ex.Telebirr.ReferenceNumber)
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.pdf"), []byte("%PDF-1.4 one"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.pdf"), []byte("%PDF-1.4 two"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	docs := pdfparser.NewMockExtractor(telebirrText, nil)
	log := logging.NewMockLogger()

	got, err := Directory(context.Background(), docs, loadConfig(t), log, dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "one.pdf", got[0].File)
	assert.Equal(t, "two.pdf", got[1].File)
	assert.Equal(t, 2, docs.Calls())
	assert.True(t, log.HasEntry("INFO", "Receipt directory processed"))
}

func TestRun_TextFields(t *testing.T) {
	root.SetConfig(loadConfig(t), logging.NewMockLogger())
	text, fileName, fields = telebirrText, "telebirr.pdf", []string{"referenceNumber", "senderName"}
	t.Cleanup(func() { text, fileName, fields = "", "", nil })

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), strings.NewReader(""), &out))

	var got []FieldValue
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []FieldValue{
		{File: "telebirr.pdf", Field: "referenceNumber", Value: "CGH1ABCDEF"},
		{File: "telebirr.pdf", Field: "senderName", Value: ""},
	}, got)
}

func TestParseFields(t *testing.T) {
	got, err := ParseFields([]string{"amount", " transactionId "})
	require.NoError(t, err)
	assert.Equal(t, []receipt.Field{receipt.Amount, receipt.TransactionID}, got)

	got, err = ParseFields(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseFields([]string{"iban"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "iban"`)
	assert.Contains(t, err.Error(), "receiverAccountLastDigit")
}

func TestSelect(t *testing.T) {
	amount := "1,000.00"
	exs := []*registration.Extraction{
		{File: "a.pdf", Fields: receipt.Fields{Amount: &amount}},
		{File: "b.pdf"},
	}

	got := Select(exs, []receipt.Field{receipt.Amount})
	assert.Equal(t, []FieldValue{
		{File: "a.pdf", Field: "amount", Value: "1,000.00"},
		{File: "b.pdf", Field: "amount"},
	}, got)
}
