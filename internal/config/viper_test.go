package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp isolates a test from any config.yaml in the working tree.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Server.MaxUploadMB)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes())
	assert.Equal(t, 1000, cfg.Server.PreviewChars)
	assert.Equal(t, "imgbb", cfg.Upload.Provider)
	assert.Equal(t, "https://api.imgbb.com/1/upload", cfg.ImgBB.Endpoint)
	assert.Equal(t, "https://verifyapi.leulzenebe.pro", cfg.Verify.BaseURL)
	assert.True(t, cfg.Verify.AutoVerify)
	assert.Equal(t, "12345678", cfg.Verify.Suffix)
	assert.Equal(t, DefaultCheckoutURL, cfg.Payment.CheckoutURL)
	assert.Equal(t, 30*time.Second, cfg.VerifyTimeout())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "registration-public", cfg.Store.FirestoreCollection)
	assert.Equal(t, "library", cfg.PDF.Extractor)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, DefaultReceiverAccount, cfg.Receipt.DefaultReceiverAccount)
	assert.Equal(t, ",", cfg.Export.Delimiter)
	assert.False(t, cfg.BigQueryEnabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)

	t.Setenv("CAMP_LOG_LEVEL", "debug")
	t.Setenv("CAMP_LOG_FORMAT", "json")
	t.Setenv("CAMP_SERVER_ADDR", ":8080")
	t.Setenv("CAMP_STORE_DRIVER", "firestore")
	t.Setenv("CAMP_STORE_FIRESTORE_PROJECT", "camp-project")
	t.Setenv("CAMP_AI_ENABLED", "true")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("IMGBB_API_KEY", "imgbb-key")
	t.Setenv("VERIFY_API_KEY", "verify-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "firestore", cfg.Store.Driver)
	assert.Equal(t, "camp-project", cfg.Store.FirestoreProject)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "gemini-key", cfg.AI.APIKey)
	assert.Equal(t, "imgbb-key", cfg.ImgBB.APIKey)
	assert.Equal(t, "verify-key", cfg.Verify.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)

	content := `
log:
  level: warn
upload:
  provider: gcs
  gcs_bucket: camp-receipts
verify:
  timeout_seconds: 10
  suffix: "87654321"
receipt:
  default_receiver_account: "1000999999999"
`
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "gcs", cfg.Upload.Provider)
	assert.Equal(t, "camp-receipts", cfg.Upload.GCSBucket)
	assert.Equal(t, 10*time.Second, cfg.VerifyTimeout())
	assert.Equal(t, "87654321", cfg.Verify.Suffix)
	assert.Equal(t, "1000999999999", cfg.Receipt.DefaultReceiverAccount)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := chdirTemp(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad level", map[string]string{"CAMP_LOG_LEVEL": "chatty"}, "invalid log level"},
		{"bad format", map[string]string{"CAMP_LOG_FORMAT": "xml"}, "invalid log format"},
		{"bad upload provider", map[string]string{"CAMP_UPLOAD_PROVIDER": "s3"}, "invalid upload provider"},
		{"gcs without bucket", map[string]string{"CAMP_UPLOAD_PROVIDER": "gcs"}, "upload.gcs_bucket required"},
		{"bad store", map[string]string{"CAMP_STORE_DRIVER": "mongo"}, "invalid store driver"},
		{"firestore without project", map[string]string{"CAMP_STORE_DRIVER": "firestore"}, "store.firestore_project required"},
		{"bad extractor", map[string]string{"CAMP_PDF_EXTRACTOR": "ocr"}, "invalid pdf extractor"},
		{"upload limit", map[string]string{"CAMP_SERVER_MAX_UPLOAD_MB": "0"}, "server.max_upload_mb"},
		{"ai without key", map[string]string{"CAMP_AI_ENABLED": "true"}, "GEMINI_API_KEY required"},
		{"long delimiter", map[string]string{"CAMP_EXPORT_DELIMITER": ";;"}, "export.delimiter"},
		{"relative checkout url", map[string]string{"CAMP_PAYMENT_CHECKOUT_URL": "/pay"}, "payment.checkout_url"},
		{"checkout url scheme", map[string]string{"CAMP_PAYMENT_CHECKOUT_URL": "ftp://pay.example/x"}, "payment.checkout_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv("GEMINI_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CAMP_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("CAMP_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("CAMP_TEST_VALUE_MISSING", "fallback"))
}
