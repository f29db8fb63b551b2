package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
)

const providerImgBB = "imgbb"

// ImgBBClient uploads images to the ImgBB hosting API.
type ImgBBClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
	now        func() time.Time
}

// NewImgBBClient creates a client. httpClient may be nil.
func NewImgBBClient(endpoint, apiKey string, httpClient *http.Client, logger logging.Logger) *ImgBBClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ImgBBClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

type imgbbResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
		DeleteURL  string `json:"delete_url"`
	} `json:"data"`
	Success    bool `json:"success"`
	StatusCode int  `json:"status_code"`
	Error      struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload implements Uploader.
func (c *ImgBBClient) Upload(ctx context.Context, name string, data []byte) (models.ReceiptData, error) {
	name = SanitizeFileName(name)
	fail := func(err error) (models.ReceiptData, error) {
		return models.ReceiptData{}, &parsererror.UploadError{Provider: providerImgBB, File: name, Err: err}
	}

	if c.apiKey == "" {
		return fail(fmt.Errorf("IMGBB_API_KEY not set"))
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", name)
	if err != nil {
		return fail(err)
	}
	if _, err := part.Write(data); err != nil {
		return fail(err)
	}
	if err := mw.Close(); err != nil {
		return fail(err)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fail(fmt.Errorf("invalid endpoint: %w", err))
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &body)
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close response body")
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("read response: %w", err))
	}

	var out imgbbResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fail(fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}
	if resp.StatusCode != http.StatusOK || !out.Success || out.Data.URL == "" {
		msg := out.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fail(fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	c.logger.Info("Uploaded receipt",
		logging.F(logging.FieldProvider, providerImgBB),
		logging.F(logging.FieldFile, name),
		logging.F(logging.FieldFileSize, len(data)))

	return models.ReceiptData{
		URL:        out.Data.URL,
		DeleteURL:  out.Data.DeleteURL,
		FileName:   name,
		FileSize:   int64(len(data)),
		MIMEType:   http.DetectContentType(data),
		UploadedAt: c.now().UTC(),
	}, nil
}
