// Package verifier talks to the remote payment verification API.
package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/parsererror"
)

// Endpoints of the verification API.
const (
	EndpointImage    = "/verify-image"
	EndpointTelebirr = "/verify-telebirr"
	EndpointCBE      = "/verify-cbe"
)

const apiKeyHeader = "x-api-key"

// Client calls the verification API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient creates a Client. httpClient may be nil, in which case one with
// the given timeout is used.
func NewClient(baseURL, apiKey string, timeout time.Duration, httpClient *http.Client, logger logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// postJSON sends payload as JSON to endpoint and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint, out)
}

// postMultipart sends a file and form fields to endpoint.
func (c *Client) postMultipart(ctx context.Context, endpoint, fileName string, data []byte, fields map[string]string, out any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, Err: err}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return &parsererror.VerificationError{Endpoint: endpoint, Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &body)
	if err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, endpoint, out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	req.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close response body")
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("Verification API call",
		logging.F(logging.FieldURL, endpoint),
		logging.F(logging.FieldStatus, resp.StatusCode),
		logging.F(logging.FieldDuration, time.Since(start).String()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &parsererror.VerificationError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &parsererror.VerificationError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage pulls a human readable message out of an error body.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func boolField(b bool) string {
	return strconv.FormatBool(b)
}
