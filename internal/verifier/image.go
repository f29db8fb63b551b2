package verifier

import (
	"context"
	"encoding/json"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/receipt"
)

// DefaultSuffix is sent when the caller does not provide one.
const DefaultSuffix = "12345678"

// ImageOptions are the form options of an image verification.
type ImageOptions struct {
	AutoVerify bool
	Suffix     string
}

// ImageResult is the outcome of an image verification. Telebirr holds the
// reference lookup when the image yielded a reference and that lookup
// succeeded.
type ImageResult struct {
	Reference string                  `json:"reference,omitempty"`
	Text      string                  `json:"text,omitempty"`
	Raw       map[string]any          `json:"verifyData"`
	Scraped   *receipt.TelebirrFields `json:"scraped,omitempty"`
	Telebirr  map[string]any          `json:"telebirrData,omitempty"`
}

// VerifyImage uploads a receipt screenshot or PDF for verification. When
// the API returns a reference, the Telebirr reference endpoint is queried
// too; a failure there is logged and does not fail the call.
func (c *Client) VerifyImage(ctx context.Context, fileName string, data []byte, opts ImageOptions) (*ImageResult, error) {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}

	var raw map[string]any
	fields := map[string]string{
		"autoVerify": boolField(opts.AutoVerify),
		"suffix":     opts.Suffix,
	}
	if err := c.postMultipart(ctx, EndpointImage, fileName, data, fields, &raw); err != nil {
		return nil, err
	}

	res := &ImageResult{Raw: raw}
	if s, ok := raw["reference"].(string); ok {
		res.Reference = s
	}
	if s, ok := raw["text"].(string); ok {
		res.Text = s
		scraped := receipt.ScrapeTelebirr(s)
		res.Scraped = &scraped
		if b, err := json.Marshal(scraped); err == nil {
			c.logger.Debug("Scraped receipt data", logging.F("scraped", string(b)))
		}
	}

	if res.Reference != "" {
		tb, err := c.VerifyTelebirr(ctx, res.Reference)
		if err != nil {
			c.logger.WithError(err).Warn("Telebirr reference verification failed",
				logging.F(logging.FieldReference, res.Reference))
		} else {
			res.Telebirr = tb
		}
	}

	return res, nil
}

// VerifyTelebirr looks up a Telebirr transaction by reference.
func (c *Client) VerifyTelebirr(ctx context.Context, reference string) (map[string]any, error) {
	var out map[string]any
	if err := c.postJSON(ctx, EndpointTelebirr, map[string]string{"reference": reference}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
