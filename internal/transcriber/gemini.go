// Package transcriber reads image receipts with a multimodal model so they
// can go through the same text pipeline as PDF receipts.
package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/parsererror"
	"fjacquet/camp-registration/internal/textutils"
)

const prompt = `Transcribe all text printed on this payment receipt.
Keep labels and values on the lines where they appear, e.g. "Amount 1,000.00".
Reply with the transcription only, no commentary.`

// generator is the part of genai.GenerativeModel used here.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiTranscriber implements pdfparser.Extractor for images using Gemini.
type GeminiTranscriber struct {
	client  *genai.Client
	model   generator
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiTranscriber creates a transcriber for the given model.
func NewGeminiTranscriber(ctx context.Context, apiKey, model string, timeout time.Duration, logger logging.Logger) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	return &GeminiTranscriber{client: client, model: m, timeout: timeout, logger: logger}, nil
}

// ExtractText transcribes a PNG, JPEG, WebP or GIF image.
func (g *GeminiTranscriber) ExtractText(ctx context.Context, data []byte) (string, error) {
	mime := http.DetectContentType(data)
	format, ok := strings.CutPrefix(mime, "image/")
	if !ok {
		return "", &parsererror.InvalidFormatError{File: "upload", ExpectedFormat: "image/*", ActualFormat: mime}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.ImageData(format, data), genai.Text(prompt))
	if err != nil {
		return "", &parsererror.ParseError{Source: "gemini", File: "upload", Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &parsererror.ParseError{Source: "gemini", File: "upload", Err: fmt.Errorf("no response from Gemini API")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
			sb.WriteByte('\n')
		}
	}

	g.logger.Debug("Transcribed image receipt",
		logging.F(logging.FieldMIMEType, mime),
		logging.F(logging.FieldDuration, time.Since(start).String()))

	text := textutils.NormalizeLines(sb.String())
	if text == "" {
		return "", parsererror.ErrNoText
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiTranscriber) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
