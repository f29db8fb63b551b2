package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/parsererror"
)

// runPdftotext runs the pdftotext tool on a file and returns its stdout.
// Tests replace it.
var runPdftotext = func(ctx context.Context, pdfFile string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", pdfFile, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("error running pdftotext: %w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// PdftotextExtractor shells out to poppler's pdftotext. It requires the
// tool to be installed.
type PdftotextExtractor struct {
	logger logging.Logger
}

// NewPdftotextExtractor creates a PdftotextExtractor.
func NewPdftotextExtractor(logger logging.Logger) *PdftotextExtractor {
	return &PdftotextExtractor{logger: logger}
}

// ExtractText implements Extractor.
func (e *PdftotextExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := checkHeader(data); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "receipt-*.pdf")
	if err != nil {
		return "", fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			e.logger.WithError(err).Warn("Failed to remove temp file", logging.F(logging.FieldFile, tmp.Name()))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("could not write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("could not close temp file: %w", err)
	}

	out, err := runPdftotext(ctx, tmp.Name())
	if err != nil {
		e.logger.WithError(err).Error("Failed to run pdftotext command")
		return "", &parsererror.ParseError{Source: "pdftotext", File: "upload", Err: err}
	}

	return finish(string(out))
}
