// Package upload hosts receipt files and returns their public URL.
package upload

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"fjacquet/camp-registration/internal/models"
)

// Uploader hosts a receipt file.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (models.ReceiptData, error)
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName reduces a client supplied file name to a safe base name.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "receipt"
	}
	return name
}
