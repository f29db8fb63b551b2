// Package scanner finds receipt documents on disk.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/validation"
)

// receiptExtensions maps the accepted file extensions to their MIME type.
var receiptExtensions = map[string]string{
	".pdf":  validation.MIMEPDF,
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ReceiptFile is one receipt document read from disk.
type ReceiptFile struct {
	Path     string
	Name     string
	MIMEType string
	Data     []byte
}

// ReceiptScanner reads receipt files and directories of receipts.
type ReceiptScanner struct {
	logger logging.Logger
}

// NewReceiptScanner creates a new instance of ReceiptScanner.
func NewReceiptScanner(logger logging.Logger) *ReceiptScanner {
	return &ReceiptScanner{logger: logger}
}

// IsReceiptFile reports whether the file name has a receipt extension.
func IsReceiptFile(name string) bool {
	_, ok := receiptExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ScanPaths reads the given files and walks the given directories. Files
// named explicitly are always read; inside directories only receipt
// extensions are picked up. Results are sorted by path.
func (s *ReceiptScanner) ScanPaths(paths []string) ([]ReceiptFile, error) {
	var files []ReceiptFile

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			s.logger.WithError(err).Error("Failed to stat path", logging.F(logging.FieldPath, p))
			return nil, fmt.Errorf("failed to stat path %s: %w", p, err)
		}

		if info.IsDir() {
			dirFiles, err := s.scanDirectory(p)
			if err != nil {
				return nil, err
			}
			files = append(files, dirFiles...)
			continue
		}

		f, err := s.scanFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *ReceiptScanner) scanDirectory(dir string) ([]ReceiptFile, error) {
	var files []ReceiptFile

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.WithError(err).Warn("Error walking path", logging.F(logging.FieldPath, path))
			return nil
		}
		if d.IsDir() || !IsReceiptFile(path) {
			return nil
		}
		f, err := s.scanFile(path)
		if err != nil {
			return err
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}

	s.logger.Debug("Receipt directory scanned",
		logging.F(logging.FieldPath, dir),
		logging.F(logging.FieldCount, len(files)))
	return files, nil
}

func (s *ReceiptScanner) scanFile(path string) (ReceiptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read file", logging.F(logging.FieldFile, path))
		return ReceiptFile{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	mime := receiptExtensions[strings.ToLower(filepath.Ext(path))]
	return ReceiptFile{
		Path:     path,
		Name:     filepath.Base(path),
		MIMEType: validation.DetectMIME(mime, data),
		Data:     data,
	}, nil
}
