// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Render.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// ReadInput reads the named file, or stdin when path is empty or "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// WriteOutput calls write with the named file, or stdout when path is empty
// or "-".
func WriteOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Render encodes v in the requested format. CSV needs a slice of structs.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return gocsv.Marshal(v, w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Decode reads a JSON or YAML document into v. YAML is a superset of JSON
// so a single decoder handles both.
func Decode(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
