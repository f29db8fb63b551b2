// Package extract implements the extract command.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/camp-registration/cmd/common"
	"fjacquet/camp-registration/cmd/root"
	"fjacquet/camp-registration/internal/config"
	"fjacquet/camp-registration/internal/container"
	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/pdfparser"
	"fjacquet/camp-registration/internal/receipt"
	"fjacquet/camp-registration/internal/registration"
	"fjacquet/camp-registration/internal/scanner"
	"fjacquet/camp-registration/internal/textutils"
)

var (
	text     string
	fileName string
	fields   []string
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract transaction fields from a payment receipt",
	Long: `Extract reads a PDF or image receipt, a directory of receipts or raw
receipt text given with --text. It prints the provider and the transaction
fields and, for Telebirr receipts, the Telebirr record. With --field only
the named fields are printed, one row per file and field.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&text, "text", "", "Receipt text to extract from instead of a document")
	Cmd.Flags().StringVar(&fileName, "file-name", "", "File name used for provider classification (defaults to --input)")
	Cmd.Flags().StringSliceVar(&fields, "field", nil, "Print only these fields (e.g. amount,transactionId)")
}

func run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	cfg, log := root.GetConfig(), root.GetLogger()
	selected, err := ParseFields(fields)
	if err != nil {
		return err
	}
	name := fileName
	if in := root.SharedFlags.Input; name == "" && in != "" && in != "-" {
		name = filepath.Base(in)
	}

	var out any
	if text != "" {
		out = registration.NewExtraction(container.NewReceiptExtractor(cfg), textutils.NormalizeLines(text), name)
	} else {
		docs, closer, err := container.NewDocumentExtractor(ctx, cfg, log)
		if err != nil {
			return err
		}
		if closer != nil {
			defer func() { _ = closer.Close() }()
		}

		if in := root.SharedFlags.Input; in != "" && in != "-" && isDir(in) {
			out, err = Directory(ctx, docs, cfg, log, in)
		} else {
			var data []byte
			if data, err = common.ReadInput(in, stdin); err == nil {
				out, err = Document(ctx, docs, cfg, log, name, data)
			}
		}
		if err != nil {
			return err
		}
	}

	if len(selected) > 0 {
		switch v := out.(type) {
		case *registration.Extraction:
			out = Select([]*registration.Extraction{v}, selected)
		case []*registration.Extraction:
			out = Select(v, selected)
		}
	}

	return common.WriteOutput(root.SharedFlags.Output, stdout, func(w io.Writer) error {
		return common.Render(w, root.SharedFlags.Format, out)
	})
}

// FieldValue is one extracted field of one receipt.
type FieldValue struct {
	File  string `json:"file,omitempty" yaml:"file,omitempty" csv:"file"`
	Field string `json:"field" yaml:"field" csv:"field"`
	Value string `json:"value" yaml:"value" csv:"value"`
}

// ParseFields resolves field names as printed in the extraction output.
func ParseFields(names []string) ([]receipt.Field, error) {
	out := make([]receipt.Field, 0, len(names))
	for _, n := range names {
		f, ok := receipt.ParseField(strings.TrimSpace(n))
		if !ok {
			known := make([]string, 0, len(receipt.AllFields()))
			for _, k := range receipt.AllFields() {
				known = append(known, k.String())
			}
			return nil, fmt.Errorf("unknown field %q, expected one of: %s", n, strings.Join(known, ", "))
		}
		out = append(out, f)
	}
	return out, nil
}

// Select flattens extractions to the requested fields. A field that was
// not found has an empty value.
func Select(exs []*registration.Extraction, fields []receipt.Field) []FieldValue {
	out := make([]FieldValue, 0, len(exs)*len(fields))
	for _, ex := range exs {
		for _, f := range fields {
			fv := FieldValue{File: ex.File, Field: f.String()}
			if v := ex.Fields.Value(f); v != nil {
				fv.Value = *v
			}
			out = append(out, fv)
		}
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Directory extracts every receipt found under dir. Unreadable documents
// are logged and skipped.
func Directory(ctx context.Context, docs pdfparser.Extractor, cfg *config.Config, log logging.Logger, dir string) ([]*registration.Extraction, error) {
	files, err := scanner.NewReceiptScanner(log).ScanPaths([]string{dir})
	if err != nil {
		return nil, err
	}
	out := make([]*registration.Extraction, 0, len(files))
	for _, f := range files {
		ex, err := Document(ctx, docs, cfg, log, f.Name, f.Data)
		if err != nil {
			continue
		}
		out = append(out, ex)
	}
	log.Info("Receipt directory processed",
		logging.F(logging.FieldPath, dir),
		logging.F(logging.FieldCount, len(out)))
	return out, nil
}

// Document reads the text of data with docs and extracts its fields.
func Document(ctx context.Context, docs pdfparser.Extractor, cfg *config.Config, log logging.Logger, name string, data []byte) (*registration.Extraction, error) {
	raw, err := docs.ExtractText(ctx, data)
	if err != nil {
		log.WithError(err).Error("Failed to read receipt", logging.F(logging.FieldFile, name))
		return nil, err
	}
	ex := registration.NewExtraction(container.NewReceiptExtractor(cfg), raw, name)
	log.Info("Receipt fields extracted",
		logging.F(logging.FieldFile, name),
		logging.F(logging.FieldProvider, ex.Provider))
	return ex, nil
}
