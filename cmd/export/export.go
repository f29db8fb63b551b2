// Package export implements the export command.
package export

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"fjacquet/camp-registration/cmd/common"
	"fjacquet/camp-registration/cmd/root"
	"fjacquet/camp-registration/internal/export"
	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
)

// TargetBigQuery streams rows to the configured BigQuery table.
const TargetBigQuery = "bigquery"

var (
	target        string
	paymentStatus string
)

// Sink receives registrations for a remote target.
type Sink interface {
	Put(ctx context.Context, regs []models.Registration) error
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export registrations to CSV, XLSX or BigQuery",
	Long: `Export writes every stored registration as a CSV or XLSX file (to --output
or stdout) or streams them into the BigQuery table configured under export.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := root.GetContainer(ctx)
		if err != nil {
			return err
		}
		cfg := c.GetConfig()
		if r, _ := utf8.DecodeRuneInString(cfg.Export.Delimiter); r != utf8.RuneError {
			export.Delimiter = r
		}

		regs, err := c.GetService().List(ctx)
		if err != nil {
			return err
		}
		regs = Filter(regs, models.PaymentStatus(paymentStatus))

		if target == TargetBigQuery {
			if !cfg.BigQueryEnabled() {
				return fmt.Errorf("export.bigquery_project is not configured")
			}
			sink, err := export.NewBigQuerySink(ctx, cfg.Export.BigQueryProject, cfg.Export.BigQueryDataset, cfg.Export.BigQueryTable, c.GetLogger())
			if err != nil {
				return err
			}
			defer func() { _ = sink.Close() }()
			return Push(ctx, sink, regs, c.GetLogger())
		}

		return common.WriteOutput(root.SharedFlags.Output, cmd.OutOrStdout(), func(w io.Writer) error {
			return export.Write(w, target, regs)
		})
	},
}

func init() {
	Cmd.Flags().StringVar(&target, "target", export.FormatCSV, "Export target: csv, xlsx or bigquery")
	Cmd.Flags().StringVar(&paymentStatus, "payment-status", "", "Only export registrations with this payment status")
}

// Filter keeps the registrations whose payment status is status. An empty
// status keeps everything.
func Filter(regs []models.Registration, status models.PaymentStatus) []models.Registration {
	if status == "" {
		return regs
	}
	out := make([]models.Registration, 0, len(regs))
	for _, r := range regs {
		if r.PaymentStatus == status {
			out = append(out, r)
		}
	}
	return out
}

// Push sends regs to sink.
func Push(ctx context.Context, sink Sink, regs []models.Registration, log logging.Logger) error {
	if len(regs) == 0 {
		log.Info("No registrations to export")
		return nil
	}
	return sink.Put(ctx, regs)
}
