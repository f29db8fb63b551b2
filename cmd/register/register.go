// Package register implements the register command.
package register

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fjacquet/camp-registration/cmd/common"
	"fjacquet/camp-registration/cmd/root"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/registration"
	"fjacquet/camp-registration/internal/validation"
)

var (
	receiptPath string
	receiptURL  string
)

// Cmd represents the register command
var Cmd = &cobra.Command{
	Use:   "register",
	Short: "Submit a camp registration",
	Long: `Register reads a registration form (YAML or JSON, from --input or stdin),
uploads the payment receipt given with --receipt, or uses an already hosted
one given with --receipt-url, and stores the registration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		doc, err := common.ReadInput(root.SharedFlags.Input, cmd.InOrStdin())
		if err != nil {
			return err
		}
		var form validation.Form
		if err := common.Decode(doc, &form); err != nil {
			return err
		}

		c, err := root.GetContainer(ctx)
		if err != nil {
			return err
		}

		var rcpt *models.ReceiptData
		switch {
		case receiptPath != "":
			data, err := os.ReadFile(receiptPath)
			if err != nil {
				return fmt.Errorf("failed to read receipt: %w", err)
			}
			rcpt, err = Upload(ctx, c.GetService(), filepath.Base(receiptPath), data)
			if err != nil {
				return err
			}
		case receiptURL != "":
			rcpt = &models.ReceiptData{URL: receiptURL, FileName: filepath.Base(receiptURL)}
		}

		reg, err := c.GetService().Submit(ctx, form, rcpt)
		if err != nil {
			return err
		}
		out := NewResult(reg, c.GetService().CheckoutURL())
		return common.WriteOutput(root.SharedFlags.Output, cmd.OutOrStdout(), func(w io.Writer) error {
			return common.Render(w, root.SharedFlags.Format, out)
		})
	},
}

func init() {
	Cmd.Flags().StringVar(&receiptPath, "receipt", "", "Payment receipt file to upload (PDF or image)")
	Cmd.Flags().StringVar(&receiptURL, "receipt-url", "", "URL of an already hosted receipt")
	Cmd.MarkFlagsMutuallyExclusive("receipt", "receipt-url")
}

// Result is the stored registration plus the page where the fee is paid.
type Result struct {
	models.Registration `yaml:",inline"`
	CheckoutURL         string `json:"checkoutUrl,omitempty" yaml:"checkoutUrl,omitempty" csv:"checkoutUrl"`
}

// NewResult pairs a stored registration with the checkout page.
func NewResult(reg *models.Registration, checkoutURL string) Result {
	return Result{Registration: *reg, CheckoutURL: checkoutURL}
}

// Upload hosts a receipt file and returns its description.
func Upload(ctx context.Context, svc *registration.Service, name string, data []byte) (*models.ReceiptData, error) {
	rd, err := svc.UploadReceipt(ctx, name, "", data)
	if err != nil {
		return nil, err
	}
	return &rd, nil
}
