// Package verify implements the verify command.
package verify

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"fjacquet/camp-registration/cmd/common"
	"fjacquet/camp-registration/cmd/root"
	"fjacquet/camp-registration/internal/registration"
	"fjacquet/camp-registration/internal/verifier"
)

// Verification modes used when no registration is given.
const (
	ModeCBE      = "cbe"
	ModeImage    = "image"
	ModeTelebirr = "telebirr"
)

var (
	registrationID string
	mode           string
	reference      string
)

// Request describes one verification.
type Request struct {
	Registration string
	Mode         string
	Reference    string
	FileName     string
	Data         []byte
}

// Cmd represents the verify command
var Cmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a payment receipt with the verification API",
	Long: `Verify sends a receipt to the payment verification API.

With --registration the outcome is recorded on that registration: images go to
the image endpoint, Telebirr PDFs are checked by reference and other PDFs are
verified as CBE receipts. Without it the receipt is only checked, using --mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := root.GetContainer(ctx)
		if err != nil {
			return err
		}

		req := Request{Registration: registrationID, Mode: mode, Reference: reference}
		if req.Mode != ModeTelebirr || req.Registration != "" {
			if req.Data, err = common.ReadInput(root.SharedFlags.Input, cmd.InOrStdin()); err != nil {
				return err
			}
			req.FileName = "receipt"
			if in := root.SharedFlags.Input; in != "" && in != "-" {
				req.FileName = filepath.Base(in)
			}
		}

		var v registration.Verifier
		if c.GetVerifier() != nil {
			v = c.GetVerifier()
		}
		cfg := c.GetConfig()
		opts := verifier.ImageOptions{AutoVerify: cfg.Verify.AutoVerify, Suffix: cfg.Verify.Suffix}

		out, err := Verify(ctx, c.GetService(), v, opts, req)
		if err != nil {
			return err
		}
		return common.WriteOutput(root.SharedFlags.Output, cmd.OutOrStdout(), func(w io.Writer) error {
			return common.Render(w, root.SharedFlags.Format, out)
		})
	},
}

func init() {
	Cmd.Flags().StringVar(&registrationID, "registration", "", "Registration ID to record the verification on")
	Cmd.Flags().StringVar(&mode, "mode", ModeCBE, "Check mode without a registration: cbe, image or telebirr")
	Cmd.Flags().StringVar(&reference, "reference", "", "Telebirr reference number (telebirr mode)")
}

// Verify runs req against svc, or directly against v for image and Telebirr
// reference checks. v may be nil when verification is disabled.
func Verify(ctx context.Context, svc *registration.Service, v registration.Verifier, opts verifier.ImageOptions, req Request) (any, error) {
	if req.Registration != "" {
		return svc.VerifyRegistrationPayment(ctx, req.Registration, req.FileName, "", req.Data)
	}

	switch req.Mode {
	case ModeCBE, "":
		return svc.VerifyCBEPayment(ctx, req.Data)
	case ModeImage:
		if v == nil {
			return nil, registration.ErrVerifierDisabled
		}
		return v.VerifyImage(ctx, req.FileName, req.Data, opts)
	case ModeTelebirr:
		if v == nil {
			return nil, registration.ErrVerifierDisabled
		}
		if req.Reference == "" {
			return nil, fmt.Errorf("--reference is required in telebirr mode")
		}
		return v.VerifyTelebirr(ctx, req.Reference)
	default:
		return nil, fmt.Errorf("unknown verification mode: %s", req.Mode)
	}
}
