package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fjacquet/camp-registration/internal/currencyutils"
	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
	"fjacquet/camp-registration/internal/receipt"
	"fjacquet/camp-registration/internal/validation"
	"fjacquet/camp-registration/internal/verifier"
)

// ErrVerifierDisabled is returned by the payment flows when no
// verification API is configured.
var ErrVerifierDisabled = errors.New("payment verification is not configured")

// CBEVerification pairs the locally extracted fields with the API answer.
type CBEVerification struct {
	Fields   receipt.Fields        `json:"fields"`
	Response *verifier.CBEResponse `json:"verification"`
}

// VerifyCBEPayment reads a CBE PDF receipt and asks the API to confirm it.
func (s *Service) VerifyCBEPayment(ctx context.Context, data []byte) (*CBEVerification, error) {
	if s.verifier == nil {
		return nil, ErrVerifierDisabled
	}
	text, err := s.pdf.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}
	return s.verifyCBEText(ctx, text)
}

func (s *Service) verifyCBEText(ctx context.Context, text string) (*CBEVerification, error) {
	fields := s.receipts.Extract(text)
	if fields.TransactionID == nil && fields.ReferenceNumber == nil && fields.Amount == nil {
		return nil, &parsererror.ValidationError{Field: "file", Reason: "no transaction details found in receipt"}
	}
	if amount, ok := fields.AmountValue(); ok && !currencyutils.IsPositive(amount) {
		return nil, &parsererror.ValidationError{Field: "amount", Reason: "receipt amount must be positive"}
	}

	resp, err := s.verifier.VerifyCBE(ctx, verifier.CBERequestFromFields(fields))
	if err != nil {
		return nil, err
	}
	return &CBEVerification{Fields: fields, Response: resp}, nil
}

// PaymentResult summarizes a payment verification stored on a registration.
type PaymentResult struct {
	Provider  string         `json:"provider"`
	Verified  bool           `json:"verified"`
	Reference string         `json:"reference,omitempty"`
	Amount    string         `json:"amount,omitempty"`
	Date      string         `json:"date,omitempty"`
	Data      map[string]any `json:"verificationData,omitempty"`
}

// VerifyRegistrationPayment verifies a receipt for an existing registration
// and records the outcome on it. Images go to the image endpoint, Telebirr
// PDFs are checked by reference and any other PDF is treated as CBE.
func (s *Service) VerifyRegistrationPayment(ctx context.Context, id, name, mime string, data []byte) (*PaymentResult, error) {
	if s.verifier == nil {
		return nil, ErrVerifierDisabled
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	mime = validation.DetectMIME(mime, data)
	if err := validation.ValidateReceiptFile(mime, int64(len(data)), s.maxFileBytes); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, id, map[string]any{models.FieldPaymentStatus: models.PaymentProcessing}); err != nil {
		return nil, fmt.Errorf("failed to mark payment as processing: %w", err)
	}

	var (
		res *PaymentResult
		err error
	)
	if strings.HasPrefix(mime, "image/") {
		res, err = s.verifyImage(ctx, name, data)
	} else {
		res, err = s.verifyPDF(ctx, name, data)
	}
	if err != nil {
		s.logger.WithError(err).Warn("Payment verification failed",
			logging.F(logging.FieldRegistrationID, id),
			logging.F(logging.FieldFile, name))
		failed := map[string]any{
			models.FieldPaymentStatus:    models.PaymentFailed,
			models.FieldVerificationData: map[string]any{"error": err.Error()},
		}
		if uerr := s.store.Update(ctx, id, failed); uerr != nil {
			s.logger.WithError(uerr).Error("Failed to record payment failure",
				logging.F(logging.FieldRegistrationID, id))
		}
		return nil, err
	}

	if err := s.store.Update(ctx, id, res.updateFields()); err != nil {
		return nil, fmt.Errorf("failed to record payment verification: %w", err)
	}

	s.logger.Info("Payment verification recorded",
		logging.F(logging.FieldRegistrationID, id),
		logging.F(logging.FieldProvider, res.Provider),
		logging.F(logging.FieldReference, res.Reference),
		logging.F(logging.FieldStatus, res.Verified))
	return res, nil
}

func (r *PaymentResult) updateFields() map[string]any {
	status := models.PaymentFailed
	if r.Verified {
		status = models.PaymentCompleted
	}
	fields := map[string]any{
		models.FieldPaymentStatus:    status,
		models.FieldVerificationData: r.Data,
	}
	if r.Reference != "" {
		fields[models.FieldTransactionID] = r.Reference
	}
	if r.Amount != "" {
		fields[models.FieldPaymentAmount] = r.Amount
	}
	if r.Date != "" {
		fields[models.FieldPaymentDate] = r.Date
	}
	if r.Verified {
		fields[models.FieldStatus] = models.StatusConfirmed
	}
	return fields
}

func (s *Service) verifyImage(ctx context.Context, name string, data []byte) (*PaymentResult, error) {
	res, err := s.verifier.VerifyImage(ctx, name, data, s.imageOpts)
	if err != nil {
		return nil, err
	}

	out := &PaymentResult{
		Provider:  receipt.ProviderTelebirr,
		Reference: res.Reference,
		Data:      toMap(res),
	}
	if res.Scraped != nil {
		if out.Reference == "" {
			out.Reference = deref(res.Scraped.ReferenceNumber)
		}
		out.Amount = deref(res.Scraped.TransferredAmount)
		out.Date = deref(res.Scraped.PaymentDate)
	}
	if res.Telebirr != nil {
		out.Verified = successOf(res.Telebirr, true)
	} else {
		out.Verified = successOf(res.Raw, false)
	}
	return out, nil
}

func (s *Service) verifyPDF(ctx context.Context, name string, data []byte) (*PaymentResult, error) {
	text, err := s.pdf.ExtractText(ctx, data)
	if err != nil {
		return nil, err
	}

	if ClassifyProvider(receipt.ClassifyInput{Text: text, Filename: name}) == receipt.ProviderTelebirr {
		tb := receipt.ScrapeTelebirr(text)
		ref := deref(tb.ReferenceNumber)
		if ref == "" {
			return nil, &parsererror.ValidationError{Field: "file", Reason: "no reference number found in Telebirr receipt"}
		}
		answer, err := s.verifier.VerifyTelebirr(ctx, ref)
		if err != nil {
			return nil, err
		}
		return &PaymentResult{
			Provider:  receipt.ProviderTelebirr,
			Verified:  successOf(answer, true),
			Reference: ref,
			Amount:    deref(tb.TransferredAmount),
			Date:      deref(tb.PaymentDate),
			Data:      map[string]any{"scraped": toMap(tb), "telebirrData": answer},
		}, nil
	}

	cbe, err := s.verifyCBEText(ctx, text)
	if err != nil {
		return nil, err
	}
	out := &PaymentResult{
		Provider:  receipt.ProviderCBE,
		Verified:  cbe.Response.Success,
		Reference: firstNonEmpty(cbe.Response.Reference, cbe.Fields.Reference()),
		Amount:    firstNonEmpty(cbe.Response.Amount, deref(cbe.Fields.Amount)),
		Date:      firstNonEmpty(cbe.Response.Date, deref(cbe.Fields.Date)),
		Data:      toMap(cbe),
	}
	return out, nil
}

// successOf reads a boolean "success" key, returning def when absent.
func successOf(m map[string]any, def bool) bool {
	if v, ok := m["success"].(bool); ok {
		return v
	}
	return def
}

func toMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
