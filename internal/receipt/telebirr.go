package receipt

import "fjacquet/camp-registration/internal/textutils"

// TelebirrFields is the record scraped from a Telebirr transfer receipt.
// Account numbers are masked on these receipts, so only the last visible
// digit of each is kept.
type TelebirrFields struct {
	ReferenceNumber          *string `json:"referenceNumber,omitempty" yaml:"referenceNumber,omitempty"`
	PayerAccountLastDigit    *string `json:"payerAccountLastDigit,omitempty" yaml:"payerAccountLastDigit,omitempty"`
	ReceiverAccountLastDigit *string `json:"receiverAccountLastDigit,omitempty" yaml:"receiverAccountLastDigit,omitempty"`
	TransferredAmount        *string `json:"transferredAmount,omitempty" yaml:"transferredAmount,omitempty"`
	PaymentDate              *string `json:"paymentDate,omitempty" yaml:"paymentDate,omitempty"`
}

// ScrapeTelebirr extracts the Telebirr receipt fields from raw text.
func ScrapeTelebirr(raw string) TelebirrFields {
	text := textutils.Normalize(raw)
	return TelebirrFields{
		ReferenceNumber:          ExtractField(text, ReferenceNumber).Ptr(),
		PayerAccountLastDigit:    ExtractField(text, PayerAccountDigit).Ptr(),
		ReceiverAccountLastDigit: ExtractField(text, ReceiverAccountDigit).Ptr(),
		TransferredAmount:        ExtractField(text, CurrencyAmount).Ptr(),
		PaymentDate:              ExtractField(text, PaymentDate).Ptr(),
	}
}
