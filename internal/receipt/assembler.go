package receipt

import (
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/camp-registration/internal/currencyutils"
	"fjacquet/camp-registration/internal/textutils"
)

// DefaultReceiverAccount is the camp's collection account, used when a
// receipt names no receiver account.
const DefaultReceiverAccount = "1000708766643"

// Fields is the extraction record of a bank transfer receipt. A nil field
// means no rule matched.
type Fields struct {
	TransactionID   *string `json:"transactionId,omitempty" yaml:"transactionId,omitempty" csv:"transactionId"`
	Amount          *string `json:"amount,omitempty" yaml:"amount,omitempty" csv:"amount"`
	CurrencyAmount  *string `json:"currencyAmount,omitempty" yaml:"currencyAmount,omitempty" csv:"currencyAmount"`
	Date            *string `json:"date,omitempty" yaml:"date,omitempty" csv:"date"`
	PaymentDate     *string `json:"paymentDate,omitempty" yaml:"paymentDate,omitempty" csv:"paymentDate"`
	SenderAccount   *string `json:"senderAccount,omitempty" yaml:"senderAccount,omitempty" csv:"senderAccount"`
	ReceiverAccount *string `json:"receiverAccount,omitempty" yaml:"receiverAccount,omitempty" csv:"receiverAccount"`
	SenderName      *string `json:"senderName,omitempty" yaml:"senderName,omitempty" csv:"senderName"`
	ReferenceNumber *string `json:"referenceNumber,omitempty" yaml:"referenceNumber,omitempty" csv:"referenceNumber"`

	// ReceiverDefaulted is set when ReceiverAccount holds the configured
	// default rather than a value read from the receipt.
	ReceiverDefaulted bool `json:"receiverDefaulted" yaml:"receiverDefaulted" csv:"receiverDefaulted"`
}

// Extract normalizes raw receipt text and extracts every field using the
// default rules and receiver account.
func Extract(raw string) Fields {
	return defaultExtractor.Extract(raw)
}

var defaultExtractor = NewExtractor()

// Extract normalizes raw and runs every field rule against it.
func (e *Extractor) Extract(raw string) Fields {
	text := textutils.Normalize(raw)
	out := Fields{
		TransactionID:   e.Field(text, TransactionID).Ptr(),
		Amount:          e.Field(text, Amount).Ptr(),
		CurrencyAmount:  e.Field(text, CurrencyAmount).Ptr(),
		Date:            e.Field(text, Date).Ptr(),
		PaymentDate:     e.Field(text, PaymentDate).Ptr(),
		SenderAccount:   e.Field(text, SenderAccount).Ptr(),
		ReceiverAccount: e.Field(text, ReceiverAccount).Ptr(),
		SenderName:      e.Field(text, SenderName).Ptr(),
		ReferenceNumber: e.Field(text, ReferenceNumber).Ptr(),
	}
	if out.ReceiverAccount == nil && e.defaultReceiver != "" {
		acct := e.defaultReceiver
		out.ReceiverAccount = &acct
		out.ReceiverDefaulted = true
	}
	return out
}

// Empty reports whether no field was found in the receipt. A defaulted
// receiver account does not count.
func (f Fields) Empty() bool {
	for _, p := range []*string{
		f.TransactionID, f.Amount, f.CurrencyAmount, f.Date, f.PaymentDate,
		f.SenderAccount, f.SenderName, f.ReferenceNumber,
	} {
		if p != nil {
			return false
		}
	}
	return f.ReceiverAccount == nil || f.ReceiverDefaulted
}

// Reference returns the best identifier for the transfer: the transaction
// id, falling back to the reference number.
func (f Fields) Reference() string {
	switch {
	case f.TransactionID != nil:
		return *f.TransactionID
	case f.ReferenceNumber != nil:
		return *f.ReferenceNumber
	}
	return ""
}

// AmountValue parses the extracted amount. ok is false when no amount was
// found or it could not be parsed.
func (f Fields) AmountValue() (decimal.Decimal, bool) {
	src := f.Amount
	if src == nil {
		src = f.CurrencyAmount
	}
	if src == nil {
		return decimal.Zero, false
	}
	d, err := currencyutils.ParseAmount(strings.TrimSpace(*src))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Value returns a field of the record by enum, for generic callers.
func (f Fields) Value(field Field) *string {
	switch field {
	case TransactionID:
		return f.TransactionID
	case Amount:
		return f.Amount
	case CurrencyAmount:
		return f.CurrencyAmount
	case Date:
		return f.Date
	case PaymentDate:
		return f.PaymentDate
	case SenderAccount:
		return f.SenderAccount
	case ReceiverAccount:
		return f.ReceiverAccount
	case SenderName:
		return f.SenderName
	case ReferenceNumber:
		return f.ReferenceNumber
	}
	return nil
}
