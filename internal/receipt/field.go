// Package receipt extracts payment fields from receipt text and classifies
// receipts by provider. Every function in the package is a pure function of
// its input and safe for concurrent use.
package receipt

// Field identifies one value that can be pulled out of receipt text.
type Field int

const (
	TransactionID Field = iota
	Amount
	CurrencyAmount
	Date
	PaymentDate
	SenderAccount
	ReceiverAccount
	SenderName
	ReferenceNumber
	PayerAccountDigit
	ReceiverAccountDigit
)

var fieldNames = map[Field]string{
	TransactionID:        "transactionId",
	Amount:               "amount",
	CurrencyAmount:       "currencyAmount",
	Date:                 "date",
	PaymentDate:          "paymentDate",
	SenderAccount:        "senderAccount",
	ReceiverAccount:      "receiverAccount",
	SenderName:           "senderName",
	ReferenceNumber:      "referenceNumber",
	PayerAccountDigit:    "payerAccountLastDigit",
	ReceiverAccountDigit: "receiverAccountLastDigit",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// AllFields lists every known field in declaration order.
func AllFields() []Field {
	return []Field{
		TransactionID, Amount, CurrencyAmount, Date, PaymentDate,
		SenderAccount, ReceiverAccount, SenderName, ReferenceNumber,
		PayerAccountDigit, ReceiverAccountDigit,
	}
}

// ParseField resolves a field by its String name.
func ParseField(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}
