package receipt_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/camp-registration/internal/receipt"
)

func strPtr(s string) *string { return &s }

func TestExtract_CBEReceipt(t *testing.T) {
	raw := "Commercial Bank of Ethiopia\n" +
		"Reference No. AB12345678\n" +
		"Amount   1,000.00\n" +
		"Date 07/10/2025\n"

	got := receipt.Extract(raw)

	require.NotNil(t, got.ReferenceNumber)
	assert.Equal(t, "AB12345678", *got.ReferenceNumber)
	require.NotNil(t, got.Amount)
	assert.Equal(t, "1,000.00", *got.Amount)
	require.NotNil(t, got.Date)
	assert.Equal(t, "07/10/2025", *got.Date)
	assert.Nil(t, got.TransactionID)
	assert.Nil(t, got.SenderAccount)
	assert.Nil(t, got.SenderName)
	assert.Equal(t, "AB12345678", got.Reference())
}

func TestExtract_CurrencyPrefixedAmount(t *testing.T) {
	got := receipt.Extract("Paid ETB1000.00 successfully")

	require.NotNil(t, got.Amount)
	assert.Equal(t, "ETB1000.00", *got.Amount)
	require.NotNil(t, got.CurrencyAmount)
	assert.Equal(t, "ETB1000.00", *got.CurrencyAmount)

	amount, ok := got.AmountValue()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1000).Equal(amount))
}

func TestExtract_DefaultReceiver(t *testing.T) {
	got := receipt.Extract("Thank you for registering")

	require.NotNil(t, got.ReceiverAccount)
	assert.Equal(t, receipt.DefaultReceiverAccount, *got.ReceiverAccount)
	assert.True(t, got.ReceiverDefaulted)
	assert.Nil(t, got.SenderAccount)
	assert.Nil(t, got.Amount)
	assert.Nil(t, got.TransactionID)
	assert.Nil(t, got.Date)
	assert.True(t, got.Empty())
	assert.Empty(t, got.Reference())

	_, ok := got.AmountValue()
	assert.False(t, ok)
}

func TestExtract_ReceiverFound(t *testing.T) {
	got := receipt.Extract("Transaction FT25188ABCD1 From Account 1000123456789 To Account 1000999988887")

	require.NotNil(t, got.ReceiverAccount)
	assert.Equal(t, "1000999988887", *got.ReceiverAccount)
	assert.False(t, got.ReceiverDefaulted)
	assert.Equal(t, "1000123456789", *got.SenderAccount)
	assert.Equal(t, "FT25188ABCD1", got.Reference())
	assert.False(t, got.Empty())
}

func TestExtract_AccountLinesHaveNoSenderName(t *testing.T) {
	got := receipt.Extract("Transaction FT25188ABCD1 From Account 1000123456789 To Account 1000999988887 Amount 2,500.00")

	assert.Nil(t, got.SenderName)
	require.NotNil(t, got.SenderAccount)
	assert.Equal(t, "1000123456789", *got.SenderAccount)
	require.NotNil(t, got.Amount)
	assert.Equal(t, "2,500.00", *got.Amount)
}

func TestExtract_ToInsideWordKeepsDefaultReceiver(t *testing.T) {
	got := receipt.Extract("Amount 500.00 transferred into 12345678")

	require.NotNil(t, got.ReceiverAccount)
	assert.Equal(t, receipt.DefaultReceiverAccount, *got.ReceiverAccount)
	assert.True(t, got.ReceiverDefaulted)
}

func TestExtractor_DefaultReceiverOverride(t *testing.T) {
	e := receipt.NewExtractor(receipt.WithDefaultReceiverAccount("2000111122223"))
	got := e.Extract("nothing here")
	assert.Equal(t, "2000111122223", *got.ReceiverAccount)
	assert.True(t, got.ReceiverDefaulted)

	e = receipt.NewExtractor(receipt.WithDefaultReceiverAccount(""))
	got = e.Extract("nothing here")
	assert.Nil(t, got.ReceiverAccount)
	assert.False(t, got.ReceiverDefaulted)
}

func TestExtract_Idempotent(t *testing.T) {
	raw := "Transaction FT25188ABCD1\tAmount 2,500.00\r\nDate 01/07/2025"
	assert.Equal(t, receipt.Extract(raw), receipt.Extract(raw))
}

func TestExtract_WhitespaceInsensitive(t *testing.T) {
	a := receipt.Extract("Amount 1,000.00 Date 07/10/2025")
	b := receipt.Extract("  Amount\n\n1,000.00\t\tDate  07/10/2025 ")
	assert.Equal(t, a, b)
}

func TestFields_Value(t *testing.T) {
	f := receipt.Fields{Amount: strPtr("1,000.00"), SenderName: strPtr("Abebe")}
	assert.Equal(t, "1,000.00", *f.Value(receipt.Amount))
	assert.Equal(t, "Abebe", *f.Value(receipt.SenderName))
	assert.Nil(t, f.Value(receipt.Date))
	assert.Nil(t, f.Value(receipt.PayerAccountDigit))
}

func TestFields_AmountValueLocales(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"1,000.00", "1000"},
		{"1.000,00", "1000"},
		{"ETB250.50", "250.5"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, ok := receipt.Fields{Amount: strPtr(tt.amount)}.AmountValue()
			require.True(t, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), got.String())
		})
	}

	_, ok := receipt.Fields{Amount: strPtr("abc")}.AmountValue()
	assert.False(t, ok)
}
