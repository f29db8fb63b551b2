// Package export writes registrations out as flat rows for spreadsheets and
// analytics.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fjacquet/camp-registration/internal/currencyutils"
	"fjacquet/camp-registration/internal/dateutils"
	"fjacquet/camp-registration/internal/models"
)

// Supported file formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Row is one registration flattened for export. Times are RFC3339 UTC.
type Row struct {
	ID                string `csv:"id" bigquery:"id"`
	FullName          string `csv:"full_name" bigquery:"full_name"`
	Age               int    `csv:"age" bigquery:"age"`
	Gender            string `csv:"gender" bigquery:"gender"`
	ParentName        string `csv:"parent_name" bigquery:"parent_name"`
	Phone             string `csv:"phone" bigquery:"phone"`
	Grade             string `csv:"grade" bigquery:"grade"`
	Hobbies           string `csv:"hobbies" bigquery:"hobbies"`
	Allergies         string `csv:"allergies" bigquery:"allergies"`
	Status            string `csv:"status" bigquery:"status"`
	PaymentStatus     string `csv:"payment_status" bigquery:"payment_status"`
	PaymentAmount     string `csv:"payment_amount" bigquery:"payment_amount"`
	PaymentDate       string `csv:"payment_date" bigquery:"payment_date"`
	TransactionID     string `csv:"transaction_id" bigquery:"transaction_id"`
	ReceiptURL        string `csv:"receipt_url" bigquery:"receipt_url"`
	ReceiptFileName   string `csv:"receipt_file_name" bigquery:"receipt_file_name"`
	ReceiptUploadedAt string `csv:"receipt_uploaded_at" bigquery:"receipt_uploaded_at"`
	CreatedAt         string `csv:"created_at" bigquery:"created_at"`
	UpdatedAt         string `csv:"updated_at" bigquery:"updated_at"`
	AmountValue       string `csv:"amount_value" bigquery:"amount_value"`
	PaymentDateISO    string `csv:"payment_date_iso" bigquery:"payment_date_iso"`
}

// headers are the XLSX column titles, in Row field order.
var headers = []string{
	"ID", "Full Name", "Age", "Gender", "Parent/Guardian", "Phone", "Grade",
	"Hobbies", "Allergies", "Status", "Payment Status", "Payment Amount",
	"Payment Date", "Transaction ID", "Receipt URL", "Receipt File",
	"Receipt Uploaded", "Created", "Updated", "Amount", "Payment Date (ISO)",
}

func (r Row) values() []any {
	return []any{
		r.ID, r.FullName, r.Age, r.Gender, r.ParentName, r.Phone, r.Grade,
		r.Hobbies, r.Allergies, r.Status, r.PaymentStatus, r.PaymentAmount,
		r.PaymentDate, r.TransactionID, r.ReceiptURL, r.ReceiptFileName,
		r.ReceiptUploadedAt, r.CreatedAt, r.UpdatedAt, r.AmountValue,
		r.PaymentDateISO,
	}
}

// NewRow flattens a registration.
func NewRow(reg models.Registration) Row {
	return Row{
		ID:                reg.ID,
		FullName:          reg.FullName,
		Age:               reg.Age,
		Gender:            reg.Gender,
		ParentName:        reg.ParentName,
		Phone:             reg.Phone,
		Grade:             reg.Grade,
		Hobbies:           reg.Hobbies,
		Allergies:         reg.Allergies,
		Status:            string(reg.Status),
		PaymentStatus:     string(reg.PaymentStatus),
		PaymentAmount:     reg.PaymentAmount,
		PaymentDate:       reg.PaymentDate,
		TransactionID:     reg.TransactionID,
		ReceiptURL:        reg.ReceiptURL,
		ReceiptFileName:   reg.ReceiptFileName,
		ReceiptUploadedAt: timestamp(reg.ReceiptUploadedAt),
		CreatedAt:         timestamp(&reg.CreatedAt),
		UpdatedAt:         timestamp(&reg.UpdatedAt),
		AmountValue:       amountValue(reg.PaymentAmount),
		PaymentDateISO:    isoDate(reg.PaymentDate),
	}
}

// amountValue is the paid amount as a plain two-decimal number, or "" when
// the receipt amount cannot be read.
func amountValue(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	d, err := currencyutils.ParseAmount(s)
	if err != nil {
		return ""
	}
	return currencyutils.FormatAmount(d, "")
}

func isoDate(s string) string {
	if iso, ok := dateutils.NormalizeDate(s); ok {
		return iso
	}
	return ""
}

// NewRows flattens a list of registrations.
func NewRows(regs []models.Registration) []Row {
	rows := make([]Row, 0, len(regs))
	for _, reg := range regs {
		rows = append(rows, NewRow(reg))
	}
	return rows
}

func timestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return dateutils.Timestamp(*t)
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format string, regs []models.Registration) error {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return WriteCSV(w, regs)
	case FormatXLSX:
		return WriteXLSX(w, regs)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}
