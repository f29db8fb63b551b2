// Package store persists registrations.
package store

import (
	"context"
	"fmt"
	"time"

	"fjacquet/camp-registration/internal/models"
)

// RegistrationStore persists registrations. Update takes a partial set of
// document fields keyed by the models.Field* names; updatedAt is always
// refreshed.
type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Get(ctx context.Context, id string) (*models.Registration, error)
	List(ctx context.Context) ([]models.Registration, error)
	Close() error
}

// stampNew sets the system fields of a new registration.
func stampNew(reg *models.Registration, now time.Time) {
	reg.Status = models.StatusPending
	reg.CreatedAt = now
	reg.UpdatedAt = now
}

// ApplyFields writes a partial update onto reg. Unknown keys and values of
// the wrong type are rejected.
func ApplyFields(reg *models.Registration, fields map[string]any) error {
	for key, value := range fields {
		if err := applyField(reg, key, value); err != nil {
			return err
		}
	}
	return nil
}

func applyField(reg *models.Registration, key string, value any) error {
	var ok bool
	switch key {
	case models.FieldReceiptURL:
		reg.ReceiptURL, ok = value.(string)
	case models.FieldReceiptFileName:
		reg.ReceiptFileName, ok = value.(string)
	case models.FieldReceiptUploadedAt:
		var t time.Time
		if t, ok = value.(time.Time); ok {
			reg.ReceiptUploadedAt = &t
		}
	case models.FieldPaymentStatus:
		var s models.PaymentStatus
		s, ok = asString[models.PaymentStatus](value)
		reg.PaymentStatus = s
	case models.FieldPaymentAmount:
		reg.PaymentAmount, ok = value.(string)
	case models.FieldPaymentDate:
		reg.PaymentDate, ok = value.(string)
	case models.FieldTransactionID:
		reg.TransactionID, ok = value.(string)
	case models.FieldVerificationData:
		reg.VerificationData, ok = value.(map[string]any)
	case models.FieldStatus:
		var s models.RegistrationStatus
		s, ok = asString[models.RegistrationStatus](value)
		reg.Status = s
	case models.FieldUpdatedAt:
		reg.UpdatedAt, ok = value.(time.Time)
	default:
		return fmt.Errorf("unknown registration field: %s", key)
	}
	if !ok {
		return fmt.Errorf("invalid value %T for registration field %s", value, key)
	}
	return nil
}

// asString accepts either the named string type or a plain string.
func asString[T ~string](v any) (T, bool) {
	switch s := v.(type) {
	case T:
		return s, true
	case string:
		return T(s), true
	}
	return "", false
}
