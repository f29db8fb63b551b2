package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
)

const schema = `
CREATE TABLE IF NOT EXISTS registrations (
	id                  TEXT PRIMARY KEY,
	full_name           TEXT NOT NULL,
	age                 INTEGER NOT NULL,
	gender              TEXT NOT NULL DEFAULT '',
	parent_name         TEXT NOT NULL DEFAULT '',
	phone               TEXT NOT NULL DEFAULT '',
	emergency_contact   TEXT NOT NULL DEFAULT '',
	grade               TEXT NOT NULL DEFAULT '',
	hobbies             TEXT NOT NULL DEFAULT '',
	allergies           TEXT NOT NULL DEFAULT '',
	receipt_url         TEXT NOT NULL DEFAULT '',
	receipt_file_name   TEXT NOT NULL DEFAULT '',
	receipt_uploaded_at TEXT,
	payment_status      TEXT NOT NULL DEFAULT '',
	payment_amount      TEXT NOT NULL DEFAULT '',
	payment_date        TEXT NOT NULL DEFAULT '',
	transaction_id      TEXT NOT NULL DEFAULT '',
	verification_data   TEXT,
	status              TEXT NOT NULL,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
)`

const selectColumns = `id, full_name, age, gender, parent_name, phone, emergency_contact, grade,
	hobbies, allergies, receipt_url, receipt_file_name, receipt_uploaded_at, payment_status,
	payment_amount, payment_date, transaction_id, verification_data, status, created_at, updated_at`

// columns maps update field names to table columns.
var columns = map[string]string{
	models.FieldReceiptURL:        "receipt_url",
	models.FieldReceiptFileName:   "receipt_file_name",
	models.FieldReceiptUploadedAt: "receipt_uploaded_at",
	models.FieldPaymentStatus:     "payment_status",
	models.FieldPaymentAmount:     "payment_amount",
	models.FieldPaymentDate:       "payment_date",
	models.FieldTransactionID:     "transaction_id",
	models.FieldVerificationData:  "verification_data",
	models.FieldStatus:            "status",
	models.FieldUpdatedAt:         "updated_at",
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps registrations in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (and creates if needed) the database at path.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string, logger logging.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Debug("Opened registration store", logging.F(logging.FieldFile, path))
	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

// Create implements RegistrationStore.
func (s *SQLiteStore) Create(ctx context.Context, reg *models.Registration) (string, error) {
	stampNew(reg, s.now().UTC())
	reg.ID = uuid.NewString()

	var uploadedAt any
	if reg.ReceiptUploadedAt != nil {
		uploadedAt = reg.ReceiptUploadedAt.UTC().Format(timeLayout)
	}
	verification, err := encodeJSON(reg.VerificationData)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO registrations (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.FullName, reg.Age, reg.Gender, reg.ParentName, reg.Phone, reg.EmergencyContact,
		reg.Grade, reg.Hobbies, reg.Allergies, reg.ReceiptURL, reg.ReceiptFileName, uploadedAt,
		string(reg.PaymentStatus), reg.PaymentAmount, reg.PaymentDate, reg.TransactionID, verification,
		string(reg.Status), reg.CreatedAt.Format(timeLayout), reg.UpdatedAt.Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("insert registration: %w", err)
	}
	return reg.ID, nil
}

// Update implements RegistrationStore.
func (s *SQLiteStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if _, ok := fields[models.FieldUpdatedAt]; !ok {
		merged := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			merged[k] = v
		}
		merged[models.FieldUpdatedAt] = s.now().UTC()
		fields = merged
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := columns[k]; !ok {
			return fmt.Errorf("unknown registration field: %s", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		v, err := columnValue(fields[k])
		if err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		sets = append(sets, columns[k]+" = ?")
		args = append(args, v)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE registrations SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update registration %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration %s: %w", id, err)
	}
	if n == 0 {
		return &parsererror.NotFoundError{ID: id}
	}
	return nil
}

// Get implements RegistrationStore.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Registration, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM registrations WHERE id = ?", id)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &parsererror.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get registration %s: %w", id, err)
	}
	return reg, nil
}

// List implements RegistrationStore. Registrations are returned oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]models.Registration, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM registrations ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close rows")
		}
	}()

	var out []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		out = append(out, *reg)
	}
	return out, rows.Err()
}

// Close implements RegistrationStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(sc scanner) (*models.Registration, error) {
	var (
		reg                      models.Registration
		uploadedAt, verification sql.NullString
		paymentStatus, status    string
		createdAt, updatedAt     string
	)
	err := sc.Scan(&reg.ID, &reg.FullName, &reg.Age, &reg.Gender, &reg.ParentName, &reg.Phone,
		&reg.EmergencyContact, &reg.Grade, &reg.Hobbies, &reg.Allergies, &reg.ReceiptURL,
		&reg.ReceiptFileName, &uploadedAt, &paymentStatus, &reg.PaymentAmount, &reg.PaymentDate,
		&reg.TransactionID, &verification, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	reg.PaymentStatus = models.PaymentStatus(paymentStatus)
	reg.Status = models.RegistrationStatus(status)
	if reg.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if reg.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	if uploadedAt.Valid {
		t, err := time.Parse(timeLayout, uploadedAt.String)
		if err != nil {
			return nil, fmt.Errorf("receipt_uploaded_at: %w", err)
		}
		reg.ReceiptUploadedAt = &t
	}
	if verification.Valid && verification.String != "" {
		if err := json.Unmarshal([]byte(verification.String), &reg.VerificationData); err != nil {
			return nil, fmt.Errorf("verification_data: %w", err)
		}
	}
	return &reg, nil
}

// columnValue converts an update value to what the column stores.
func columnValue(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(timeLayout), nil
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		return x.UTC().Format(timeLayout), nil
	case map[string]any:
		return encodeJSON(x)
	case models.PaymentStatus:
		return string(x), nil
	case models.RegistrationStatus:
		return string(x), nil
	case string, int, int64, float64, bool, nil:
		return x, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func encodeJSON(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode verification data: %w", err)
	}
	return string(b), nil
}
