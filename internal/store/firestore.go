package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/models"
	"fjacquet/camp-registration/internal/parsererror"
)

// DefaultCollection is the collection registrations are written to.
const DefaultCollection = "registration-public"

// FirestoreStore keeps registrations in a Cloud Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	logger     logging.Logger
	now        func() time.Time
}

// NewFirestoreStore connects to project using Application Default Credentials.
func NewFirestoreStore(ctx context.Context, project, collection string, logger logging.Logger) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection, logger: logger, now: time.Now}, nil
}

func (s *FirestoreStore) coll() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// Create implements RegistrationStore.
func (s *FirestoreStore) Create(ctx context.Context, reg *models.Registration) (string, error) {
	stampNew(reg, s.now().UTC())
	ref, _, err := s.coll().Add(ctx, toDocument(reg))
	if err != nil {
		return "", fmt.Errorf("add registration: %w", err)
	}
	reg.ID = ref.ID
	s.logger.Debug("Created registration document", logging.F(logging.FieldRegistrationID, ref.ID))
	return ref.ID, nil
}

// Update implements RegistrationStore.
func (s *FirestoreStore) Update(ctx context.Context, id string, fields map[string]any) error {
	// Validate keys and types against the model before writing.
	if err := ApplyFields(&models.Registration{}, fields); err != nil {
		return err
	}

	updates := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: documentValue(v)})
	}
	if _, ok := fields[models.FieldUpdatedAt]; !ok {
		updates = append(updates, firestore.Update{Path: models.FieldUpdatedAt, Value: formatDocumentTime(s.now())})
	}

	if _, err := s.coll().Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return &parsererror.NotFoundError{ID: id}
		}
		return fmt.Errorf("update registration %s: %w", id, err)
	}
	return nil
}

// Get implements RegistrationStore.
func (s *FirestoreStore) Get(ctx context.Context, id string) (*models.Registration, error) {
	snap, err := s.coll().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, &parsererror.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("get registration %s: %w", id, err)
	}
	return decodeSnapshot(snap)
}

// List implements RegistrationStore. Registrations are returned oldest first.
func (s *FirestoreStore) List(ctx context.Context) ([]models.Registration, error) {
	it := s.coll().OrderBy(models.FieldCreatedAt, firestore.Asc).Documents(ctx)
	defer it.Stop()

	var out []models.Registration
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		reg, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *reg)
	}
	return out, nil
}

// Close implements RegistrationStore.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*models.Registration, error) {
	var doc registrationDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode registration %s: %w", snap.Ref.ID, err)
	}
	reg, err := doc.registration(snap.Ref.ID)
	if err != nil {
		return nil, fmt.Errorf("decode registration %s: %w", snap.Ref.ID, err)
	}
	return reg, nil
}

// documentTimeLayout matches the ISO strings the web client writes, e.g.
// "2025-07-01T08:00:00.000Z".
const documentTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// registrationDocument is the stored shape of a registration. Timestamps
// are ISO strings, not Firestore timestamps.
type registrationDocument struct {
	FullName         string `firestore:"fullName"`
	Age              int    `firestore:"age"`
	Gender           string `firestore:"gender"`
	ParentName       string `firestore:"parentName"`
	Phone            string `firestore:"phone"`
	EmergencyContact string `firestore:"emergencyContact"`
	Grade            string `firestore:"grade"`
	Hobbies          string `firestore:"hobbies"`
	Allergies        string `firestore:"allergies"`

	ReceiptURL        string `firestore:"receiptUrl,omitempty"`
	ReceiptFileName   string `firestore:"receiptFileName,omitempty"`
	ReceiptUploadedAt string `firestore:"receiptUploadedAt,omitempty"`

	PaymentStatus    string         `firestore:"paymentStatus,omitempty"`
	PaymentAmount    string         `firestore:"paymentAmount,omitempty"`
	PaymentDate      string         `firestore:"paymentDate,omitempty"`
	TransactionID    string         `firestore:"transactionId,omitempty"`
	VerificationData map[string]any `firestore:"verificationData,omitempty"`

	Status    string `firestore:"status"`
	CreatedAt string `firestore:"createdAt"`
	UpdatedAt string `firestore:"updatedAt"`
}

func toDocument(reg *models.Registration) registrationDocument {
	doc := registrationDocument{
		FullName:         reg.FullName,
		Age:              reg.Age,
		Gender:           reg.Gender,
		ParentName:       reg.ParentName,
		Phone:            reg.Phone,
		EmergencyContact: reg.EmergencyContact,
		Grade:            reg.Grade,
		Hobbies:          reg.Hobbies,
		Allergies:        reg.Allergies,
		ReceiptURL:       reg.ReceiptURL,
		ReceiptFileName:  reg.ReceiptFileName,
		PaymentStatus:    string(reg.PaymentStatus),
		PaymentAmount:    reg.PaymentAmount,
		PaymentDate:      reg.PaymentDate,
		TransactionID:    reg.TransactionID,
		VerificationData: reg.VerificationData,
		Status:           string(reg.Status),
		CreatedAt:        formatDocumentTime(reg.CreatedAt),
		UpdatedAt:        formatDocumentTime(reg.UpdatedAt),
	}
	if reg.ReceiptUploadedAt != nil {
		doc.ReceiptUploadedAt = formatDocumentTime(*reg.ReceiptUploadedAt)
	}
	return doc
}

func (d registrationDocument) registration(id string) (*models.Registration, error) {
	reg := &models.Registration{
		ID:               id,
		FullName:         d.FullName,
		Age:              d.Age,
		Gender:           d.Gender,
		ParentName:       d.ParentName,
		Phone:            d.Phone,
		EmergencyContact: d.EmergencyContact,
		Grade:            d.Grade,
		Hobbies:          d.Hobbies,
		Allergies:        d.Allergies,
		ReceiptURL:       d.ReceiptURL,
		ReceiptFileName:  d.ReceiptFileName,
		PaymentStatus:    models.PaymentStatus(d.PaymentStatus),
		PaymentAmount:    d.PaymentAmount,
		PaymentDate:      d.PaymentDate,
		TransactionID:    d.TransactionID,
		VerificationData: d.VerificationData,
		Status:           models.RegistrationStatus(d.Status),
	}

	var err error
	if reg.CreatedAt, err = parseDocumentTime(models.FieldCreatedAt, d.CreatedAt); err != nil {
		return nil, err
	}
	if reg.UpdatedAt, err = parseDocumentTime(models.FieldUpdatedAt, d.UpdatedAt); err != nil {
		return nil, err
	}
	if d.ReceiptUploadedAt != "" {
		t, err := parseDocumentTime(models.FieldReceiptUploadedAt, d.ReceiptUploadedAt)
		if err != nil {
			return nil, err
		}
		reg.ReceiptUploadedAt = &t
	}
	return reg, nil
}

func formatDocumentTime(t time.Time) string {
	return t.UTC().Format(documentTimeLayout)
}

// parseDocumentTime accepts any RFC 3339 string. A missing value is the
// zero time.
func parseDocumentTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t.UTC(), nil
}

// documentValue converts a partial update value to its stored form.
func documentValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return formatDocumentTime(x)
	case *time.Time:
		if x == nil {
			return nil
		}
		return formatDocumentTime(*x)
	case models.PaymentStatus:
		return string(x)
	case models.RegistrationStatus:
		return string(x)
	default:
		return v
	}
}
