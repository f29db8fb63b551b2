package models

import "time"

// RegistrationStatus tracks a registration through the payment flow.
type RegistrationStatus string

const (
	StatusPending                    RegistrationStatus = "pending"
	StatusPaymentPendingVerification RegistrationStatus = "payment_pending_verification"
	StatusConfirmed                  RegistrationStatus = "confirmed"
)

// PaymentStatus is the outcome of payment verification.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
)

// Registration is one camper's registration record as stored in the
// registration collection.
type Registration struct {
	ID               string `json:"id,omitempty" yaml:"id,omitempty" firestore:"-"`
	FullName         string `json:"fullName" yaml:"fullName" firestore:"fullName"`
	Age              int    `json:"age" yaml:"age" firestore:"age"`
	Gender           string `json:"gender" yaml:"gender" firestore:"gender"`
	ParentName       string `json:"parentName" yaml:"parentName" firestore:"parentName"`
	Phone            string `json:"phone" yaml:"phone" firestore:"phone"`
	EmergencyContact string `json:"emergencyContact" yaml:"emergencyContact" firestore:"emergencyContact"`
	Grade            string `json:"grade" yaml:"grade" firestore:"grade"`
	Hobbies          string `json:"hobbies" yaml:"hobbies" firestore:"hobbies"`
	Allergies        string `json:"allergies,omitempty" yaml:"allergies,omitempty" firestore:"allergies"`

	ReceiptURL        string     `json:"receiptUrl,omitempty" yaml:"receiptUrl,omitempty" firestore:"receiptUrl"`
	ReceiptFileName   string     `json:"receiptFileName,omitempty" yaml:"receiptFileName,omitempty" firestore:"receiptFileName"`
	ReceiptUploadedAt *time.Time `json:"receiptUploadedAt,omitempty" yaml:"receiptUploadedAt,omitempty" firestore:"receiptUploadedAt"`

	PaymentStatus    PaymentStatus  `json:"paymentStatus,omitempty" yaml:"paymentStatus,omitempty" firestore:"paymentStatus"`
	PaymentAmount    string         `json:"paymentAmount,omitempty" yaml:"paymentAmount,omitempty" firestore:"paymentAmount"`
	PaymentDate      string         `json:"paymentDate,omitempty" yaml:"paymentDate,omitempty" firestore:"paymentDate"`
	TransactionID    string         `json:"transactionId,omitempty" yaml:"transactionId,omitempty" firestore:"transactionId"`
	VerificationData map[string]any `json:"verificationData,omitempty" yaml:"verificationData,omitempty" firestore:"verificationData"`

	Status    RegistrationStatus `json:"status" yaml:"status" firestore:"status"`
	CreatedAt time.Time          `json:"createdAt" yaml:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" yaml:"updatedAt" firestore:"updatedAt"`
}

// Field names used for partial updates. They match the stored document keys.
const (
	FieldReceiptURL        = "receiptUrl"
	FieldReceiptFileName   = "receiptFileName"
	FieldReceiptUploadedAt = "receiptUploadedAt"
	FieldPaymentStatus     = "paymentStatus"
	FieldPaymentAmount     = "paymentAmount"
	FieldPaymentDate       = "paymentDate"
	FieldTransactionID     = "transactionId"
	FieldVerificationData  = "verificationData"
	FieldStatus            = "status"
	FieldUpdatedAt         = "updatedAt"
	FieldCreatedAt         = "createdAt"
)

// HasReceipt reports whether a receipt has been attached.
func (r *Registration) HasReceipt() bool {
	return r.ReceiptURL != ""
}
