package logging

// Standard field names for structured log output.
const (
	FieldFile           = "file_name"
	FieldFileSize       = "file_size"
	FieldMIMEType       = "mime_type"
	FieldRegistrationID = "registration_id"
	FieldProvider       = "provider"
	FieldReference      = "reference"
	FieldField          = "field"
	FieldRule           = "rule"
	FieldOperation      = "operation"
	FieldStatus         = "status"
	FieldError          = "error"
	FieldDuration       = "duration_ms"
	FieldCount          = "count"
	FieldRequestID      = "request_id"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldURL            = "url"
)
