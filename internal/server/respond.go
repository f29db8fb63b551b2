package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"fjacquet/camp-registration/internal/parsererror"
	"fjacquet/camp-registration/internal/registration"
	"fjacquet/camp-registration/internal/validation"
)

// WriteJSON writes data as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorBody{Error: message})
}

type errorBody struct {
	Error      string       `json:"error"`
	Details    string       `json:"details,omitempty"`
	Fields     []fieldError `json:"fields,omitempty"`
	IsTelebirr *bool        `json:"isTelebirr,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse maps a service error to a status and body.
func errorResponse(err error) (int, errorBody) {
	var (
		fe validation.FieldErrors
		ve *parsererror.ValidationError
		fm *parsererror.InvalidFormatError
		vr *parsererror.VerificationError
		ue *parsererror.UploadError
	)
	switch {
	case errors.As(err, &fe):
		body := errorBody{Error: "Invalid registration form"}
		for _, e := range fe {
			body.Fields = append(body.Fields, fieldError{Field: e.Field, Message: e.Reason})
		}
		return http.StatusBadRequest, body
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Error: ve.Reason}
	case errors.As(err, &fm):
		return http.StatusBadRequest, errorBody{Error: "Unsupported file type", Details: fm.ActualFormat}
	case errors.Is(err, parsererror.ErrNoText):
		return http.StatusBadRequest, errorBody{Error: registration.ReasonNoText}
	case parsererror.IsNotFound(err):
		return http.StatusNotFound, errorBody{Error: "Registration not found"}
	case errors.Is(err, registration.ErrVerifierDisabled):
		return http.StatusServiceUnavailable, errorBody{Error: err.Error()}
	case errors.As(err, &vr):
		return http.StatusBadGateway, errorBody{Error: "Payment verification failed", Details: vr.Message}
	case errors.As(err, &ue):
		return http.StatusBadGateway, errorBody{Error: "Failed to upload receipt", Details: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: "Internal server error", Details: err.Error()}
	}
}

func boolPtr(b bool) *bool { return &b }
