package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/camp-registration/internal/parsererror"
)

func validForm() Form {
	return Form{
		FullName:         "Hana Girma",
		Age:              15,
		Gender:           "female",
		ParentName:       "Girma Alemu",
		EmergencyContact: "12345678",
		Grade:            "9",
		Hobbies:          "reading, football",
	}
}

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(f *Form)
		wantFields []string
	}{
		{"valid", func(f *Form) {}, nil},
		{"valid with allergies", func(f *Form) { f.Allergies = "peanuts" }, nil},
		{"short name", func(f *Form) { f.FullName = "H" }, []string{"fullName"}},
		{"blank name after trim", func(f *Form) { f.FullName = "  H  " }, []string{"fullName"}},
		{"too young", func(f *Form) { f.Age = 12 }, []string{"age"}},
		{"age boundary", func(f *Form) { f.Age = 13 }, nil},
		{"unknown gender", func(f *Form) { f.Gender = "" }, []string{"gender"}},
		{"short contact", func(f *Form) { f.EmergencyContact = "1234567" }, []string{"emergencyContact"}},
		{"non digit contact", func(f *Form) { f.EmergencyContact = "1234567a" }, []string{"emergencyContact"}},
		{"unknown grade", func(f *Form) { f.Grade = "6" }, []string{"grade"}},
		{"missing hobbies", func(f *Form) { f.Hobbies = " " }, []string{"hobbies"}},
		{"several", func(f *Form) { f.ParentName = ""; f.Age = 0 }, []string{"age", "parentName"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			err := ValidateForm(f)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, parsererror.IsValidation(err))

			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			var got []string
			for _, e := range fe {
				got = append(got, e.Field)
				assert.Equal(t, fieldMessages[e.Field], e.Reason)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestForm_Phone(t *testing.T) {
	assert.Equal(t, "0912345678", validForm().Phone())
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIME("", []byte("%PDF-1.4")))
	assert.Equal(t, "application/pdf", DetectMIME("application/octet-stream", []byte("%PDF-1.4")))
	assert.Equal(t, "image/png", DetectMIME("Image/PNG; charset=binary", nil))
	assert.Equal(t, "text/plain", DetectMIME("", []byte("hello")))
}

func TestValidateReceiptFile(t *testing.T) {
	tests := []struct {
		name    string
		mime    string
		size    int64
		wantErr string
	}{
		{"png", "image/png", 1024, ""},
		{"pdf", MIMEPDF, DefaultMaxFileBytes, ""},
		{"too large", "image/jpeg", DefaultMaxFileBytes + 1, "File size must be less than 5MB"},
		{"empty", "image/jpeg", 0, "No file uploaded"},
		{"wrong type", "text/plain", 10, "Invalid file type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReceiptFile(tt.mime, tt.size, 0)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, parsererror.IsValidation(err))
		})
	}
}

func TestValidatePDFFile(t *testing.T) {
	assert.NoError(t, ValidatePDFFile(MIMEPDF, 10, 0))
	assert.ErrorContains(t, ValidatePDFFile("image/png", 10, 0), "Only PDF files are allowed")
	assert.ErrorContains(t, ValidatePDFFile(MIMEPDF, 2*1024*1024, 1024*1024), "less than 1MB")
}
