package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstants(t *testing.T) {
	names := []string{
		FieldFile, FieldFileSize, FieldMIMEType, FieldRegistrationID,
		FieldProvider, FieldReference, FieldField, FieldRule, FieldOperation,
		FieldStatus, FieldError, FieldDuration, FieldCount, FieldRequestID,
		FieldMethod, FieldPath, FieldURL,
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		assert.NotEmpty(t, n)
		assert.False(t, seen[n], "duplicate field name %q", n)
		seen[n] = true
	}
}

func TestF(t *testing.T) {
	f := F(FieldProvider, "telebirr")
	assert.Equal(t, Field{Key: "provider", Value: "telebirr"}, f)
}
