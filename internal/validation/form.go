// Package validation checks registration forms and uploaded receipt files
// before they reach the store or the file host.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"fjacquet/camp-registration/internal/parsererror"
)

//go:embed form.schema.json
var formSchema []byte

// Form is the registration form as submitted by a parent or camper.
type Form struct {
	FullName         string `json:"fullName" yaml:"fullName"`
	Age              int    `json:"age" yaml:"age"`
	Gender           string `json:"gender" yaml:"gender"`
	ParentName       string `json:"parentName" yaml:"parentName"`
	EmergencyContact string `json:"emergencyContact" yaml:"emergencyContact"`
	Grade            string `json:"grade" yaml:"grade"`
	Hobbies          string `json:"hobbies" yaml:"hobbies"`
	Allergies        string `json:"allergies,omitempty" yaml:"allergies,omitempty"`
}

// PhonePrefix is prepended to the 8 digit contact number.
const PhonePrefix = "09"

// Phone returns the full mobile number built from the emergency contact.
func (f Form) Phone() string {
	return PhonePrefix + f.EmergencyContact
}

var fieldMessages = map[string]string{
	"fullName":         "Full name must be at least 2 characters",
	"age":              "You must be at least 13 years old to register",
	"gender":           "Please select a gender",
	"parentName":       "Parent/Guardian name is required",
	"emergencyContact": "Phone number must be 8 digits",
	"grade":            "Please select a grade",
	"hobbies":          "Please tell us about your hobbies",
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("form.schema.json", bytes.NewReader(formSchema)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("form.schema.json")
	})
	return compiled, compileErr
}

// ValidateForm checks f against the registration schema. Every violated
// field is reported in a FieldErrors sorted by field name.
func ValidateForm(f Form) error {
	f.FullName = strings.TrimSpace(f.FullName)
	f.ParentName = strings.TrimSpace(f.ParentName)
	f.Hobbies = strings.TrimSpace(f.Hobbies)

	s, err := schema()
	if err != nil {
		return err
	}

	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("unmarshal form: %w", err)
	}

	err = s.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return toValidationErrors(ve)
}

// FieldErrors lists every rejected field.
type FieldErrors []*parsererror.ValidationError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual field errors to errors.As.
func (fe FieldErrors) Unwrap() []error {
	out := make([]error, len(fe))
	for i, e := range fe {
		out[i] = e
	}
	return out
}

func toValidationErrors(ve *jsonschema.ValidationError) error {
	seen := map[string]bool{}
	var out FieldErrors
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		field := strings.TrimPrefix(e.InstanceLocation, "/")
		if field == "" {
			// Missing required properties are reported on the root.
			field = missingProperty(e.Message)
		}
		if seen[field] {
			return
		}
		seen[field] = true
		reason, ok := fieldMessages[field]
		if !ok {
			reason = e.Message
		}
		out = append(out, &parsererror.ValidationError{Field: field, Reason: reason})
	}
	walk(ve)

	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	if len(out) == 0 {
		return &parsererror.ValidationError{Reason: ve.Message}
	}
	return out
}

// missingProperty pulls the property name out of a "missing properties:
// 'a', 'b'" message. Only the first name is returned.
func missingProperty(msg string) string {
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(msg[start+1:], '\'')
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
