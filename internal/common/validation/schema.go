// internal/common/validation/schema.go
package validation

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names of the embedded payload schemas.
const (
	SchemaApplicant          = "applicant"
	SchemaProduct            = "product"
	SchemaEligibilityRequest = "eligibility-request"
)

const rootField = "(root)"

// Single @ with a non-empty local part and domain. Bare hosts such as "x" are allowed.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks raw JSON documents against the embedded schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every embedded schema.
func NewValidator() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}

	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, entry := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", entry.Name(), err)
		}
		v.schemas[strings.TrimSuffix(entry.Name(), ".json")] = schema
	}
	return v, nil
}

// MustNewValidator panics if the embedded schemas do not compile.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateJSON validates a raw JSON document against the named schema.
// A malformed document is reported as a single error on the "body" field.
func (v *Validator) ValidateJSON(name string, document []byte) (*ValidationResult, error) {
	schema, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "body",
				Message: "request body is not valid JSON",
				Code:    "MALFORMED_JSON",
			}},
		}, nil
	}

	return toResult(result), nil
}

// ValidateObject validates an already decoded value (map or struct) against the named schema.
func (v *Validator) ValidateObject(name string, value interface{}) (*ValidationResult, error) {
	schema, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldOf(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

func fieldOf(desc gojsonschema.ResultError) string {
	if desc.Type() == "required" {
		if p, ok := desc.Details()["property"].(string); ok {
			return p
		}
	}
	field := desc.Field()
	if field == rootField {
		return "body"
	}
	return strings.TrimPrefix(field, rootField+".")
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
