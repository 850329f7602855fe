// internal/mortgage/report.go
package mortgage

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Field names a request input that a violation is attributed to.
type Field string

// Eligibility fields.
const (
	FieldPropertyValue Field = "propertyval"
	FieldDepositAmount Field = "depositamt"
	FieldLoanToValue   Field = "loan-to-value"
	FieldApplicant     Field = "applicant"
)

// Payload fields for applicant and product create/replace.
const (
	FieldID           Field = "id"
	FieldFirstName    Field = "firstName"
	FieldLastName     Field = "lastName"
	FieldDateOfBirth  Field = "dateOfBirth"
	FieldEmail        Field = "email"
	FieldLender       Field = "lender"
	FieldInterestRate Field = "interestRate"
	FieldInterestTerm Field = "interestTerm"
	FieldLTV          Field = "ltv"
	FieldBody         Field = "body"
)

// Report collects validation violations keyed by field. Keys keep their first
// insertion order and messages keep the order they were added in.
type Report struct {
	order    []Field
	messages map[Field][]string
}

func NewReport() *Report {
	return &Report{messages: make(map[Field][]string)}
}

func (r *Report) Add(field Field, msg string) {
	if r.messages == nil {
		r.messages = make(map[Field][]string)
	}
	if _, seen := r.messages[field]; !seen {
		r.order = append(r.order, field)
	}
	r.messages[field] = append(r.messages[field], msg)
}

// Empty is true for a nil report too.
func (r *Report) Empty() bool {
	return r == nil || len(r.order) == 0
}

func (r *Report) Fields() []Field {
	if r == nil {
		return nil
	}
	out := make([]Field, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Report) Messages(field Field) []string {
	if r == nil {
		return nil
	}
	msgs := r.messages[field]
	out := make([]string, len(msgs))
	copy(out, msgs)
	return out
}

// Map returns a copy keyed by field name.
func (r *Report) Map() map[string][]string {
	out := make(map[string][]string)
	if r == nil {
		return out
	}
	for _, f := range r.order {
		out[string(f)] = r.Messages(f)
	}
	return out
}

// Error lets a report travel as an error through service layers.
func (r *Report) Error() string {
	if r.Empty() {
		return "validation failed"
	}
	parts := make([]string, 0, len(r.order))
	for _, f := range r.order {
		parts = append(parts, string(f)+": "+strings.Join(r.messages[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// MarshalJSON writes the fields as an object in insertion order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r != nil {
		for i, f := range r.order {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(string(f))
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(r.messages[f])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
