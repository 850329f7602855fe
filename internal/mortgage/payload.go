// internal/mortgage/payload.go
package mortgage

import (
	"strings"
	"time"
	"unicode/utf8"

	"simple-mortgage/internal/common/validation"
	"simple-mortgage/internal/models"
)

const maxNameLength = 50

// NormalizeApplicant trims names and email. Case is preserved.
func NormalizeApplicant(a models.Applicant) models.Applicant {
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Email = strings.TrimSpace(a.Email)
	return a
}

// ValidateApplicant returns nil when a is acceptable for storage.
func ValidateApplicant(a models.Applicant, now time.Time) *Report {
	report := NewReport()

	checkName(report, FieldFirstName, "First Name", a.FirstName)
	checkName(report, FieldLastName, "Last Name", a.LastName)

	switch {
	case a.DateOfBirth.IsZero():
		report.Add(FieldDateOfBirth, "Date of Birth is required")
	case a.DateOfBirth.After(now):
		report.Add(FieldDateOfBirth, "Date of Birth cannot be in the future")
	}

	email := strings.TrimSpace(a.Email)
	switch {
	case email == "":
		report.Add(FieldEmail, "Email is required")
	case !validation.ValidateEmail(email):
		report.Add(FieldEmail, "Email is not a valid email address")
	}

	if report.Empty() {
		return nil
	}
	return report
}

func checkName(report *Report, field Field, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		report.Add(field, label+" is required")
		return
	}
	if utf8.RuneCountInString(value) > maxNameLength {
		report.Add(field, label+" cannot be longer than 50 characters")
	}
}

// ValidateProduct returns nil when p is acceptable for storage.
func ValidateProduct(p models.Product) *Report {
	report := NewReport()

	if strings.TrimSpace(p.Lender) == "" {
		report.Add(FieldLender, "Lender is required")
	}
	if p.InterestRate < 0 {
		report.Add(FieldInterestRate, "Interest Rate cannot be negative")
	}
	if p.LTV < 0 {
		report.Add(FieldLTV, "LTV cannot be negative")
	}

	if report.Empty() {
		return nil
	}
	return report
}

// ReportFromSchema converts schema violations into a report keyed by payload field.
func ReportFromSchema(result *validation.ValidationResult) *Report {
	if result == nil || result.Valid {
		return nil
	}
	report := NewReport()
	for _, e := range result.Errors {
		report.Add(Field(e.Field), e.Message)
	}
	return report
}
