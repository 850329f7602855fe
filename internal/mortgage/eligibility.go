// internal/mortgage/eligibility.go
package mortgage

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"simple-mortgage/internal/models"
)

// Policy holds the eligibility thresholds.
type Policy struct {
	MaxLTV float64
	MinAge float64
}

func DefaultPolicy() Policy {
	return Policy{MaxLTV: 90, MinAge: 18}
}

const daysPerYear = 365

// Evaluator applies Policy to an eligibility request. It performs no I/O.
type Evaluator struct {
	policy Policy
	now    func() time.Time
}

type Option func(*Evaluator)

// WithClock overrides the clock used for age calculation.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

func NewEvaluator(policy Policy, opts ...Option) *Evaluator {
	e := &Evaluator{policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Policy() Policy {
	return e.policy
}

// LoanToValue is the borrowed share of the property value as a percentage.
// It is zero when propertyValue is zero.
func LoanToValue(propertyValue, depositAmount float64) float64 {
	if propertyValue == 0 {
		return 0
	}
	return (propertyValue - depositAmount) / propertyValue * 100
}

// AgeInYears uses a fixed 365-day year.
func AgeInYears(dob models.Date, now time.Time) float64 {
	return now.Sub(dob.Time).Hours() / 24 / daysPerYear
}

// Evaluate checks every rule and returns either the products whose LTV is at
// least the computed loan-to-value, or a non-empty report and no products.
func (e *Evaluator) Evaluate(applicant *models.Applicant, propertyValue, depositAmount float64, products []models.Product) ([]models.Product, *Report) {
	report := NewReport()

	finite := isFinite(propertyValue) && isFinite(depositAmount)

	switch {
	case !isFinite(propertyValue):
		report.Add(FieldPropertyValue, "Property Value must be a number")
	case !(propertyValue > 0):
		report.Add(FieldPropertyValue, "Property Value cannot be less than or equal to zero")
	}
	switch {
	case !isFinite(depositAmount):
		report.Add(FieldDepositAmount, "Deposit Amount must be a number")
	case !(depositAmount > 0):
		report.Add(FieldDepositAmount, "Deposit Amount cannot be less than or equal to zero")
	}
	if finite && !(depositAmount < propertyValue) {
		report.Add(FieldDepositAmount, "Deposit Amount cannot be equal to or greater than Property Value")
	}

	ltv := LoanToValue(propertyValue, depositAmount)
	if finite && propertyValue != 0 && !(ltv <= e.policy.MaxLTV) {
		report.Add(FieldLoanToValue, fmt.Sprintf("Loan to Value (%s%%) cannot exceed %s%%",
			formatNumber(ltv), formatNumber(e.policy.MaxLTV)))
	}

	if applicant == nil {
		report.Add(FieldApplicant, "Applicant does not exist")
	} else {
		age := AgeInYears(applicant.DateOfBirth, e.now())
		if age < e.policy.MinAge {
			report.Add(FieldApplicant, fmt.Sprintf("Applicant age (%s) cannot be under %s",
				formatNumber(roundTenths(age)), formatNumber(e.policy.MinAge)))
		}
	}

	if !report.Empty() {
		return nil, report
	}

	eligible := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.LTV >= ltv {
			eligible = append(eligible, p)
		}
	}
	return eligible, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// roundTenths rounds half to even at one decimal place.
func roundTenths(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

// formatNumber prints the shortest decimal that round-trips, so 95 prints as "95".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
