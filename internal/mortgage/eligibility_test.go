// internal/mortgage/eligibility_test.go
package mortgage

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"simple-mortgage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(DefaultPolicy(), WithClock(func() time.Time { return fixedNow }))
}

func seedProducts() []models.Product {
	return []models.Product{
		{ID: 1, Lender: "Bank A", InterestRate: 2, InterestTerm: "Variable", LTV: 60},
		{ID: 2, Lender: "Bank B", InterestRate: 3, InterestTerm: "Fixed", LTV: 60},
		{ID: 3, Lender: "Bank C", InterestRate: 4, InterestTerm: "Variable", LTV: 90},
	}
}

func adult() *models.Applicant {
	return &models.Applicant{
		ID:          1,
		FirstName:   "Peter",
		LastName:    "Lansley",
		DateOfBirth: models.NewDate(1980, time.February, 11),
		Email:       "peter@x",
	}
}

func lenders(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Lender
	}
	return out
}

// ==========================
// Scenario Tests
// ==========================

func TestEvaluate_ScenarioA_EligibleByLTV(t *testing.T) {
	products, report := newTestEvaluator().Evaluate(adult(), 100, 20, seedProducts())

	assert.Nil(t, report)
	assert.Equal(t, []string{"Bank C"}, lenders(products))
}

func TestEvaluate_ScenarioB_LTVTooHigh(t *testing.T) {
	products, report := newTestEvaluator().Evaluate(adult(), 100, 5, seedProducts())

	require.NotNil(t, report)
	assert.Nil(t, products)
	assert.Equal(t, []Field{FieldLoanToValue}, report.Fields())
	assert.Equal(t, []string{"Loan to Value (95%) cannot exceed 90%"}, report.Messages(FieldLoanToValue))
}

func TestEvaluate_ScenarioC_Underage(t *testing.T) {
	child := adult()
	child.DateOfBirth = models.DateOf(fixedNow.AddDate(-2, 0, 0))

	products, report := newTestEvaluator().Evaluate(child, 100, 50, seedProducts())

	require.NotNil(t, report)
	assert.Nil(t, products)
	assert.Equal(t, []string{"Applicant age (2) cannot be under 18"}, report.Messages(FieldApplicant))
}

// ==========================
// Rule Tests
// ==========================

func TestEvaluate_Rules(t *testing.T) {
	tests := []struct {
		name      string
		applicant *models.Applicant
		property  float64
		deposit   float64
		want      map[Field][]string
		order     []Field
	}{
		{
			name:      "zero property value",
			applicant: adult(),
			property:  0,
			deposit:   10,
			want: map[Field][]string{
				FieldPropertyValue: {"Property Value cannot be less than or equal to zero"},
				FieldDepositAmount: {"Deposit Amount cannot be equal to or greater than Property Value"},
			},
			order: []Field{FieldPropertyValue, FieldDepositAmount},
		},
		{
			name:      "negative deposit",
			applicant: adult(),
			property:  100,
			deposit:   -1,
			want: map[Field][]string{
				FieldDepositAmount: {"Deposit Amount cannot be less than or equal to zero"},
				FieldLoanToValue:   {"Loan to Value (101%) cannot exceed 90%"},
			},
			order: []Field{FieldDepositAmount, FieldLoanToValue},
		},
		{
			name:      "both amounts zero",
			applicant: adult(),
			property:  0,
			deposit:   0,
			want: map[Field][]string{
				FieldPropertyValue: {"Property Value cannot be less than or equal to zero"},
				FieldDepositAmount: {
					"Deposit Amount cannot be less than or equal to zero",
					"Deposit Amount cannot be equal to or greater than Property Value",
				},
			},
			order: []Field{FieldPropertyValue, FieldDepositAmount},
		},
		{
			name:      "deposit equals property",
			applicant: adult(),
			property:  200,
			deposit:   200,
			want: map[Field][]string{
				FieldDepositAmount: {"Deposit Amount cannot be equal to or greater than Property Value"},
			},
			order: []Field{FieldDepositAmount},
		},
		{
			name:      "fractional ltv",
			applicant: adult(),
			property:  200,
			deposit:   9,
			want: map[Field][]string{
				FieldLoanToValue: {"Loan to Value (95.5%) cannot exceed 90%"},
			},
			order: []Field{FieldLoanToValue},
		},
		{
			name:      "NaN property value",
			applicant: adult(),
			property:  math.NaN(),
			deposit:   20,
			want: map[Field][]string{
				FieldPropertyValue: {"Property Value must be a number"},
			},
			order: []Field{FieldPropertyValue},
		},
		{
			name:      "NaN deposit",
			applicant: adult(),
			property:  100,
			deposit:   math.NaN(),
			want: map[Field][]string{
				FieldDepositAmount: {"Deposit Amount must be a number"},
			},
			order: []Field{FieldDepositAmount},
		},
		{
			name:      "infinite property value",
			applicant: adult(),
			property:  math.Inf(1),
			deposit:   20,
			want: map[Field][]string{
				FieldPropertyValue: {"Property Value must be a number"},
			},
			order: []Field{FieldPropertyValue},
		},
		{
			name:      "negative infinite deposit",
			applicant: adult(),
			property:  100,
			deposit:   math.Inf(-1),
			want: map[Field][]string{
				FieldDepositAmount: {"Deposit Amount must be a number"},
			},
			order: []Field{FieldDepositAmount},
		},
		{
			name:      "unknown applicant",
			applicant: nil,
			property:  100,
			deposit:   20,
			want: map[Field][]string{
				FieldApplicant: {"Applicant does not exist"},
			},
			order: []Field{FieldApplicant},
		},
		{
			name:      "everything wrong at once",
			applicant: nil,
			property:  100,
			deposit:   0,
			want: map[Field][]string{
				FieldDepositAmount: {"Deposit Amount cannot be less than or equal to zero"},
				FieldLoanToValue:   {"Loan to Value (100%) cannot exceed 90%"},
				FieldApplicant:     {"Applicant does not exist"},
			},
			order: []Field{FieldDepositAmount, FieldLoanToValue, FieldApplicant},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, report := newTestEvaluator().Evaluate(tt.applicant, tt.property, tt.deposit, seedProducts())

			require.NotNil(t, report)
			assert.Nil(t, products)
			assert.Equal(t, tt.order, report.Fields())
			for field, msgs := range tt.want {
				assert.Equal(t, msgs, report.Messages(field), "field %s", field)
			}
		})
	}
}

func TestEvaluate_BoundaryIsInclusive(t *testing.T) {
	// 100 - 10 = 90% exactly: passes the ceiling and matches a 90% product.
	products, report := newTestEvaluator().Evaluate(adult(), 100, 10, seedProducts())

	assert.Nil(t, report)
	assert.Equal(t, []string{"Bank C"}, lenders(products))
}

func TestEvaluate_LowLTVMatchesAll(t *testing.T) {
	products, report := newTestEvaluator().Evaluate(adult(), 100, 50, seedProducts())

	assert.Nil(t, report)
	assert.Equal(t, []string{"Bank A", "Bank B", "Bank C"}, lenders(products))
}

func TestEvaluate_NoMatchingProducts(t *testing.T) {
	products, report := newTestEvaluator().Evaluate(adult(), 100, 20, []models.Product{
		{ID: 1, Lender: "Bank A", LTV: 60},
	})

	assert.Nil(t, report)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestEvaluate_AgeRounding(t *testing.T) {
	// 6497 days / 365 = 17.8 years.
	applicant := adult()
	applicant.DateOfBirth = models.DateOf(fixedNow.AddDate(0, 0, -6497))

	_, report := newTestEvaluator().Evaluate(applicant, 100, 20, seedProducts())

	require.NotNil(t, report)
	msgs := report.Messages(FieldApplicant)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Applicant age (17.8) cannot be under 18", msgs[0])
}

func TestEvaluate_CustomPolicy(t *testing.T) {
	e := NewEvaluator(Policy{MaxLTV: 95, MinAge: 21}, WithClock(func() time.Time { return fixedNow }))

	young := adult()
	young.DateOfBirth = models.DateOf(fixedNow.AddDate(-20, 0, -30))

	_, report := e.Evaluate(young, 100, 5, seedProducts())

	require.NotNil(t, report)
	assert.Equal(t, []Field{FieldApplicant}, report.Fields())
	assert.Contains(t, report.Messages(FieldApplicant)[0], "cannot be under 21")
	assert.Equal(t, Policy{MaxLTV: 95, MinAge: 21}, e.Policy())
}

func TestLoanToValue(t *testing.T) {
	assert.Equal(t, 80.0, LoanToValue(100, 20))
	assert.Equal(t, 0.0, LoanToValue(0, 20))
	assert.InDelta(t, 95.5, LoanToValue(200, 9), 1e-9)
}

func TestReport_JSONOrder(t *testing.T) {
	_, report := newTestEvaluator().Evaluate(nil, 0, 0, nil)
	require.NotNil(t, report)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"propertyval":["Property Value cannot be less than or equal to zero"],
		"depositamt":["Deposit Amount cannot be less than or equal to zero","Deposit Amount cannot be equal to or greater than Property Value"],
		"applicant":["Applicant does not exist"]
	}`, string(data))
	assert.Regexp(t, `^\{"propertyval":.*"depositamt":.*"applicant":`, string(data))
}
