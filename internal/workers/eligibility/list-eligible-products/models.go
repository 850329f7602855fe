// internal/workers/eligibility/list-eligible-products/models.go
package listeligibleproducts

import "simple-mortgage/internal/models"

type Input struct {
	ApplicantID   int64   `json:"applicantId"`
	PropertyValue float64 `json:"propertyValue"`
	DepositAmount float64 `json:"depositAmount"`
}

type Output struct {
	Eligible     bool             `json:"eligible"`
	Products     []models.Product `json:"products"`
	ProductCount int              `json:"productCount"`
	LoanToValue  float64          `json:"loanToValue"`
}
