// internal/models/product.go
package models

// Product is a mortgage offering. LTV is the highest loan-to-value
// percentage the lender accepts for it.
type Product struct {
	ID           int64   `json:"id"`
	Lender       string  `json:"lender"`
	InterestRate float64 `json:"interestRate"`
	InterestTerm string  `json:"interestTerm"`
	LTV          float64 `json:"ltv"`
}
