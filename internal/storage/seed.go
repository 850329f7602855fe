// internal/storage/seed.go
package storage

import (
	"context"
	"fmt"
	"time"

	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/models"
)

func seedProducts() []models.Product {
	return []models.Product{
		{Lender: "Bank A", InterestRate: 2, InterestTerm: "Variable", LTV: 60},
		{Lender: "Bank B", InterestRate: 3, InterestTerm: "Fixed", LTV: 60},
		{Lender: "Bank C", InterestRate: 4, InterestTerm: "Variable", LTV: 90},
	}
}

func seedApplicants() []models.Applicant {
	return []models.Applicant{
		{FirstName: "Gordon", LastName: "Ramsey 17", DateOfBirth: models.NewDate(2003, time.January, 1), Email: "gordon@fakemail.com"},
		{FirstName: "Gordon", LastName: "Ramsey 18", DateOfBirth: models.NewDate(2003, time.October, 1), Email: "ramsey@fakemail.com"},
	}
}

// Seed loads the starter products and applicants into empty stores. A store that
// already holds rows is left untouched.
func Seed(ctx context.Context, applicants ApplicantStore, products ProductStore, log logger.Logger) error {
	n, err := products.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if n == 0 {
		for _, p := range seedProducts() {
			p := p
			if err := products.Create(ctx, &p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.Lender, err)
			}
		}
		log.Info("seeded products", map[string]interface{}{"count": len(seedProducts())})
	}

	n, err = applicants.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed applicants: %w", err)
	}
	if n == 0 {
		for _, a := range seedApplicants() {
			a := a
			if err := applicants.Create(ctx, &a); err != nil {
				return fmt.Errorf("seed applicant %s %s: %w", a.FirstName, a.LastName, err)
			}
		}
		log.Info("seeded applicants", map[string]interface{}{"count": len(seedApplicants())})
	}

	return nil
}
