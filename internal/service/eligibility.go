// internal/service/eligibility.go
package service

import (
	"context"
	"errors"

	apperrors "simple-mortgage/internal/common/errors"
	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/common/metrics"
	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"
	"simple-mortgage/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EligibilityResult is the outcome of a successful product search.
type EligibilityResult struct {
	Products    []models.Product
	LoanToValue float64
}

// EligibilityService loads an applicant and the product catalogue and runs the evaluator.
type EligibilityService struct {
	applicants storage.ApplicantStore
	products   storage.ProductStore
	evaluator  *mortgage.Evaluator
	tracer     trace.Tracer
	logger     logger.Logger
}

func NewEligibilityService(applicants storage.ApplicantStore, products storage.ProductStore, evaluator *mortgage.Evaluator, tracer trace.Tracer, log logger.Logger) *EligibilityService {
	return &EligibilityService{
		applicants: applicants,
		products:   products,
		evaluator:  evaluator,
		tracer:     tracer,
		logger:     log.WithFields(map[string]interface{}{"component": "eligibility-service"}),
	}
}

// ListEligibleProducts returns the products the applicant qualifies for. Rule
// violations, including an unknown applicant, come back as *mortgage.Report.
func (s *EligibilityService) ListEligibleProducts(ctx context.Context, applicantID int64, propertyValue, depositAmount float64) (_ *EligibilityResult, err error) {
	ctx, span := s.tracer.Start(ctx, "EligibilityService.ListEligibleProducts", trace.WithAttributes(
		attribute.Int64("applicant.id", applicantID),
		attribute.Float64("property.value", propertyValue),
		attribute.Float64("deposit.amount", depositAmount),
	))
	defer func() { endSpan(span, err) }()

	applicant, err := s.applicants.Get(ctx, applicantID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewDatabaseQueryFailedError("get applicant", err)
	}

	catalogue, err := s.products.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list products", err)
	}

	eligible, report := s.evaluator.Evaluate(applicant, propertyValue, depositAmount, catalogue)
	if report != nil {
		metrics.EligibilityEvaluations.WithLabelValues("rejected").Inc()
		s.logger.Info("product search rejected", map[string]interface{}{
			"applicantId": applicantID,
			"violations":  report.Map(),
		})
		return nil, report
	}

	ltv := mortgage.LoanToValue(propertyValue, depositAmount)
	metrics.EligibilityEvaluations.WithLabelValues("eligible").Inc()
	span.SetAttributes(attribute.Float64("loan_to_value", ltv), attribute.Int("products.eligible", len(eligible)))
	s.logger.Debug("product search completed", map[string]interface{}{
		"applicantId":  applicantID,
		"loanToValue":  ltv,
		"productCount": len(eligible),
	})

	return &EligibilityResult{Products: eligible, LoanToValue: ltv}, nil
}
