// internal/workers/eligibility/list-eligible-products/handler.go
package listeligibleproducts

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"simple-mortgage/internal/common/errors"
	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/common/metrics"
	"simple-mortgage/internal/common/observability"
	"simple-mortgage/internal/common/validation"
	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"
	"simple-mortgage/internal/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "list-eligible-products"
)

// ProductSearcher runs the eligibility evaluation for one applicant.
type ProductSearcher interface {
	ListEligibleProducts(ctx context.Context, applicantID int64, propertyValue, depositAmount float64) (*service.EligibilityResult, error)
}

type Handler struct {
	config       *Config
	search       ProductSearcher
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, search ProductSearcher, v *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		search:       search,
		validator:    v,
		errorHandler: errors.NewErrorHandler(l),
		obs:          obs,
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.fail(client, job, err, start)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.fail(client, job, err, start)
		return
	}

	h.completeJob(client, job, output, start)
}

// parseInput checks the job variables against the eligibility request schema
// before decoding them.
func (h *Handler) parseInput(variables string) (*Input, error) {
	if h.validator != nil {
		result, err := h.validator.ValidateJSON(validation.SchemaEligibilityRequest, []byte(variables))
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if report := mortgage.ReportFromSchema(result); report != nil {
			return nil, validationError(report)
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		report := mortgage.NewReport()
		report.Add(mortgage.FieldBody, fmt.Sprintf("parse input: %v", err))
		return nil, validationError(report)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.search.ListEligibleProducts(ctx, input.ApplicantID, input.PropertyValue, input.DepositAmount)
	if err != nil {
		var report *mortgage.Report
		if stderrors.As(err, &report) {
			return nil, validationError(report)
		}
		return nil, err
	}

	products := result.Products
	if products == nil {
		products = []models.Product{}
	}

	h.logger.Info("eligible products listed", map[string]interface{}{
		"applicantId":  input.ApplicantID,
		"loanToValue":  result.LoanToValue,
		"productCount": len(products),
	})

	return &Output{
		Eligible:     true,
		Products:     products,
		ProductCount: len(products),
		LoanToValue:  result.LoanToValue,
	}, nil
}

func validationError(report *mortgage.Report) *errors.StandardError {
	return errors.NewValidationFailedError(errors.ErrCodeEligibilityValidationFailed,
		"Product Search Validation Failed", report.Map())
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	ctx := context.Background()
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		h.fail(client, job, errors.NewInternalError(err), start)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")

	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":       job.Key,
		"productCount": output.ProductCount,
	})
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, err error, start time.Time) {
	ctx := context.Background()
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")

	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// ParseInput exposes variable parsing for tests.
func (h *Handler) ParseInput(variables string) (*Input, error) {
	return h.parseInput(variables)
}
