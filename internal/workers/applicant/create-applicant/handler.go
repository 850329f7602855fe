// internal/workers/applicant/create-applicant/handler.go
package createapplicant

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
	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "create-applicant"
)

// ApplicantCreator creates an applicant or returns the one with the same identity.
type ApplicantCreator interface {
	FindOrCreate(ctx context.Context, candidate models.Applicant) (*models.Applicant, bool, error)
}

type Handler struct {
	config       *Config
	applicants   ApplicantCreator
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, applicants ApplicantCreator, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		applicants:   applicants,
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		report := mortgage.NewReport()
		report.Add(mortgage.FieldBody, fmt.Sprintf("parse input: %v", err))
		h.fail(context.Background(), client, job, validationError(report), start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(context.Background(), client, job, err, start)
		return
	}

	h.completeJob(context.Background(), client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	candidate := models.Applicant{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}
	if input.DateOfBirth != "" {
		dob, err := models.ParseDate(input.DateOfBirth)
		if err != nil {
			report := mortgage.NewReport()
			report.Add(mortgage.FieldDateOfBirth, "Date of Birth is not a valid date")
			return nil, validationError(report)
		}
		candidate.DateOfBirth = dob
	}

	applicant, created, err := h.applicants.FindOrCreate(ctx, candidate)
	if err != nil {
		var report *mortgage.Report
		if stderrors.As(err, &report) {
			return nil, validationError(report)
		}
		return nil, err
	}

	h.logger.Info("applicant resolved", map[string]interface{}{
		"applicantId": applicant.ID,
		"created":     created,
	})

	return &Output{
		ApplicantID: applicant.ID,
		Created:     created,
		Applicant:   applicant,
	}, nil
}

func validationError(report *mortgage.Report) *errors.StandardError {
	return errors.NewValidationFailedError(errors.ErrCodeApplicantValidationFailed,
		"Applicant Validation Failed", report.Map())
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		h.fail(ctx, client, job, errors.NewInternalError(err), start)
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
		"jobKey": job.Key,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
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
