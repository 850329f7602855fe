// internal/service/applicants.go
package service

import (
	"context"
	"errors"
	"time"

	apperrors "simple-mortgage/internal/common/errors"
	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/common/metrics"
	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"
	"simple-mortgage/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ApplicantService owns applicant CRUD and idempotent creation.
type ApplicantService struct {
	store  storage.ApplicantStore
	locker storage.Locker
	tracer trace.Tracer
	logger logger.Logger
	now    func() time.Time
}

type ApplicantOption func(*ApplicantService)

func WithApplicantClock(now func() time.Time) ApplicantOption {
	return func(s *ApplicantService) { s.now = now }
}

func NewApplicantService(store storage.ApplicantStore, locker storage.Locker, tracer trace.Tracer, log logger.Logger, opts ...ApplicantOption) *ApplicantService {
	if locker == nil {
		locker = storage.NewLocalLocker()
	}
	s := &ApplicantService{
		store:  store,
		locker: locker,
		tracer: tracer,
		logger: log.WithFields(map[string]interface{}{"component": "applicant-service"}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ApplicantService) List(ctx context.Context) (_ []models.Applicant, err error) {
	ctx, span := s.tracer.Start(ctx, "ApplicantService.List")
	defer func() { endSpan(span, err) }()

	list, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list applicants", err)
	}
	return list, nil
}

func (s *ApplicantService) Get(ctx context.Context, id int64) (_ *models.Applicant, err error) {
	ctx, span := s.tracer.Start(ctx, "ApplicantService.Get", trace.WithAttributes(attribute.Int64("applicant.id", id)))
	defer func() { endSpan(span, err) }()

	a, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NewApplicantNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseQueryFailedError("get applicant", err)
	}
	return a, nil
}

// FindOrCreate returns the stored applicant with the candidate's identity, or stores
// the candidate. created is true only when a new record was inserted. Invalid input
// is reported as *mortgage.Report.
func (s *ApplicantService) FindOrCreate(ctx context.Context, candidate models.Applicant) (_ *models.Applicant, created bool, err error) {
	ctx, span := s.tracer.Start(ctx, "ApplicantService.FindOrCreate")
	defer func() { endSpan(span, err) }()

	if report := mortgage.ValidateApplicant(candidate, s.now()); report != nil {
		return nil, false, report
	}
	candidate = mortgage.NormalizeApplicant(candidate)
	candidate.ID = 0
	key := mortgage.IdentityKeyOf(candidate)

	release, err := s.locker.Acquire(ctx, key.String())
	if err != nil {
		if errors.Is(err, storage.ErrLockUnavailable) {
			return nil, false, apperrors.NewLockUnavailableError(key.String())
		}
		return nil, false, apperrors.NewDatabaseConnectionFailedError(err)
	}
	defer release()

	existing, err := s.store.FindByIdentity(ctx, candidate)
	switch {
	case err == nil:
		metrics.ApplicantCreates.WithLabelValues("existing").Inc()
		s.logger.Info("applicant already exists", map[string]interface{}{"applicantId": existing.ID})
		span.SetAttributes(attribute.Int64("applicant.id", existing.ID), attribute.Bool("applicant.created", false))
		return existing, false, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, false, apperrors.NewDatabaseQueryFailedError("find applicant", err)
	}

	if err := s.store.Create(ctx, &candidate); err != nil {
		return nil, false, apperrors.NewDatabaseInsertFailedError(err)
	}

	metrics.ApplicantCreates.WithLabelValues("created").Inc()
	s.logger.Info("applicant created", map[string]interface{}{"applicantId": candidate.ID})
	span.SetAttributes(attribute.Int64("applicant.id", candidate.ID), attribute.Bool("applicant.created", true))
	return &candidate, true, nil
}

// Replace overwrites applicant id with a. a.ID must equal id.
func (s *ApplicantService) Replace(ctx context.Context, id int64, a models.Applicant) (err error) {
	ctx, span := s.tracer.Start(ctx, "ApplicantService.Replace", trace.WithAttributes(attribute.Int64("applicant.id", id)))
	defer func() { endSpan(span, err) }()

	if a.ID != id {
		return apperrors.NewIDMismatchError(id, a.ID)
	}
	if report := mortgage.ValidateApplicant(a, s.now()); report != nil {
		return report
	}
	a = mortgage.NormalizeApplicant(a)

	err = s.store.Update(ctx, &a)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrConflict) {
		return apperrors.NewDatabaseQueryFailedError("update applicant", err)
	}

	ok, existsErr := s.store.Exists(ctx, id)
	if existsErr != nil {
		return apperrors.NewDatabaseQueryFailedError("applicant exists", existsErr)
	}
	if !ok {
		return apperrors.NewApplicantNotFoundError(id)
	}
	return apperrors.NewStorageConflictError("applicant update affected no rows")
}

func (s *ApplicantService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "ApplicantService.Delete", trace.WithAttributes(attribute.Int64("applicant.id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewApplicantNotFoundError(id)
		}
		return apperrors.NewDatabaseQueryFailedError("delete applicant", err)
	}
	s.logger.Info("applicant deleted", map[string]interface{}{"applicantId": id})
	return nil
}
