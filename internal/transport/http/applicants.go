// internal/transport/http/applicants.go
package httptransport

import (
	"context"
	"fmt"
	"net/http"

	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/common/validation"
	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"
	"simple-mortgage/internal/service"

	"github.com/go-chi/chi/v5"
)

// ApplicantService defines the applicant operations the handlers need.
type ApplicantService interface {
	List(ctx context.Context) ([]models.Applicant, error)
	Get(ctx context.Context, id int64) (*models.Applicant, error)
	FindOrCreate(ctx context.Context, candidate models.Applicant) (*models.Applicant, bool, error)
	Replace(ctx context.Context, id int64, a models.Applicant) error
	Delete(ctx context.Context, id int64) error
}

// EligibilityService defines the product search.
type EligibilityService interface {
	ListEligibleProducts(ctx context.Context, applicantID int64, propertyValue, depositAmount float64) (*service.EligibilityResult, error)
}

// ApplicantHandler serves /applicants.
type ApplicantHandler struct {
	applicants  ApplicantService
	eligibility EligibilityService
	validator   *validation.Validator
	logger      logger.Logger
}

func NewApplicantHandler(applicants ApplicantService, eligibility EligibilityService, v *validation.Validator, log logger.Logger) *ApplicantHandler {
	return &ApplicantHandler{
		applicants:  applicants,
		eligibility: eligibility,
		validator:   v,
		logger:      log.WithFields(map[string]interface{}{"handler": "applicants"}),
	}
}

// Register mounts the applicant routes.
func (h *ApplicantHandler) Register(r chi.Router) {
	r.Route("/applicants", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleReplace)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/products", h.handleProducts)
	})
}

func (h *ApplicantHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.applicants.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	if list == nil {
		list = []models.Applicant{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ApplicantHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	a, err := h.applicants.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleCreate answers 201 with a Location for a new applicant and 200 when an
// applicant with the same identity already exists.
func (h *ApplicantHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var candidate models.Applicant
	report, err := decodeBody(w, r, h.validator, validation.SchemaApplicant, &candidate)
	if err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	if report != nil {
		writeProblem(w, applicantProblem, report)
		return
	}

	a, created, err := h.applicants.FindOrCreate(r.Context(), candidate)
	if err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, a)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("%s/applicants/%d", APIPrefix, a.ID))
	writeJSON(w, http.StatusCreated, a)
}

func (h *ApplicantHandler) handleReplace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}

	var a models.Applicant
	report, err := decodeBody(w, r, h.validator, validation.SchemaApplicant, &a)
	if err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	if report != nil {
		writeProblem(w, applicantProblem, report)
		return
	}

	if err := h.applicants.Replace(r.Context(), id, a); err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ApplicantHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	if err := h.applicants.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, applicantProblem, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProducts is the product search for one applicant. Missing amounts are
// treated as zero so every rule still reports.
func (h *ApplicantHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, productSearchProblem, err)
		return
	}

	q := r.URL.Query()
	parse := mortgage.NewReport()
	propertyValue := amount(q, "propertyval", mortgage.FieldPropertyValue, "Property Value", parse)
	depositAmount := amount(q, "depositamt", mortgage.FieldDepositAmount, "Deposit Amount", parse)
	if !parse.Empty() {
		writeProblem(w, productSearchProblem, parse)
		return
	}

	searchProducts(w, r, h.eligibility, h.logger, id, propertyValue, depositAmount)
}

func searchProducts(w http.ResponseWriter, r *http.Request, svc EligibilityService, log logger.Logger, applicantID int64, propertyValue, depositAmount float64) {
	result, err := svc.ListEligibleProducts(r.Context(), applicantID, propertyValue, depositAmount)
	if err != nil {
		writeError(w, r, log, productSearchProblem, err)
		return
	}
	products := result.Products
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}
