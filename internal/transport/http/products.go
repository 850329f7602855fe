// internal/transport/http/products.go
package httptransport

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "simple-mortgage/internal/common/errors"
	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/common/validation"
	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"

	"github.com/go-chi/chi/v5"
)

// ProductService defines the product operations the handlers need.
type ProductService interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p models.Product) (*models.Product, error)
	Replace(ctx context.Context, id int64, p models.Product) error
	Delete(ctx context.Context, id int64) error
}

// ProductHandler serves /products.
type ProductHandler struct {
	products    ProductService
	eligibility EligibilityService
	validator   *validation.Validator
	logger      logger.Logger
}

func NewProductHandler(products ProductService, eligibility EligibilityService, v *validation.Validator, log logger.Logger) *ProductHandler {
	return &ProductHandler{
		products:    products,
		eligibility: eligibility,
		validator:   v,
		logger:      log.WithFields(map[string]interface{}{"handler": "products"}),
	}
}

// Register mounts the product routes.
func (h *ProductHandler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleReplace)
		r.Delete("/{id}", h.handleDelete)
	})
}

// handleList returns the catalogue, or the eligibility view when applicantid is given.
// In that view both amounts are mandatory.
func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawApplicant := strings.TrimSpace(q.Get("applicantid"))
	if rawApplicant == "" {
		list, err := h.products.List(r.Context())
		if err != nil {
			writeError(w, r, h.logger, productProblem, err)
			return
		}
		if list == nil {
			list = []models.Product{}
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	applicantID, err := strconv.ParseInt(rawApplicant, 10, 64)
	if err != nil {
		writeError(w, r, h.logger, productSearchProblem, apperrors.NewInvalidIdentifierError(rawApplicant))
		return
	}

	report := mortgage.NewReport()
	if strings.TrimSpace(q.Get("propertyval")) == "" {
		report.Add(mortgage.FieldPropertyValue, "Property Value is required")
	}
	if strings.TrimSpace(q.Get("depositamt")) == "" {
		report.Add(mortgage.FieldDepositAmount, "Deposit Amount is required")
	}
	propertyValue := amount(q, "propertyval", mortgage.FieldPropertyValue, "Property Value", report)
	depositAmount := amount(q, "depositamt", mortgage.FieldDepositAmount, "Deposit Amount", report)
	if !report.Empty() {
		writeProblem(w, productSearchProblem, report)
		return
	}

	searchProducts(w, r, h.eligibility, h.logger, applicantID, propertyValue, depositAmount)
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	report, err := decodeBody(w, r, h.validator, validation.SchemaProduct, &p)
	if err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}
	if report != nil {
		writeProblem(w, productProblem, report)
		return
	}

	created, err := h.products.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("%s/products/%d", APIPrefix, created.ID))
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleReplace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}

	var p models.Product
	report, err := decodeBody(w, r, h.validator, validation.SchemaProduct, &p)
	if err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}
	if report != nil {
		writeProblem(w, productProblem, report)
		return
	}

	if err := h.products.Replace(r.Context(), id, p); err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, productProblem, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
