// internal/transport/http/respond.go
package httptransport

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	apperrors "simple-mortgage/internal/common/errors"
	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/mortgage"
)

// Problem is the body of a 400 validation response.
type Problem struct {
	Title  string           `json:"title"`
	Status int              `json:"status"`
	Detail string           `json:"detail"`
	Errors *mortgage.Report `json:"errors"`
}

// problemKind names the operation a validation problem belongs to.
type problemKind struct {
	title  string
	detail string
}

var (
	productSearchProblem = problemKind{title: "Product Search", detail: "Product Search Validation Failed"}
	applicantProblem     = problemKind{title: "Applicant", detail: "Applicant Validation Failed"}
	productProblem       = problemKind{title: "Product", detail: "Product Validation Failed"}
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, kind problemKind, report *mortgage.Report) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  kind.title,
		Status: http.StatusBadRequest,
		Detail: kind.detail,
		Errors: report,
	})
}

// writeError renders a report as a problem body and anything else as {code, message}.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, kind problemKind, err error) {
	var report *mortgage.Report
	if stderrors.As(err, &report) {
		writeProblem(w, kind, report)
		return
	}

	stdErr := apperrors.Normalize(err)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", map[string]interface{}{
			"requestId": RequestIDFrom(r.Context()),
			"path":      r.URL.Path,
			"code":      string(stdErr.Code),
			"details":   stdErr.Details,
		})
	}
	writeJSON(w, status, errorBody{Code: string(stdErr.Code), Message: stdErr.Message})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeApplicantNotFound, apperrors.ErrCodeProductNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidIdentifier,
		apperrors.ErrCodeIDMismatch,
		apperrors.ErrCodeApplicantValidationFailed,
		apperrors.ErrCodeProductValidationFailed,
		apperrors.ErrCodeEligibilityValidationFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeLockUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
