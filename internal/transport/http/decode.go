// internal/transport/http/decode.go
package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "simple-mortgage/internal/common/errors"
	"simple-mortgage/internal/common/validation"
	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeBody validates the request body against schema and decodes it into dst.
// Schema violations come back as a report. Any other error is a transport failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v *validation.Validator, schema string, dst interface{}) (*mortgage.Report, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		report := mortgage.NewReport()
		report.Add(mortgage.FieldBody, "request body could not be read")
		return report, nil
	}

	result, err := v.ValidateJSON(schema, body)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", schema, err)
	}
	if report := mortgage.ReportFromSchema(result); report != nil {
		return report, nil
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return unmarshalReport(err), nil
	}
	return nil, nil
}

// unmarshalReport attributes decode failures that the schema cannot catch.
// Only dateOfBirth has a format the schema does not check.
func unmarshalReport(err error) *mortgage.Report {
	report := mortgage.NewReport()
	var dateErr *models.DateError
	if errors.As(err, &dateErr) {
		report.Add(mortgage.FieldDateOfBirth, "Date of Birth is not a valid date")
		return report
	}
	report.Add(mortgage.FieldBody, "request body is not valid JSON")
	return report
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewInvalidIdentifierError(raw)
	}
	return id, nil
}

// amount reads a decimal query parameter. A missing parameter is zero and is left
// to the evaluator's rules.
func amount(q url.Values, key string, field mortgage.Field, label string, report *mortgage.Report) float64 {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		report.Add(field, label+" must be a number")
		return 0
	}
	return v
}
