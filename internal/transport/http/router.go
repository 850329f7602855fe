// internal/transport/http/router.go
package httptransport

import (
	"context"
	"net/http"
	"sort"
	"time"

	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/common/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds everything the router serves.
type Deps struct {
	Applicants  ApplicantService
	Products    ProductService
	Eligibility EligibilityService
	Validator   *validation.Validator
	Logger      logger.Logger
	// Readiness maps a dependency name to its health check.
	Readiness map[string]Pinger
	// RequestTimeout bounds each API request. Zero disables it.
	RequestTimeout time.Duration
}

// NewRouter wires the API, operational endpoints and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(Instrument(d.Logger))

	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady(d.Readiness))
	r.Handle("/metrics", promhttp.Handler())

	r.Route(APIPrefix, func(r chi.Router) {
		if d.RequestTimeout > 0 {
			r.Use(middleware.Timeout(d.RequestTimeout))
		}
		NewApplicantHandler(d.Applicants, d.Eligibility, d.Validator, d.Logger).Register(r)
		NewProductHandler(d.Products, d.Eligibility, d.Validator, d.Logger).Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func handleReady(checks map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not ready"
		}
		writeJSON(w, status, map[string]interface{}{
			"status":       state,
			"dependencies": deps,
			"time":         time.Now().Format(time.RFC3339),
		})
	}
}
