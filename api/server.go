/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. observe:    Request log line and HTTP metrics, labelled by route pattern
  4. CORS:       Cross-origin requests for the planner frontend

ROUTE GROUPS:
  /api/state            Whole plan import/export
  /api/regions          Region codes
  /api/holidays         Public holidays per region
  /api/employees/*      Employees, their entries and vacation balance
  /api/shifts/*         Shift definitions
  /api/reports/*        Monthly report
  /api/advisor/*        Advisory service
  /api/scenarios/*      Built-in plans
  /metrics              Prometheus scrape endpoint (when enabled)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/shiftplan/serve.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shahabsali127/shiftplan/logger"
	"github.com/shahabsali127/shiftplan/metrics"
)

// RouterOptions configure NewRouter. Zero values are usable.
type RouterOptions struct {
	AllowedOrigins []string
	Logger         logger.Logger
	Metrics        *metrics.Recorder
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe(opts.Logger, opts.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Put("/state", h.PutState)
		r.Get("/regions", h.ListRegions)
		r.Get("/holidays", h.ListHolidays)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/vacation", h.GetVacationBalance)
			r.Get("/{id}/entries/{date}", h.GetEntry)
			r.Patch("/{id}/entries/{date}", h.PatchEntry)
			r.Delete("/{id}/entries/{date}", h.ClearEntry)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Put("/{id}", h.UpdateShift)
			r.Delete("/{id}", h.DeleteShift)
		})

		r.Get("/reports/{year}/{month}", h.GetMonthlyReport)

		r.Route("/advisor", func(r chi.Router) {
			r.Post("/analyze", h.Analyze)
			r.Post("/holidays", h.ResearchHolidays)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetPlan)
		})
	})

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	return r
}

// observe logs one line per request and records its latency under the
// matched route pattern, so path parameters do not explode label values.
func observe(log logger.Logger, rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			took := time.Since(start)

			rec.RecordHTTP(r.Method, route, status, took)
			log.Debugw("http request", map[string]any{
				"method":     r.Method,
				"path":       r.URL.Path,
				"route":      route,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"took_ms":    took.Milliseconds(),
				"request_id": middleware.GetReqID(r.Context()),
			})
		})
	}
}
