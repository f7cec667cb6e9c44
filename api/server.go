/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (httplog, ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /healthz              Liveness
  /metrics              Prometheus scrape endpoint
  /api/calculate/*      Stateless calculator
  /api/employees/*      Employee records and payslip history
  /api/payslips/*       Generation, preview, retrieval, PDF
  /api/payroll-runs/*   Batch generation for a month
  /api/scenarios/*      Demo data
  /api/policy           Active policy

SEE ALSO:
  - handlers.go: Handler implementations
  - cli/serve.go: Server startup
*/
package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	CORSOrigins []string
	Logger      *slog.Logger

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// NewLogger returns a JSON slog logger using ECS field names, matching the
// request logger's schema.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(slog.String("app", "payroll-engine"))
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelDebug,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/calculate", func(r chi.Router) {
			r.Post("/social-security", h.CalculateSocialSecurity)
			r.Post("/prorate", h.CalculateProrate)
			r.Post("/tax", h.CalculateTax)
			r.Post("/net", h.CalculateNet)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/payslips", h.ListEmployeePayslips)
		})

		r.Route("/payslips", func(r chi.Router) {
			r.Post("/", h.GeneratePayslip)
			r.Post("/preview", h.PreviewPayslip)
			r.Get("/{id}", h.GetPayslip)
			r.Get("/{id}/pdf", h.GetPayslipPDF)
		})

		r.Route("/payroll-runs", func(r chi.Router) {
			r.Post("/", h.RunPayroll)
			r.Get("/last", h.LastPayrollRun)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})

		r.Get("/policy", h.GetPolicy)
	})

	return r
}
