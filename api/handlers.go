/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the calculator and payslip generation via REST API. Handles HTTP
  request/response and JSON serialization, and delegates to package payroll.

ENDPOINTS:
  Calculator (stateless):
    POST   /api/calculate/social-security   Social-security contribution
    POST   /api/calculate/prorate           Partial-month salary
    POST   /api/calculate/tax               Monthly withholding tax
    POST   /api/calculate/net               Net pay breakdown

  Employees:
    GET    /api/employees                   List employees
    POST   /api/employees                   Create or update employee
    GET    /api/employees/{id}              Get employee
    GET    /api/employees/{id}/payslips     Payslip history, newest first

  Payslips:
    POST   /api/payslips                    Generate and store a payslip
    POST   /api/payslips/preview            Compute without storing
    GET    /api/payslips/{id}               Get payslip
    GET    /api/payslips/{id}/pdf           Printable payslip

  Payroll runs:
    POST   /api/payroll-runs                Generate a month for every employee
    GET    /api/payroll-runs/last           Last scheduled run

  Scenarios (scenarios.go):
    GET    /api/scenarios                   List demo scenarios
    POST   /api/scenarios/load              Load a demo scenario

  Policy:
    GET    /api/policy                      Active policy (factory JSON schema)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid period, currency mismatch
  - 404: Employee or payslip not found
  - 409: Payslip already exists for the period
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. Deploy behind an authenticating proxy.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/pdf"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	service     *payroll.Service
	store       payroll.Store
	calc        *payroll.Calculator
	recorder    *metrics.Recorder
	scheduler   *PayrollScheduler
	logger      *slog.Logger
	companyName string
}

type HandlerOption func(*Handler)

// WithRecorder counts calculator requests on rec.
func WithRecorder(rec *metrics.Recorder) HandlerOption {
	return func(h *Handler) { h.recorder = rec }
}

// WithScheduler exposes the scheduler's last run.
func WithScheduler(ps *PayrollScheduler) HandlerOption {
	return func(h *Handler) { h.scheduler = ps }
}

func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// WithCompanyName sets the heading printed on PDF payslips.
func WithCompanyName(name string) HandlerOption {
	return func(h *Handler) { h.companyName = name }
}

func NewHandler(service *payroll.Service, store payroll.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		service: service,
		store:   store,
		calc:    service.Calculator(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CALCULATOR ENDPOINTS
// =============================================================================

// CalculateSocialSecurity handles POST /api/calculate/social-security
func (h *Handler) CalculateSocialSecurity(w http.ResponseWriter, r *http.Request) {
	var req SocialSecurityRequest
	if !decode(w, r, &req) {
		return
	}
	h.count("social_security")

	result := h.calc.SocialSecurity(money.New(req.Salary, money.Currency(req.Currency)))
	writeJSON(w, http.StatusOK, CalculationResponse{Result: result})
}

// CalculateProrate handles POST /api/calculate/prorate
func (h *Handler) CalculateProrate(w http.ResponseWriter, r *http.Request) {
	var req ProrateRequest
	if !decode(w, r, &req) {
		return
	}
	h.count("prorate")

	period := payroll.CalendarPeriod{StartDay: req.StartDay, EndDay: req.EndDay, DaysInMonth: req.DaysInMonth}
	if period.EndDay == 0 {
		period.EndDay = period.DaysInMonth
	}
	result, err := h.calc.Prorate(money.New(req.Salary, money.Currency(req.Currency)), period)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CalculationResponse{Result: result})
}

// CalculateTax handles POST /api/calculate/tax
func (h *Handler) CalculateTax(w http.ResponseWriter, r *http.Request) {
	var req TaxRequest
	if !decode(w, r, &req) {
		return
	}
	h.count("tax")

	cur := money.Currency(req.Currency)
	a, err := h.calc.AssessTax(money.New(req.MonthlyIncome, cur), money.New(req.MonthlySSO, cur))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TaxResponse{
		MonthlyTax:   a.Monthly,
		AnnualIncome: a.AnnualIncome.StringFixed(2),
		Expenses:     a.Expenses.StringFixed(2),
		Allowances:   a.Allowances.StringFixed(2),
		NetTaxable:   a.NetTaxable.StringFixed(2),
		AnnualTax:    a.AnnualTax.StringFixed(2),
	})
}

// CalculateNet handles POST /api/calculate/net
func (h *Handler) CalculateNet(w http.ResponseWriter, r *http.Request) {
	var req NetRequest
	if !decode(w, r, &req) {
		return
	}
	h.count("net")

	cur := money.Currency(req.Currency)
	bd, err := h.calc.Net(payroll.Items{
		Salary:        money.New(req.Salary, cur),
		OT:            money.New(req.OT, cur),
		Incentive:     money.New(req.Incentive, cur),
		CustomIncomes: toLineItems(req.CustomIncomes, cur),
		Deductions:    money.New(req.Deductions, cur),
		SSO:           money.New(req.SSO, cur),
		Tax:           money.New(req.Tax, cur),
		CustomDeducts: toLineItems(req.CustomDeducts, cur),
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BreakdownDTO{
		Lines:       bd.Items.Lines(),
		TotalIncome: bd.TotalIncome,
		TotalDeduct: bd.TotalDeduct,
		Net:         bd.Net,
	})
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees handles GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee handles POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.BaseSalary.IsNegative() {
		writeError(w, http.StatusBadRequest, "base_salary must not be negative", nil)
		return
	}

	emp := payroll.Employee{
		ID:         payroll.EmployeeID(req.ID),
		Name:       req.Name,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
		BaseSalary: money.New(req.BaseSalary, money.Currency(req.Currency)),
	}
	if emp.ID == "" {
		emp.ID = payroll.EmployeeID(uuid.NewString())
	}
	if emp.BaseSalary.Currency == "" {
		emp.BaseSalary.Currency = h.calc.Policy().Currency
	}
	if req.HireDate != "" {
		hd, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "hire_date must be YYYY-MM-DD", err)
			return
		}
		emp.HireDate = hd
	}

	if err := h.store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	saved, err := h.store.GetEmployee(r.Context(), emp.ID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*saved))
}

// GetEmployee handles GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.store.GetEmployee(r.Context(), payroll.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// ListEmployeePayslips handles GET /api/employees/{id}/payslips
func (h *Handler) ListEmployeePayslips(w http.ResponseWriter, r *http.Request) {
	payslips, err := h.service.List(r.Context(), payroll.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]PayslipDTO, 0, len(payslips))
	for _, p := range payslips {
		dtos = append(dtos, toPayslipDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAYSLIP ENDPOINTS
// =============================================================================

// GeneratePayslip handles POST /api/payslips
func (h *Handler) GeneratePayslip(w http.ResponseWriter, r *http.Request) {
	var req GeneratePayslipRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.Generate(r.Context(), h.toGenerateRequest(req))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayslipDTO(*p))
}

// PreviewPayslip handles POST /api/payslips/preview
func (h *Handler) PreviewPayslip(w http.ResponseWriter, r *http.Request) {
	var req GeneratePayslipRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.Preview(r.Context(), h.toGenerateRequest(req))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(*p))
}

// GetPayslip handles GET /api/payslips/{id}
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), payroll.PayslipID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(*p))
}

// GetPayslipPDF handles GET /api/payslips/{id}/pdf
func (h *Handler) GetPayslipPDF(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), payroll.PayslipID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := pdf.RenderPayslip(&buf, *p, pdf.Options{CompanyName: h.companyName}); err != nil {
		h.writeDomainError(w, r, fmt.Errorf("failed to render payslip: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="payslip-%s-%s.pdf"`, p.EmployeeID, p.Period.Key()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// PAYROLL RUN ENDPOINTS
// =============================================================================

// RunPayroll handles POST /api/payroll-runs
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req RunPayrollRequest
	if !decode(w, r, &req) {
		return
	}
	period := payroll.FullMonth(req.Year, time.Month(req.Month))
	res, err := h.service.Run(r.Context(), period, req.Concurrency)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRunResultDTO(*res))
}

// LastPayrollRun handles GET /api/payroll-runs/last
func (h *Handler) LastPayrollRun(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil || h.scheduler.LastRun() == nil {
		writeError(w, http.StatusNotFound, "no scheduled run yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRunResultDTO(*h.scheduler.LastRun()))
}

// GetPolicy handles GET /api/policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.NewPolicyFactory().ToJSON(h.calc.Policy()))
}

// toGenerateRequest leaves request amounts untagged; the service prices them
// in the employee's salary currency.
func (h *Handler) toGenerateRequest(req GeneratePayslipRequest) payroll.GenerateRequest {
	var cur money.Currency
	gr := payroll.GenerateRequest{
		EmployeeID: payroll.EmployeeID(req.EmployeeID),
		Period: payroll.PayPeriod{
			Year:     req.Year,
			Month:    time.Month(req.Month),
			StartDay: req.StartDay,
			EndDay:   req.EndDay,
		},
		OvertimeHours: req.OvertimeHours,
		Incentive:     money.New(req.Incentive, cur),
		Deductions:    money.New(req.Deductions, cur),
		AbsentDays:    req.AbsentDays,
		CustomIncomes: toLineItems(req.CustomIncomes, cur),
		CustomDeducts: toLineItems(req.CustomDeducts, cur),
	}
	if req.SocialSecurity != nil {
		sso := money.New(*req.SocialSecurity, cur)
		gr.SocialSecurity = &sso
	}
	if req.Tax != nil {
		tax := money.New(*req.Tax, cur)
		gr.Tax = &tax
	}
	return gr
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) count(operation string) {
	if h.recorder != nil {
		h.recorder.Calculation(operation)
	}
}

// writeDomainError maps payroll errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case payroll.IsConflict(err):
		writeError(w, http.StatusConflict, "payslip already exists", err)
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
