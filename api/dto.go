/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  payroll domain types.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Response wrappers

MONEY ON THE WIRE:
  Request amounts are decimal.Decimal and accept "25000.50" or 25000.50.
  Responses use money.Money, which always renders
  {"amount": "25000.50", "currency": "THB"}.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type (GET /api/policy)
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// CALCULATOR
// =============================================================================

type SocialSecurityRequest struct {
	Salary   decimal.Decimal `json:"salary"`
	Currency string          `json:"currency,omitempty"`
}

type ProrateRequest struct {
	Salary      decimal.Decimal `json:"salary"`
	Currency    string          `json:"currency,omitempty"`
	StartDay    int             `json:"start_day"`
	EndDay      int             `json:"end_day,omitempty"` // defaults to days_in_month
	DaysInMonth int             `json:"days_in_month"`
}

type TaxRequest struct {
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	MonthlySSO    decimal.Decimal `json:"monthly_sso"`
	Currency      string          `json:"currency,omitempty"`
}

type NetRequest struct {
	Currency      string          `json:"currency,omitempty"`
	Salary        decimal.Decimal `json:"salary"`
	OT            decimal.Decimal `json:"ot"`
	Incentive     decimal.Decimal `json:"incentive"`
	Deductions    decimal.Decimal `json:"deductions"`
	SSO           decimal.Decimal `json:"sso"`
	Tax           decimal.Decimal `json:"tax"`
	CustomIncomes []LineItemDTO   `json:"custom_incomes,omitempty"`
	CustomDeducts []LineItemDTO   `json:"custom_deductions,omitempty"`
}

type LineItemDTO struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// CalculationResponse wraps a single computed amount.
type CalculationResponse struct {
	Result money.Money `json:"result"`
}

// TaxResponse is the monthly withholding with its annual audit trail.
type TaxResponse struct {
	MonthlyTax   money.Money `json:"monthly_tax"`
	AnnualIncome string      `json:"annual_income"`
	Expenses     string      `json:"expenses"`
	Allowances   string      `json:"allowances"`
	NetTaxable   string      `json:"net_taxable"`
	AnnualTax    string      `json:"annual_tax"`
}

type BreakdownDTO struct {
	Lines       []payroll.LineItem `json:"lines"`
	TotalIncome money.Money        `json:"total_income"`
	TotalDeduct money.Money        `json:"total_deductions"`
	Net         money.Money        `json:"net"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email,omitempty"`
	Position   string      `json:"position,omitempty"`
	Department string      `json:"department,omitempty"`
	BaseSalary money.Money `json:"base_salary"`
	HireDate   string      `json:"hire_date,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// CreateEmployeeRequest creates or replaces an employee. An empty ID is
// assigned a UUID.
type CreateEmployeeRequest struct {
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	Email      string          `json:"email,omitempty"`
	Position   string          `json:"position,omitempty"`
	Department string          `json:"department,omitempty"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Currency   string          `json:"currency,omitempty"`
	HireDate   string          `json:"hire_date,omitempty"` // YYYY-MM-DD
}

// =============================================================================
// PAYSLIPS
// =============================================================================

type GeneratePayslipRequest struct {
	EmployeeID    string          `json:"employee_id"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	StartDay      int             `json:"start_day,omitempty"`
	EndDay        int             `json:"end_day,omitempty"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	Incentive     decimal.Decimal `json:"incentive"`
	Deductions    decimal.Decimal `json:"deductions"`
	AbsentDays    int             `json:"absent_days,omitempty"`
	CustomIncomes []LineItemDTO   `json:"custom_incomes,omitempty"`
	CustomDeducts []LineItemDTO   `json:"custom_deductions,omitempty"`

	// Manual overrides; omitted means calculate.
	SocialSecurity *decimal.Decimal `json:"sso,omitempty"`
	Tax            *decimal.Decimal `json:"tax,omitempty"`
}

type PayslipDTO struct {
	ID            string                   `json:"id"`
	EmployeeID    string                   `json:"employee_id"`
	Period        string                   `json:"period"`
	StartDate     string                   `json:"start_date"`
	EndDate       string                   `json:"end_date"`
	PolicyID      string                   `json:"policy_id"`
	Employee      payroll.EmployeeSnapshot `json:"employee"`
	Financials    payroll.Financials       `json:"financials"`
	CustomIncomes []payroll.LineItem       `json:"custom_incomes"`
	CustomDeducts []payroll.LineItem       `json:"custom_deductions"`
	TotalIncome   money.Money              `json:"total_income"`
	TotalDeduct   money.Money              `json:"total_deductions"`
	CreatedAt     time.Time                `json:"created_at,omitempty"`
}

// =============================================================================
// PAYROLL RUNS
// =============================================================================

type RunPayrollRequest struct {
	Year        int `json:"year"`
	Month       int `json:"month"`
	Concurrency int `json:"concurrency,omitempty"`
}

type RunResultDTO struct {
	Period     string            `json:"period"`
	Generated  []string          `json:"generated"`
	Skipped    []string          `json:"skipped"`
	Failed     map[string]string `json:"failed"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMs int64             `json:"duration_ms"`
}

// =============================================================================
// COMMON
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		Email:      e.Email,
		Position:   e.Position,
		Department: e.Department,
		BaseSalary: e.BaseSalary,
		CreatedAt:  e.CreatedAt,
	}
	if !e.HireDate.IsZero() {
		dto.HireDate = e.HireDate.Format("2006-01-02")
	}
	return dto
}

func toPayslipDTO(p payroll.Payslip) PayslipDTO {
	incomes, deducts := p.CustomIncomes, p.CustomDeducts
	if incomes == nil {
		incomes = []payroll.LineItem{}
	}
	if deducts == nil {
		deducts = []payroll.LineItem{}
	}
	return PayslipDTO{
		ID:            string(p.ID),
		EmployeeID:    string(p.EmployeeID),
		Period:        p.Period.Key(),
		StartDate:     p.Period.Start().Format("2006-01-02"),
		EndDate:       p.Period.End().Format("2006-01-02"),
		PolicyID:      string(p.PolicyID),
		Employee:      p.Employee,
		Financials:    p.Financials,
		CustomIncomes: incomes,
		CustomDeducts: deducts,
		TotalIncome:   p.TotalIncome,
		TotalDeduct:   p.TotalDeduct,
		CreatedAt:     p.CreatedAt,
	}
}

func toLineItems(items []LineItemDTO, cur money.Currency) []payroll.LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]payroll.LineItem, len(items))
	for i, li := range items {
		out[i] = payroll.LineItem{Label: li.Label, Amount: money.New(li.Amount, cur)}
	}
	return out
}

func toRunResultDTO(r payroll.RunResult) RunResultDTO {
	dto := RunResultDTO{
		Period:     r.Period.Key(),
		Generated:  make([]string, 0, len(r.Generated)),
		Skipped:    make([]string, 0, len(r.Skipped)),
		Failed:     make(map[string]string, len(r.Failed)),
		StartedAt:  r.StartedAt,
		DurationMs: r.Duration.Milliseconds(),
	}
	for _, id := range r.Generated {
		dto.Generated = append(dto.Generated, string(id))
	}
	for _, id := range r.Skipped {
		dto.Skipped = append(dto.Skipped, string(id))
	}
	for id, reason := range r.Failed {
		dto.Failed[string(id)] = reason
	}
	return dto
}
