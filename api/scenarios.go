/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	employees and payslips. Each scenario demonstrates one part of the
	calculation.

AVAILABLE SCENARIOS:

	small-office:      Three salaries across the contribution floor and cap
	mid-month-joiner:  Pro-rated first payslip for a hire on the 16th
	high-earner:       Upper tax brackets and the legacy ladder difference

HOW SCENARIOS WORK:
 1. Upsert employees with fixed IDs
 2. Generate the scenario's payslips through the service
 3. Payslips that already exist are left untouched, so loading twice is safe

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mid-month-joiner"}

SEE ALSO:
  - handlers.go: Generation endpoints used by the loaders
*/
package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type LoadScenarioResponse struct {
	Scenario  string   `json:"scenario"`
	Employees []string `json:"employees"`
	Payslips  []string `json:"payslips"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "small-office",
		Name:        "Small Office",
		Description: "Part-timer below the contribution floor, mid-level, and a salary above the cap",
	},
	{
		ID:          "mid-month-joiner",
		Name:        "Mid-Month Joiner",
		Description: "Hired on March 16th: pro-rated salary and contribution, no tax",
	},
	{
		ID:          "high-earner",
		Name:        "High Earner",
		Description: "500,000 monthly salary reaching the 35% bracket",
	},
}

type scenarioLoader func(h *Handler) ([]payroll.Employee, []payroll.GenerateRequest)

var scenarioLoaders = map[string]scenarioLoader{
	"small-office":     loadSmallOfficeScenario,
	"mid-month-joiner": loadMidMonthJoinerScenario,
	"high-earner":      loadHighEarnerScenario,
}

// ListScenarios handles GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario handles POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decode(w, r, &req) {
		return
	}
	loader, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown scenario", nil)
		return
	}

	ctx := r.Context()
	employees, requests := loader(h)

	resp := LoadScenarioResponse{Scenario: req.ScenarioID, Employees: []string{}, Payslips: []string{}}
	for _, emp := range employees {
		if err := h.store.SaveEmployee(ctx, emp); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		resp.Employees = append(resp.Employees, string(emp.ID))
	}
	for _, gr := range requests {
		p, err := h.service.Generate(ctx, gr)
		if payroll.IsConflict(err) {
			continue
		}
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		resp.Payslips = append(resp.Payslips, string(p.ID))
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) amount(s string) money.Money {
	return money.New(decimal.RequireFromString(s), h.calc.Policy().Currency)
}

func loadSmallOfficeScenario(h *Handler) ([]payroll.Employee, []payroll.GenerateRequest) {
	march := payroll.FullMonth(2025, time.March)
	employees := []payroll.Employee{
		{ID: "demo-parttime", Name: "Niran Part-Time", Position: "Assistant", BaseSalary: h.amount("1500")},
		{ID: "demo-engineer", Name: "Somchai Jaidee", Position: "Engineer", BaseSalary: h.amount("30000")},
		{ID: "demo-director", Name: "Malee Suksan", Position: "Director", BaseSalary: h.amount("120000")},
	}
	var requests []payroll.GenerateRequest
	for _, emp := range employees {
		requests = append(requests, payroll.GenerateRequest{EmployeeID: emp.ID, Period: march})
	}
	requests[1].OvertimeHours = decimal.NewFromInt(10)
	requests[1].Incentive = h.amount("1000")
	return employees, requests
}

func loadMidMonthJoinerScenario(h *Handler) ([]payroll.Employee, []payroll.GenerateRequest) {
	emp := payroll.Employee{
		ID:         "demo-joiner",
		Name:       "Kanya Mid-Month",
		Position:   "Analyst",
		BaseSalary: h.amount("30000"),
		HireDate:   time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC),
	}
	return []payroll.Employee{emp}, []payroll.GenerateRequest{
		{EmployeeID: emp.ID, Period: payroll.PayPeriod{Year: 2025, Month: time.March, StartDay: 16}},
		{EmployeeID: emp.ID, Period: payroll.FullMonth(2025, time.April)},
	}
}

func loadHighEarnerScenario(h *Handler) ([]payroll.Employee, []payroll.GenerateRequest) {
	emp := payroll.Employee{ID: "demo-executive", Name: "Arthit Executive", Position: "CEO", BaseSalary: h.amount("500000")}
	return []payroll.Employee{emp}, []payroll.GenerateRequest{
		{EmployeeID: emp.ID, Period: payroll.FullMonth(2025, time.March)},
	}
}
