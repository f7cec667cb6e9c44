package payroll

import (
	"time"

	"github.com/warp/payroll-engine/money"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PayslipID string

// =============================================================================
// EMPLOYEE - Master record the payslip snapshots
// =============================================================================

type Employee struct {
	ID         EmployeeID
	Name       string
	Email      string
	Position   string
	Department string
	BaseSalary money.Money
	HireDate   time.Time
	CreatedAt  time.Time
}

// Snapshot freezes the fields a payslip must keep even if the employee
// record changes later.
func (e Employee) Snapshot() EmployeeSnapshot {
	return EmployeeSnapshot{
		ID:         e.ID,
		Name:       e.Name,
		Position:   e.Position,
		Department: e.Department,
		BaseSalary: e.BaseSalary,
	}
}

type EmployeeSnapshot struct {
	ID         EmployeeID  `json:"id"`
	Name       string      `json:"name"`
	Position   string      `json:"position,omitempty"`
	Department string      `json:"department,omitempty"`
	BaseSalary money.Money `json:"base_salary"`
}

// =============================================================================
// PAYSLIP - Immutable snapshot of one employee's pay for one period
// =============================================================================

// Financials is the fixed breakdown persisted with every payslip.
type Financials struct {
	Salary     money.Money `json:"salary"`
	OT         money.Money `json:"ot"`
	Incentive  money.Money `json:"incentive"`
	Deductions money.Money `json:"deductions"`
	SSO        money.Money `json:"sso"`
	Tax        money.Money `json:"tax"`
	Net        money.Money `json:"net"`
}

type Payslip struct {
	ID         PayslipID
	EmployeeID EmployeeID
	Period     PayPeriod
	PolicyID   PolicyID

	Employee      EmployeeSnapshot
	Financials    Financials
	CustomIncomes []LineItem
	CustomDeducts []LineItem
	TotalIncome   money.Money
	TotalDeduct   money.Money

	CreatedAt time.Time
}

// Items rebuilds the net-calculation inputs from the frozen breakdown.
func (p Payslip) Items() Items {
	f := p.Financials
	return Items{
		Salary:        f.Salary,
		OT:            f.OT,
		Incentive:     f.Incentive,
		CustomIncomes: p.CustomIncomes,
		Deductions:    f.Deductions,
		SSO:           f.SSO,
		Tax:           f.Tax,
		CustomDeducts: p.CustomDeducts,
	}
}
