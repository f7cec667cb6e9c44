/*
Package record holds the JSON shapes the SQL stores persist inside payslip
rows (employee snapshot and custom line items).

PURPOSE:
  money.Money renders two fractional digits for API clients. Stored
  documents keep the exact decimal instead, so the lines of a reloaded
  payslip still add up to its stored totals.

SEE ALSO:
  - store/sqlite, store/postgres: The callers
  - money/money.go: API JSON rendering
*/
package record

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

// Amount encodes the decimal with full precision ("0.004", not "0.00").
type Amount struct {
	Value    decimal.Decimal `json:"amount"`
	Currency money.Currency  `json:"currency,omitempty"`
}

type Employee struct {
	ID         payroll.EmployeeID `json:"id"`
	Name       string             `json:"name"`
	Position   string             `json:"position,omitempty"`
	Department string             `json:"department,omitempty"`
	BaseSalary Amount             `json:"base_salary"`
}

type Line struct {
	Label  string       `json:"label"`
	Amount Amount       `json:"amount"`
	Kind   payroll.Kind `json:"kind,omitempty"`
}

func fromMoney(m money.Money) Amount { return Amount{Value: m.Amount, Currency: m.Currency} }
func (a Amount) money() money.Money  { return money.New(a.Value, a.Currency) }

// EncodeSnapshot marshals the employee snapshot with exact amounts.
func EncodeSnapshot(e payroll.EmployeeSnapshot) ([]byte, error) {
	b, err := json.Marshal(Employee{
		ID:         e.ID,
		Name:       e.Name,
		Position:   e.Position,
		Department: e.Department,
		BaseSalary: fromMoney(e.BaseSalary),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode employee snapshot: %w", err)
	}
	return b, nil
}

func DecodeSnapshot(data []byte) (payroll.EmployeeSnapshot, error) {
	var e Employee
	if err := json.Unmarshal(data, &e); err != nil {
		return payroll.EmployeeSnapshot{}, err
	}
	return payroll.EmployeeSnapshot{
		ID:         e.ID,
		Name:       e.Name,
		Position:   e.Position,
		Department: e.Department,
		BaseSalary: e.BaseSalary.money(),
	}, nil
}

// EncodeLines marshals line items. A nil slice encodes as "[]".
func EncodeLines(lines []payroll.LineItem) ([]byte, error) {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{Label: l.Label, Amount: fromMoney(l.Amount), Kind: l.Kind})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}
	return b, nil
}

// DecodeLines is the inverse of EncodeLines. Empty input, "null" and "[]"
// all decode to nil.
func DecodeLines(data []byte) ([]payroll.LineItem, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var in []Line
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, nil
	}
	lines := make([]payroll.LineItem, len(in))
	for i, l := range in {
		lines[i] = payroll.LineItem{Label: l.Label, Amount: l.Amount.money(), Kind: l.Kind}
	}
	return lines, nil
}
