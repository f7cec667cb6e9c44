// Package memory provides an in-memory payroll.Store (for testing/dev and
// the CLI).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	employees map[payroll.EmployeeID]payroll.Employee
	payslips  map[payroll.PayslipID]payroll.Payslip
	byPeriod  map[periodKey]payroll.PayslipID
}

// periodKey mirrors the unique (employee, year, month) index of the SQL stores.
type periodKey struct {
	EmployeeID payroll.EmployeeID
	Period     string
}

func New() *Store {
	return &Store{
		employees: make(map[payroll.EmployeeID]payroll.Employee),
		payslips:  make(map[payroll.PayslipID]payroll.Payslip),
		byPeriod:  make(map[periodKey]payroll.PayslipID),
	}
}

// SaveEmployee inserts or replaces an employee.
func (s *Store) SaveEmployee(_ context.Context, emp payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.employees[emp.ID]; ok && emp.CreatedAt.IsZero() {
		emp.CreatedAt = prev.CreatedAt
	}
	s.employees[emp.ID] = emp
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return nil, payroll.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]payroll.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SavePayslip adds a payslip. Payslips are never replaced.
func (s *Store) SavePayslip(_ context.Context, p payroll.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := periodKey{EmployeeID: p.EmployeeID, Period: p.Period.Key()}
	if existing, ok := s.byPeriod[k]; ok {
		return &payroll.DuplicatePayslipError{
			EmployeeID: p.EmployeeID,
			Period:     k.Period,
			ExistingID: existing,
		}
	}
	s.payslips[p.ID] = clonePayslip(p)
	s.byPeriod[k] = p.ID
	return nil
}

func (s *Store) GetPayslip(_ context.Context, id payroll.PayslipID) (*payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payslips[id]
	if !ok {
		return nil, payroll.ErrPayslipNotFound
	}
	p = clonePayslip(p)
	return &p, nil
}

func (s *Store) FindPayslip(_ context.Context, employeeID payroll.EmployeeID, period payroll.PayPeriod) (*payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPeriod[periodKey{EmployeeID: employeeID, Period: period.Key()}]
	if !ok {
		return nil, nil
	}
	p := clonePayslip(s.payslips[id])
	return &p, nil
}

func (s *Store) ListPayslips(_ context.Context, employeeID payroll.EmployeeID) ([]payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payroll.Payslip
	for _, p := range s.payslips {
		if p.EmployeeID == employeeID {
			out = append(out, clonePayslip(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period.Key() > out[j].Period.Key()
	})
	return out, nil
}

// clonePayslip copies the line-item slices so callers cannot mutate stored
// snapshots.
func clonePayslip(p payroll.Payslip) payroll.Payslip {
	p.CustomIncomes = append([]payroll.LineItem(nil), p.CustomIncomes...)
	p.CustomDeducts = append([]payroll.LineItem(nil), p.CustomDeducts...)
	return p
}

var _ payroll.Store = (*Store)(nil)
