/*
store.go - Persistence interface for employees and payslips

PURPOSE:
  Defines the boundary between payroll generation and the database. The
  calculation core never touches a Store; only Service does.

PAYSLIP CONTRACT:
  Payslips are immutable snapshots. The Store offers no update method.
  SavePayslip must reject a second payslip for the same employee and
  pay-period month with ErrDuplicatePayslip (a unique index in SQL stores).
  This is the single-writer-per-period invariant.

LOOKUPS:
  GetEmployee / GetPayslip return ErrEmployeeNotFound / ErrPayslipNotFound.
  FindPayslip returns (nil, nil) when the period has no payslip yet.

IMPLEMENTATIONS:
  - store/sqlite: SQLite (mattn/go-sqlite3)
  - store/postgres: PostgreSQL (pgx)
  - store/memory: In-memory for tests and the CLI

SEE ALSO:
  - service.go: The only caller
*/
package payroll

import "context"

type Store interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)

	// SavePayslip persists a new payslip. Returns ErrDuplicatePayslip if the
	// employee already has one for p.Period's month.
	SavePayslip(ctx context.Context, p Payslip) error
	GetPayslip(ctx context.Context, id PayslipID) (*Payslip, error)
	FindPayslip(ctx context.Context, employeeID EmployeeID, period PayPeriod) (*Payslip, error)

	// ListPayslips returns an employee's payslips, newest period first.
	ListPayslips(ctx context.Context, employeeID EmployeeID) ([]Payslip, error)
}
