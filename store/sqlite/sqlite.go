/*
Package sqlite provides a SQLite-backed payroll.Store.

PURPOSE:
  Persists employees and payslip snapshots in SQLite. The PostgreSQL
  store (store/postgres) follows the same schema with dialect changes.

PAYSLIP IMMUTABILITY:
  - No UPDATE statements on the payslips table
  - No DELETE statements on the payslips table
  - A wrong payslip is superseded by HR outside this engine

KEY TABLES:
  employees: Master records, upserted
  payslips:  One row per employee per month, amounts as decimal TEXT

INDEXES:
  - idx_unique_payslip_period: Enforces one payslip per employee/month
  - idx_payslips_employee: Payslip history (newest first)

DECIMALS:
  Amounts are stored as their exact decimal string, never REAL, so a
  reloaded payslip equals the generated one to the last digit. The JSON
  columns use store/internal/record for the same reason.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The unique index still guards
  against other processes writing the same database file.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := payroll.NewService(store, payroll.Default())

SEE ALSO:
  - payroll/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/internal/record"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		position TEXT,
		department TEXT,
		base_salary TEXT NOT NULL,
		currency TEXT NOT NULL,
		hire_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Payslips (immutable snapshots)
	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		period_year INTEGER NOT NULL,
		period_month INTEGER NOT NULL,
		start_day INTEGER NOT NULL,
		end_day INTEGER NOT NULL,
		policy_id TEXT NOT NULL,
		currency TEXT NOT NULL,
		employee_json TEXT NOT NULL,
		salary TEXT NOT NULL,
		ot TEXT NOT NULL,
		incentive TEXT NOT NULL,
		deductions TEXT NOT NULL,
		sso TEXT NOT NULL,
		tax TEXT NOT NULL,
		net TEXT NOT NULL,
		total_income TEXT NOT NULL,
		total_deduct TEXT NOT NULL,
		custom_incomes_json TEXT,
		custom_deducts_json TEXT,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: single writer per period
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_payslip_period
		ON payslips(employee_id, period_year, period_month);

	CREATE INDEX IF NOT EXISTS idx_payslips_employee
		ON payslips(employee_id, period_year DESC, period_month DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates an employee. created_at is kept on update.
func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO employees (id, name, email, position, department, base_salary, currency, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			position = excluded.position,
			department = excluded.department,
			base_salary = excluded.base_salary,
			currency = excluded.currency,
			hire_date = excluded.hire_date
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email, emp.Position, emp.Department,
		emp.BaseSalary.Amount.String(), string(emp.BaseSalary.Currency),
		formatTime(emp.HireDate),
		formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

const employeeColumns = `id, name, email, position, department, base_salary, currency, hire_date, created_at`

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by ID.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(sc scanner) (payroll.Employee, error) {
	var emp payroll.Employee
	var email, position, department, hireDate sql.NullString
	var salary, currency, createdAt string

	if err := sc.Scan(&emp.ID, &emp.Name, &email, &position, &department,
		&salary, &currency, &hireDate, &createdAt); err != nil {
		return emp, err
	}
	amount, err := decimal.NewFromString(salary)
	if err != nil {
		return emp, fmt.Errorf("employee %s: bad base_salary %q: %w", emp.ID, salary, err)
	}
	emp.Email = email.String
	emp.Position = position.String
	emp.Department = department.String
	emp.BaseSalary = money.New(amount, money.Currency(currency))
	emp.HireDate = parseTime(hireDate.String)
	emp.CreatedAt = parseTime(createdAt)
	return emp, nil
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// SavePayslip inserts a payslip. A second payslip for the same employee and
// month violates idx_unique_payslip_period and returns ErrDuplicatePayslip.
func (s *Store) SavePayslip(ctx context.Context, p payroll.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := record.EncodeSnapshot(p.Employee)
	if err != nil {
		return err
	}
	incomes, err := record.EncodeLines(p.CustomIncomes)
	if err != nil {
		return err
	}
	deducts, err := record.EncodeLines(p.CustomDeducts)
	if err != nil {
		return err
	}

	f := p.Financials

	query := `
		INSERT INTO payslips
		(id, employee_id, period_year, period_month, start_day, end_day, policy_id, currency,
		 employee_json, salary, ot, incentive, deductions, sso, tax, net,
		 total_income, total_deduct, custom_incomes_json, custom_deducts_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.EmployeeID, p.Period.Year, int(p.Period.Month), p.Period.StartDay, p.Period.EndDay,
		p.PolicyID, string(f.Net.Currency),
		string(snapshot),
		f.Salary.Amount.String(), f.OT.Amount.String(), f.Incentive.Amount.String(),
		f.Deductions.Amount.String(), f.SSO.Amount.String(), f.Tax.Amount.String(),
		f.Net.Amount.String(),
		p.TotalIncome.Amount.String(), p.TotalDeduct.Amount.String(),
		string(incomes), string(deducts),
		formatTime(p.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			dup := &payroll.DuplicatePayslipError{EmployeeID: p.EmployeeID, Period: p.Period.Key()}
			_ = s.db.QueryRowContext(ctx,
				"SELECT id FROM payslips WHERE employee_id = ? AND period_year = ? AND period_month = ?",
				p.EmployeeID, p.Period.Year, int(p.Period.Month),
			).Scan(&dup.ExistingID)
			return dup
		}
		return fmt.Errorf("failed to save payslip: %w", err)
	}
	return nil
}

const payslipColumns = `id, employee_id, period_year, period_month, start_day, end_day, policy_id, currency,
	employee_json, salary, ot, incentive, deductions, sso, tax, net,
	total_income, total_deduct, custom_incomes_json, custom_deducts_json, created_at`

// GetPayslip retrieves a payslip by ID.
func (s *Store) GetPayslip(ctx context.Context, id payroll.PayslipID) (*payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+payslipColumns+" FROM payslips WHERE id = ?", id)
	p, err := scanPayslip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payroll.ErrPayslipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPayslip returns the payslip for the employee's month, or nil.
func (s *Store) FindPayslip(ctx context.Context, employeeID payroll.EmployeeID, period payroll.PayPeriod) (*payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+payslipColumns+" FROM payslips WHERE employee_id = ? AND period_year = ? AND period_month = ?",
		employeeID, period.Year, int(period.Month))
	p, err := scanPayslip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPayslips returns the employee's payslips, newest period first.
func (s *Store) ListPayslips(ctx context.Context, employeeID payroll.EmployeeID) ([]payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+payslipColumns+" FROM payslips WHERE employee_id = ? ORDER BY period_year DESC, period_month DESC",
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}

func scanPayslip(sc scanner) (payroll.Payslip, error) {
	var p payroll.Payslip
	var month int
	var currency, snapshot, createdAt string
	var incomes, deducts sql.NullString
	var amounts [9]string

	err := sc.Scan(&p.ID, &p.EmployeeID, &p.Period.Year, &month, &p.Period.StartDay, &p.Period.EndDay,
		&p.PolicyID, &currency, &snapshot,
		&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6],
		&amounts[7], &amounts[8], &incomes, &deducts, &createdAt)
	if err != nil {
		return p, err
	}
	p.Period.Month = time.Month(month)

	cur := money.Currency(currency)
	var m [9]money.Money
	for i, a := range amounts {
		d, err := decimal.NewFromString(a)
		if err != nil {
			return p, fmt.Errorf("payslip %s: bad amount %q: %w", p.ID, a, err)
		}
		m[i] = money.New(d, cur)
	}
	p.Financials = payroll.Financials{
		Salary: m[0], OT: m[1], Incentive: m[2], Deductions: m[3],
		SSO: m[4], Tax: m[5], Net: m[6],
	}
	p.TotalIncome, p.TotalDeduct = m[7], m[8]

	if p.Employee, err = record.DecodeSnapshot([]byte(snapshot)); err != nil {
		return p, fmt.Errorf("payslip %s: bad employee snapshot: %w", p.ID, err)
	}
	if p.CustomIncomes, err = record.DecodeLines([]byte(incomes.String)); err != nil {
		return p, fmt.Errorf("payslip %s: bad custom incomes: %w", p.ID, err)
	}
	if p.CustomDeducts, err = record.DecodeLines([]byte(deducts.String)); err != nil {
		return p, fmt.Errorf("payslip %s: bad custom deductions: %w", p.ID, err)
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}


// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

var _ payroll.Store = (*Store)(nil)
