/*
Package postgres provides a PostgreSQL-backed payroll.Store using pgx.

PURPOSE:
  Production storage. Same schema as store/sqlite with native types:
  NUMERIC amounts, JSONB snapshots and line items, TIMESTAMPTZ times.

DECIMALS:
  Amounts cross the wire as text on both sides ($n::text::numeric on
  insert, col::text on select) so no float conversion ever happens.

SINGLE WRITER PER PERIOD:
  payslips_employee_period_key is a UNIQUE constraint on
  (employee_id, period_year, period_month). A violation (SQLSTATE 23505)
  maps to payroll.DuplicatePayslipError. Concurrency control is left to
  the database; no in-process mutex.

SEE ALSO:
  - payroll/store.go: Interface definition
  - store/sqlite: Embedded equivalent
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/internal/record"
)

const uniquePeriodConstraint = "payslips_employee_period_key"

// Options tunes the connection pool. Zero values keep pgx defaults.
type Options struct {
	MaxConns int32
	MinConns int32
}

type Store struct {
	pool *pgxpool.Pool
}

// New connects, pings and migrates.
func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		base_salary NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		hire_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		period_year INTEGER NOT NULL,
		period_month INTEGER NOT NULL,
		start_day INTEGER NOT NULL,
		end_day INTEGER NOT NULL,
		policy_id TEXT NOT NULL,
		currency TEXT NOT NULL,
		employee_snapshot JSONB NOT NULL,
		salary NUMERIC NOT NULL,
		ot NUMERIC NOT NULL,
		incentive NUMERIC NOT NULL,
		deductions NUMERIC NOT NULL,
		sso NUMERIC NOT NULL,
		tax NUMERIC NOT NULL,
		net NUMERIC NOT NULL,
		total_income NUMERIC NOT NULL,
		total_deduct NUMERIC NOT NULL,
		custom_incomes JSONB NOT NULL DEFAULT '[]',
		custom_deducts JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT `+uniquePeriodConstraint+` UNIQUE (employee_id, period_year, period_month)
	);
	`)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, name, email, position, department, base_salary, currency, hire_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			position = EXCLUDED.position,
			department = EXCLUDED.department,
			base_salary = EXCLUDED.base_salary,
			currency = EXCLUDED.currency,
			hire_date = EXCLUDED.hire_date`,
		string(emp.ID), emp.Name, emp.Email, emp.Position, emp.Department,
		emp.BaseSalary.Amount.String(), string(emp.BaseSalary.Currency),
		nullTime(emp.HireDate), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

const employeeColumns = `id, name, email, position, department, base_salary::text, currency, hire_date, created_at`

func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*payroll.Employee, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", string(id))
	emp, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func scanEmployee(row pgx.Row) (payroll.Employee, error) {
	var emp payroll.Employee
	var id, salary, currency string
	var hireDate *time.Time

	err := row.Scan(&id, &emp.Name, &emp.Email, &emp.Position, &emp.Department,
		&salary, &currency, &hireDate, &emp.CreatedAt)
	if err != nil {
		return emp, err
	}
	amount, err := decimal.NewFromString(salary)
	if err != nil {
		return emp, fmt.Errorf("employee %s: bad base_salary %q: %w", id, salary, err)
	}
	emp.ID = payroll.EmployeeID(id)
	emp.BaseSalary = money.New(amount, money.Currency(currency))
	if hireDate != nil {
		emp.HireDate = hireDate.UTC()
	}
	emp.CreatedAt = emp.CreatedAt.UTC()
	return emp, nil
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func (s *Store) SavePayslip(ctx context.Context, p payroll.Payslip) error {
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
	_, err = s.pool.Exec(ctx, `
		INSERT INTO payslips
		(id, employee_id, period_year, period_month, start_day, end_day, policy_id, currency,
		 employee_snapshot, salary, ot, incentive, deductions, sso, tax, net,
		 total_income, total_deduct, custom_incomes, custom_deducts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
		 $10::text::numeric, $11::text::numeric, $12::text::numeric, $13::text::numeric,
		 $14::text::numeric, $15::text::numeric, $16::text::numeric,
		 $17::text::numeric, $18::text::numeric, $19, $20, $21)`,
		string(p.ID), string(p.EmployeeID), p.Period.Year, int(p.Period.Month),
		p.Period.StartDay, p.Period.EndDay, string(p.PolicyID), string(f.Net.Currency),
		snapshot,
		f.Salary.Amount.String(), f.OT.Amount.String(), f.Incentive.Amount.String(),
		f.Deductions.Amount.String(), f.SSO.Amount.String(), f.Tax.Amount.String(),
		f.Net.Amount.String(),
		p.TotalIncome.Amount.String(), p.TotalDeduct.Amount.String(),
		incomes, deducts, p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == uniquePeriodConstraint {
			dup := &payroll.DuplicatePayslipError{EmployeeID: p.EmployeeID, Period: p.Period.Key()}
			var existing string
			if s.pool.QueryRow(ctx,
				"SELECT id FROM payslips WHERE employee_id = $1 AND period_year = $2 AND period_month = $3",
				string(p.EmployeeID), p.Period.Year, int(p.Period.Month),
			).Scan(&existing) == nil {
				dup.ExistingID = payroll.PayslipID(existing)
			}
			return dup
		}
		return fmt.Errorf("failed to save payslip: %w", err)
	}
	return nil
}

const payslipColumns = `id, employee_id, period_year, period_month, start_day, end_day, policy_id, currency,
	employee_snapshot, salary::text, ot::text, incentive::text, deductions::text, sso::text, tax::text,
	net::text, total_income::text, total_deduct::text, custom_incomes, custom_deducts, created_at`

func (s *Store) GetPayslip(ctx context.Context, id payroll.PayslipID) (*payroll.Payslip, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+payslipColumns+" FROM payslips WHERE id = $1", string(id))
	p, err := scanPayslip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrPayslipNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) FindPayslip(ctx context.Context, employeeID payroll.EmployeeID, period payroll.PayPeriod) (*payroll.Payslip, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+payslipColumns+" FROM payslips WHERE employee_id = $1 AND period_year = $2 AND period_month = $3",
		string(employeeID), period.Year, int(period.Month))
	p, err := scanPayslip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPayslips(ctx context.Context, employeeID payroll.EmployeeID) ([]payroll.Payslip, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+payslipColumns+" FROM payslips WHERE employee_id = $1 ORDER BY period_year DESC, period_month DESC",
		string(employeeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	var id, employeeID, policyID, currency string
	var month int
	var snapshot, incomes, deducts []byte
	var amounts [9]string

	err := row.Scan(&id, &employeeID, &p.Period.Year, &month, &p.Period.StartDay, &p.Period.EndDay,
		&policyID, &currency, &snapshot,
		&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6],
		&amounts[7], &amounts[8], &incomes, &deducts, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.ID = payroll.PayslipID(id)
	p.EmployeeID = payroll.EmployeeID(employeeID)
	p.PolicyID = payroll.PolicyID(policyID)
	p.Period.Month = time.Month(month)
	p.CreatedAt = p.CreatedAt.UTC()

	cur := money.Currency(currency)
	var m [9]money.Money
	for i, a := range amounts {
		d, err := decimal.NewFromString(a)
		if err != nil {
			return p, fmt.Errorf("payslip %s: bad amount %q: %w", id, a, err)
		}
		m[i] = money.New(d, cur)
	}
	p.Financials = payroll.Financials{
		Salary: m[0], OT: m[1], Incentive: m[2], Deductions: m[3],
		SSO: m[4], Tax: m[5], Net: m[6],
	}
	p.TotalIncome, p.TotalDeduct = m[7], m[8]

	if p.Employee, err = record.DecodeSnapshot(snapshot); err != nil {
		return p, fmt.Errorf("payslip %s: bad employee snapshot: %w", id, err)
	}
	if p.CustomIncomes, err = record.DecodeLines(incomes); err != nil {
		return p, fmt.Errorf("payslip %s: bad custom incomes: %w", id, err)
	}
	if p.CustomDeducts, err = record.DecodeLines(deducts); err != nil {
		return p, fmt.Errorf("payslip %s: bad custom deductions: %w", id, err)
	}
	return p, nil
}

// Reset empties both tables. Test use only.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE payslips, employees")
	return err
}


func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ payroll.Store = (*Store)(nil)
