/*
service.go - Payslip generation

PURPOSE:
  Service composes the calculations into one payslip per employee and pay
  period, snapshots the result and persists it.

GENERATION STEPS:
  1. Load the employee
  2. Prorate base salary over the pay period
  3. Overtime pay from hours, absence deduction from days
  4. Social security on the prorated salary (unless overridden)
  5. Withholding tax on salary + OT + incentive + custom incomes
     (unless overridden)
  6. Net aggregation
  7. Freeze employee snapshot + financials, assign a UUID, save

SINGLE WRITER PER PERIOD:
  Generations for the same employee and month are serialized by a keyed
  lock, then checked against the store. The store's unique index is the
  final guard across processes.

SEE ALSO:
  - calculator.go: The calculations
  - store.go: Persistence contract
  - metrics/metrics.go: Observer implementation
*/
package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
)

// =============================================================================
// REQUEST
// =============================================================================

// GenerateRequest carries the period inputs accumulated by attendance and HR.
type GenerateRequest struct {
	EmployeeID EmployeeID
	Period     PayPeriod

	OvertimeHours decimal.Decimal
	Incentive     money.Money
	Deductions    money.Money // late/absence deductions already priced
	AbsentDays    int
	CustomIncomes []LineItem
	CustomDeducts []LineItem

	// Manual overrides. Nil means calculate.
	SocialSecurity *money.Money
	Tax            *money.Money
}

func (r GenerateRequest) validate() error {
	if r.EmployeeID == "" {
		return fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	if r.OvertimeHours.IsNegative() {
		return fmt.Errorf("%w: overtime hours must not be negative", ErrInvalidInput)
	}
	if r.AbsentDays < 0 {
		return fmt.Errorf("%w: absent days must not be negative", ErrInvalidInput)
	}
	return r.Period.Validate()
}

// =============================================================================
// OBSERVER
// =============================================================================

// Observer receives generation outcomes.
type Observer interface {
	PayslipGenerated(p *Payslip, elapsed time.Duration)
	PayslipFailed(reason string)
}

type nopObserver struct{}

func (nopObserver) PayslipGenerated(*Payslip, time.Duration) {}
func (nopObserver) PayslipFailed(string)                     {}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store    Store
	calc     *Calculator
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
	newID    func() PayslipID
	locks    periodLocks
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }
func WithObserver(o Observer) Option   { return func(s *Service) { s.observer = o } }
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, calc *Calculator, opts ...Option) *Service {
	s := &Service{
		store:    store,
		calc:     calc,
		logger:   slog.Default(),
		observer: nopObserver{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() PayslipID { return PayslipID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Calculator() *Calculator { return s.calc }

// Preview computes the payslip without persisting it.
func (s *Service) Preview(ctx context.Context, req GenerateRequest) (*Payslip, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	emp, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	return s.build(emp, req)
}

// Generate computes and persists the payslip for req.Period. A second
// generation for the same employee and month fails with ErrDuplicatePayslip.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Payslip, error) {
	start := time.Now()
	p, err := s.generate(ctx, req)
	if err != nil {
		s.observer.PayslipFailed(failureReason(err))
		s.logger.WarnContext(ctx, "payslip generation failed",
			slog.String("employee_id", string(req.EmployeeID)),
			slog.String("period", req.Period.Key()),
			slog.Any("error", err))
		return nil, err
	}

	s.observer.PayslipGenerated(p, time.Since(start))
	s.logger.InfoContext(ctx, "payslip generated",
		slog.String("payslip_id", string(p.ID)),
		slog.String("employee_id", string(p.EmployeeID)),
		slog.String("period", p.Period.Key()),
		slog.String("net", p.Financials.Net.String()))
	return p, nil
}

func (s *Service) generate(ctx context.Context, req GenerateRequest) (*Payslip, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(string(req.EmployeeID) + "/" + req.Period.Key())
	defer unlock()

	existing, err := s.store.FindPayslip(ctx, req.EmployeeID, req.Period)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicatePayslipError{
			EmployeeID: req.EmployeeID,
			Period:     req.Period.Key(),
			ExistingID: existing.ID,
		}
	}

	emp, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	p, err := s.build(emp, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.SavePayslip(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) build(emp *Employee, req GenerateRequest) (*Payslip, error) {
	c := s.calc
	base := c.tag(emp.BaseSalary)

	salary, err := c.Prorate(base, req.Period.Calendar())
	if err != nil {
		return nil, err
	}
	ot := c.OvertimePay(base, req.OvertimeHours)

	deductions, err := inCurrency(req.Deductions, base.Currency).Add(c.AbsenceDeduction(base, req.AbsentDays))
	if err != nil {
		return nil, err
	}

	sso := c.SocialSecurity(salary)
	if req.SocialSecurity != nil {
		sso = inCurrency(*req.SocialSecurity, base.Currency)
	}

	tax := money.Zero(base.Currency)
	if req.Tax != nil {
		tax = inCurrency(*req.Tax, base.Currency)
	} else {
		taxable := []money.Money{salary, ot, req.Incentive}
		for _, li := range req.CustomIncomes {
			taxable = append(taxable, li.Amount)
		}
		income, err := money.Sum(base.Currency, taxable...)
		if err != nil {
			return nil, err
		}
		if tax, err = c.ProgressiveTax(income, sso); err != nil {
			return nil, err
		}
	}

	bd, err := c.Net(Items{
		Salary:        salary,
		OT:            ot,
		Incentive:     inCurrency(req.Incentive, base.Currency),
		CustomIncomes: tagLines(req.CustomIncomes, base.Currency, KindIncome),
		Deductions:    deductions,
		SSO:           sso,
		Tax:           tax,
		CustomDeducts: tagLines(req.CustomDeducts, base.Currency, KindDeduction),
	})
	if err != nil {
		return nil, err
	}

	return &Payslip{
		ID:         s.newID(),
		EmployeeID: emp.ID,
		Period:     req.Period,
		PolicyID:   c.policy.ID,
		Employee:   emp.Snapshot(),
		Financials: Financials{
			Salary:     bd.Items.Salary,
			OT:         bd.Items.OT,
			Incentive:  bd.Items.Incentive,
			Deductions: bd.Items.Deductions,
			SSO:        bd.Items.SSO,
			Tax:        bd.Items.Tax,
			Net:        bd.Net,
		},
		CustomIncomes: bd.Items.CustomIncomes,
		CustomDeducts: bd.Items.CustomDeducts,
		TotalIncome:   bd.TotalIncome,
		TotalDeduct:   bd.TotalDeduct,
		CreatedAt:     s.now(),
	}, nil
}

// Get returns a stored payslip.
func (s *Service) Get(ctx context.Context, id PayslipID) (*Payslip, error) {
	return s.store.GetPayslip(ctx, id)
}

// List returns an employee's payslips, newest first.
func (s *Service) List(ctx context.Context, employeeID EmployeeID) ([]Payslip, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.ListPayslips(ctx, employeeID)
}

// inCurrency prices an untagged request amount in the employee's salary
// currency.
func inCurrency(m money.Money, cur money.Currency) money.Money {
	if m.Currency == "" {
		m.Currency = cur
	}
	return m
}

func tagLines(lines []LineItem, cur money.Currency, kind Kind) []LineItem {
	if len(lines) == 0 {
		return nil
	}
	out := make([]LineItem, len(lines))
	for i, li := range lines {
		out[i] = LineItem{Label: li.Label, Amount: inCurrency(li.Amount, cur), Kind: kind}
	}
	return out
}

func failureReason(err error) string {
	switch {
	case IsConflict(err):
		return "duplicate"
	case IsNotFound(err):
		return "not_found"
	case IsClientError(err):
		return "invalid"
	default:
		return "internal"
	}
}

// =============================================================================
// PERIOD LOCKS
// =============================================================================

type periodLocks struct {
	mu    sync.Mutex
	locks map[string]*periodLock
}

type periodLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release func. Entries are
// dropped once no goroutine holds or waits on them.
func (l *periodLocks) lock(key string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*periodLock)
	}
	pl, ok := l.locks[key]
	if !ok {
		pl = &periodLock{}
		l.locks[key] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
