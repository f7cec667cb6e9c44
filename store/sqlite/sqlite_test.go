package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEmployee(t *testing.T, store *sqlite.Store, id string) {
	require.NoError(t, store.SaveEmployee(context.Background(), payroll.Employee{
		ID:         payroll.EmployeeID(id),
		Name:       "Employee " + id,
		Email:      id + "@example.com",
		Position:   "Engineer",
		BaseSalary: money.MustParse("30000", money.THB),
		HireDate:   time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
	}))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestSQLite_EmployeeUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	emp, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "30000.00 THB", emp.BaseSalary.String())
	assert.Equal(t, 2023, emp.HireDate.Year())
	created := emp.CreatedAt

	emp.BaseSalary = money.MustParse("32500.50", money.THB)
	require.NoError(t, store.SaveEmployee(ctx, *emp))

	again, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "32500.50 THB", again.BaseSalary.String())
	assert.Equal(t, created, again.CreatedAt)

	_, err = store.GetEmployee(ctx, "ghost")
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	list, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func TestSQLite_PayslipRoundTripExactDecimals(t *testing.T) {
	// GIVEN: A generated payslip with fractional amounts and custom lines
	// WHEN: Saved and reloaded
	// THEN: Every amount matches to the last digit

	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	svc := payroll.NewService(store, payroll.Default())
	generated, err := svc.Generate(ctx, payroll.GenerateRequest{
		EmployeeID:    "emp-1",
		Period:        payroll.FullMonth(2025, time.March),
		OvertimeHours: decimal.RequireFromString("3.5"),
		Incentive:     money.MustParse("1234.56", money.THB),
		CustomDeducts: []payroll.LineItem{{Label: "Loan", Amount: money.MustParse("999.99", money.THB)}},
	})
	require.NoError(t, err)

	got, err := store.GetPayslip(ctx, generated.ID)
	require.NoError(t, err)

	assert.Equal(t, generated.Period, got.Period)
	assert.Equal(t, generated.PolicyID, got.PolicyID)
	assert.Equal(t, generated.Employee.Name, got.Employee.Name)
	assert.True(t, generated.Financials.Net.Equal(got.Financials.Net))
	assert.True(t, generated.Financials.Tax.Equal(got.Financials.Tax))
	assert.True(t, generated.Financials.OT.Equal(got.Financials.OT))
	assert.True(t, generated.TotalDeduct.Equal(got.TotalDeduct))
	require.Len(t, got.CustomDeducts, 1)
	assert.Equal(t, "999.99 THB", got.CustomDeducts[0].Amount.String())
	assert.Equal(t, generated.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestSQLite_SubCentLinesMatchStoredTotals(t *testing.T) {
	// GIVEN: Two custom incomes below one satang
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	svc := payroll.NewService(store, payroll.Default())
	generated, err := svc.Generate(ctx, payroll.GenerateRequest{
		EmployeeID: "emp-1",
		Period:     payroll.FullMonth(2025, time.March),
		CustomIncomes: []payroll.LineItem{
			{Label: "Adjustment A", Amount: money.MustParse("0.004", money.THB)},
			{Label: "Adjustment B", Amount: money.MustParse("0.004", money.THB)},
		},
	})
	require.NoError(t, err)

	// WHEN: Reloaded
	got, err := store.GetPayslip(ctx, generated.ID)
	require.NoError(t, err)

	// THEN: The lines keep their exact amounts and still add up to the stored total
	require.Len(t, got.CustomIncomes, 2)
	assert.True(t, got.CustomIncomes[0].Amount.Amount.Equal(decimal.RequireFromString("0.004")),
		"stored line = %s", got.CustomIncomes[0].Amount.Amount)

	recomputed, err := money.Sum(money.THB,
		got.Financials.Salary, got.Financials.OT, got.Financials.Incentive,
		got.CustomIncomes[0].Amount, got.CustomIncomes[1].Amount)
	require.NoError(t, err)
	assert.True(t, recomputed.Equal(got.TotalIncome), "recomputed %s, stored %s", recomputed.Amount, got.TotalIncome.Amount)
	assert.True(t, generated.TotalIncome.Equal(got.TotalIncome))
}

func TestSQLite_DuplicatePeriodRejected(t *testing.T) {
	// GIVEN: A March payslip exists
	// WHEN: Another March payslip is inserted directly (bypassing Service)
	// THEN: The unique index rejects it with ErrDuplicatePayslip

	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")

	first := payroll.Payslip{
		ID:         "p1",
		EmployeeID: "emp-1",
		Period:     payroll.FullMonth(2025, time.March),
		PolicyID:   payroll.DefaultPolicyID,
		Financials: payroll.Financials{Net: money.FromInt(1, money.THB)},
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.SavePayslip(ctx, first))

	second := first
	second.ID = "p2"
	second.Period.StartDay = 16
	err := store.SavePayslip(ctx, second)
	require.ErrorIs(t, err, payroll.ErrDuplicatePayslip)

	var dup *payroll.DuplicatePayslipError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, payroll.PayslipID("p1"), dup.ExistingID)
}

func TestSQLite_FindAndListPayslips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployee(t, store, "emp-1")
	svc := payroll.NewService(store, payroll.Default())

	for _, period := range []payroll.PayPeriod{
		payroll.FullMonth(2024, time.December),
		payroll.FullMonth(2025, time.February),
		payroll.FullMonth(2025, time.January),
	} {
		_, err := svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: "emp-1", Period: period})
		require.NoError(t, err)
	}

	list, err := store.ListPayslips(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2025-02", list[0].Period.Key())
	assert.Equal(t, "2025-01", list[1].Period.Key())
	assert.Equal(t, "2024-12", list[2].Period.Key())

	found, err := store.FindPayslip(ctx, "emp-1", payroll.FullMonth(2025, time.January))
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := store.FindPayslip(ctx, "emp-1", payroll.FullMonth(2025, time.June))
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.GetPayslip(ctx, "nope")
	assert.ErrorIs(t, err, payroll.ErrPayslipNotFound)
}
