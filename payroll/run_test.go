package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

func TestRun_GeneratesAndSkips(t *testing.T) {
	// GIVEN: Two employees, one already paid for March
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.SaveEmployee(ctx, payroll.Employee{
		ID:         "emp-2",
		Name:       "Malee Suksan",
		BaseSalary: thb("25000"),
	}))
	march := payroll.FullMonth(2025, time.March)
	_, err := svc.Generate(ctx, payroll.GenerateRequest{EmployeeID: "emp-1", Period: march})
	require.NoError(t, err)

	// WHEN: Running March payroll
	res, err := svc.Run(ctx, march, 2)
	require.NoError(t, err)

	// THEN: Only the unpaid employee gets a payslip
	assert.Len(t, res.Generated, 1)
	assert.Equal(t, []payroll.EmployeeID{"emp-1"}, res.Skipped)
	assert.Empty(t, res.Failed)

	p, err := store.FindPayslip(ctx, "emp-2", march)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "25000.00 THB", p.Financials.Salary.String())
	assert.Equal(t, "875.00 THB", p.Financials.SSO.String())

	// AND: Repeating the run changes nothing
	again, err := svc.Run(ctx, march, 0)
	require.NoError(t, err)
	assert.Empty(t, again.Generated)
	assert.Equal(t, []payroll.EmployeeID{"emp-1", "emp-2"}, again.Skipped)
}

func TestRun_InvalidPeriod(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Run(context.Background(), payroll.PayPeriod{Year: 2025, Month: 13}, 1)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestRun_CancelledContext(t *testing.T) {
	svc, _, obs := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, payroll.FullMonth(2025, time.March), 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, obs.generated)
}
