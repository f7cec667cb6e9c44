/*
scheduler.go - Automated monthly payroll run

PURPOSE:
  Periodically checks whether the previous month's payroll has been run and,
  once the configured run day is reached, generates base-salary payslips for
  every employee via payroll.Service.Run.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs the previous month once now.Day() >= RunDay
  - Skips a month already run by this process; employees already paid are
    skipped by Service.Run itself, so restarts are safe
  - Keeps the last run result for GET /api/payroll-runs/last

CONFIGURATION:
  - RunDay: Day of month that triggers the run (payroll.auto_run_day, 0 = off)
  - CheckInterval: How often to check (default: 1 hour)

USAGE:
  scheduler := NewPayrollScheduler(service, 1)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunPayroll endpoint (manual run)
  - payroll/run.go: Service.Run
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// PayrollScheduler triggers the monthly payroll run.
type PayrollScheduler struct {
	Service       *payroll.Service
	RunDay        int
	CheckInterval time.Duration
	Concurrency   int
	Logger        *slog.Logger
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	stateMu sync.Mutex
	lastKey string
	last    *payroll.RunResult
}

// NewPayrollScheduler creates a scheduler that runs on runDay of each month.
func NewPayrollScheduler(service *payroll.Service, runDay int) *PayrollScheduler {
	return &PayrollScheduler{
		Service:       service,
		RunDay:        runDay,
		CheckInterval: time.Hour,
		Logger:        slog.Default(),
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether a run day is configured.
func (ps *PayrollScheduler) Enabled() bool {
	return ps.RunDay > 0
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled() {
		ps.Logger.Info("payroll scheduler disabled")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)
	go ps.run()

	ps.Logger.Info("payroll scheduler started",
		slog.Int("run_day", ps.RunDay),
		slog.Duration("check_interval", ps.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight run.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		ps.ticker = nil
		ps.Logger.Info("payroll scheduler stopped")
	}
}

func (ps *PayrollScheduler) run() {
	defer ps.wg.Done()

	ps.checkAndProcess(context.Background())

	for {
		select {
		case <-ps.ticker.C:
			ps.checkAndProcess(context.Background())
		case <-ps.stop:
			return
		}
	}
}

// checkAndProcess runs the previous month when due. It returns the run
// result, or nil when nothing was due.
func (ps *PayrollScheduler) checkAndProcess(ctx context.Context) *payroll.RunResult {
	now := ps.Now()
	if now.Day() < ps.RunDay {
		return nil
	}
	prev := now.AddDate(0, 0, -now.Day()+1).AddDate(0, -1, 0)
	period := payroll.FullMonth(prev.Year(), prev.Month())

	ps.stateMu.Lock()
	done := ps.lastKey == period.Key()
	ps.stateMu.Unlock()
	if done {
		return nil
	}

	res, err := ps.Service.Run(ctx, period, ps.Concurrency)
	if err != nil {
		ps.Logger.Error("scheduled payroll run failed",
			slog.String("period", period.Key()), slog.Any("error", err))
		return nil
	}

	ps.stateMu.Lock()
	ps.lastKey = period.Key()
	ps.last = res
	ps.stateMu.Unlock()
	return res
}

// RunNow triggers an immediate check (for testing/admin).
func (ps *PayrollScheduler) RunNow(ctx context.Context) *payroll.RunResult {
	return ps.checkAndProcess(ctx)
}

// LastRun returns the most recent scheduled run, or nil.
func (ps *PayrollScheduler) LastRun() *payroll.RunResult {
	ps.stateMu.Lock()
	defer ps.stateMu.Unlock()
	return ps.last
}

// GetNextRunTime returns when the next scheduled check will occur.
func (ps *PayrollScheduler) GetNextRunTime() time.Time {
	return ps.Now().Add(ps.CheckInterval)
}
