package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// PAYROLL RUN - Generate one period for every employee
// =============================================================================

// DefaultRunConcurrency bounds parallel generations in a Run.
const DefaultRunConcurrency = 4

// RunResult summarizes a payroll run. Employees that already have a payslip
// for the period are skipped, so a run can be repeated safely.
type RunResult struct {
	Period    PayPeriod
	Generated []PayslipID
	Skipped   []EmployeeID
	Failed    map[EmployeeID]string
	StartedAt time.Time
	Duration  time.Duration
}

// Run generates a base-salary payslip (no overtime or extras) for each
// employee for period. Per-employee failures are collected
// in the result; only a failure to list employees or a cancelled context
// aborts the run.
func (s *Service) Run(ctx context.Context, period PayPeriod, concurrency int) (*RunResult, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	if concurrency <= 0 {
		concurrency = DefaultRunConcurrency
	}

	start := time.Now()
	res := &RunResult{Period: period, Failed: map[EmployeeID]string{}, StartedAt: s.now()}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, emp := range employees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.Generate(gctx, GenerateRequest{EmployeeID: emp.ID, Period: period})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				res.Generated = append(res.Generated, p.ID)
			case IsConflict(err):
				res.Skipped = append(res.Skipped, emp.ID)
			default:
				res.Failed[emp.ID] = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(res.Generated, func(i, j int) bool { return res.Generated[i] < res.Generated[j] })
	sort.Slice(res.Skipped, func(i, j int) bool { return res.Skipped[i] < res.Skipped[j] })
	res.Duration = time.Since(start)

	s.logger.InfoContext(ctx, "payroll run completed",
		slog.String("period", period.Key()),
		slog.Int("generated", len(res.Generated)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("failed", len(res.Failed)))
	return res, nil
}
