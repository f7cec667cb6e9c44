package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/payroll"
)

// ─── run ────────────────────────────────────────────────────────────────────
// Batch payroll for one month against the configured store. Employees that
// already have a payslip for the month are skipped.

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("year", 0, "Pay year")
	runCmd.Flags().Int("month", 0, "Pay month (1-12)")
	runCmd.Flags().Int("concurrency", 0, "Parallel generations (default: config run_concurrency)")
	runCmd.Flags().String("store", "", "Store driver: memory, sqlite, postgres (overrides config)")
	_ = runCmd.MarkFlagRequired("year")
	_ = runCmd.MarkFlagRequired("month")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a month's payslips for every employee",
	Args:  cobra.NoArgs,
	RunE:  runPayrollRun,
}

func runPayrollRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if driver, _ := cmd.Flags().GetString("store"); driver != "" {
		cfg.Store.Driver = driver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency == 0 {
		concurrency = cfg.Payroll.RunConcurrency
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closeStore()

	calc, err := newCalculator(cfg)
	if err != nil {
		return err
	}
	svc := payroll.NewService(store, calc)

	res, err := svc.Run(ctx, payroll.FullMonth(year, time.Month(month)), concurrency)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	row(w, "Period", res.Period.Key())
	row(w, "Generated", fmt.Sprint(len(res.Generated)))
	row(w, "Skipped", fmt.Sprint(len(res.Skipped)))
	row(w, "Failed", fmt.Sprint(len(res.Failed)))

	failed := make([]string, 0, len(res.Failed))
	for id := range res.Failed {
		failed = append(failed, string(id))
	}
	sort.Strings(failed)
	for _, id := range failed {
		fmt.Fprintf(w, "  %s: %s\n", id, res.Failed[payroll.EmployeeID(id)])
	}
	return nil
}
