package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/memory"
)

// ─── calc ───────────────────────────────────────────────────────────────────
// Stateless calculations against the configured policy. Amounts are decimal
// strings; an empty --currency takes the policy currency.

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.AddCommand(calcSSOCmd, calcProrateCmd, calcTaxCmd, calcNetCmd, calcPayslipCmd)

	calcCmd.PersistentFlags().String("currency", "", "Currency code (default: policy currency)")

	calcSSOCmd.Flags().String("salary", "0", "Monthly salary")

	calcProrateCmd.Flags().String("salary", "0", "Monthly salary")
	calcProrateCmd.Flags().Int("start", 1, "First worked day")
	calcProrateCmd.Flags().Int("end", 0, "Last worked day (default: last day of month)")
	calcProrateCmd.Flags().Int("days", 0, "Days in the month")
	_ = calcProrateCmd.MarkFlagRequired("days")

	calcTaxCmd.Flags().String("income", "0", "Monthly taxable income")
	calcTaxCmd.Flags().String("sso", "0", "Monthly social-security contribution")

	for _, name := range []string{"salary", "ot", "incentive", "deductions", "sso", "tax"} {
		calcNetCmd.Flags().String(name, "0", "Amount for "+name)
	}

	calcPayslipCmd.Flags().String("salary", "0", "Monthly base salary")
	calcPayslipCmd.Flags().Int("year", 0, "Pay year")
	calcPayslipCmd.Flags().Int("month", 0, "Pay month (1-12)")
	calcPayslipCmd.Flags().Int("start", 0, "First worked day (default: 1)")
	calcPayslipCmd.Flags().Int("end", 0, "Last worked day (default: last day of month)")
	calcPayslipCmd.Flags().String("ot-hours", "0", "Overtime hours")
	calcPayslipCmd.Flags().String("incentive", "0", "Incentive")
	calcPayslipCmd.Flags().String("deductions", "0", "Late/other deductions")
	calcPayslipCmd.Flags().Int("absent-days", 0, "Unpaid absent days")
	_ = calcPayslipCmd.MarkFlagRequired("year")
	_ = calcPayslipCmd.MarkFlagRequired("month")
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run a payroll calculation",
}

// ─── calc sso ───────────────────────────────────────────────────────────────

var calcSSOCmd = &cobra.Command{
	Use:   "sso",
	Short: "Social-security contribution for a monthly salary",
	Args:  cobra.NoArgs,
	RunE:  runCalcSSO,
}

func runCalcSSO(cmd *cobra.Command, args []string) error {
	calc, cur, err := calcSetup(cmd)
	if err != nil {
		return err
	}
	salary, err := moneyFlag(cmd, "salary", cur)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), calc.SocialSecurity(salary))
	return nil
}

// ─── calc prorate ───────────────────────────────────────────────────────────

var calcProrateCmd = &cobra.Command{
	Use:   "prorate",
	Short: "Pro-rate a monthly salary to the worked days",
	Args:  cobra.NoArgs,
	RunE:  runCalcProrate,
}

func runCalcProrate(cmd *cobra.Command, args []string) error {
	calc, cur, err := calcSetup(cmd)
	if err != nil {
		return err
	}
	salary, err := moneyFlag(cmd, "salary", cur)
	if err != nil {
		return err
	}
	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")
	days, _ := cmd.Flags().GetInt("days")
	if end == 0 {
		end = days
	}

	result, err := calc.Prorate(salary, payroll.CalendarPeriod{StartDay: start, EndDay: end, DaysInMonth: days})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// ─── calc tax ───────────────────────────────────────────────────────────────

var calcTaxCmd = &cobra.Command{
	Use:   "tax",
	Short: "Monthly withholding tax with its annual audit trail",
	Args:  cobra.NoArgs,
	RunE:  runCalcTax,
}

func runCalcTax(cmd *cobra.Command, args []string) error {
	calc, cur, err := calcSetup(cmd)
	if err != nil {
		return err
	}
	income, err := moneyFlag(cmd, "income", cur)
	if err != nil {
		return err
	}
	sso, err := moneyFlag(cmd, "sso", cur)
	if err != nil {
		return err
	}

	a, err := calc.AssessTax(income, sso)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	row(w, "Annual income", a.AnnualIncome.StringFixed(2))
	row(w, "Expenses", a.Expenses.StringFixed(2))
	row(w, "Allowances", a.Allowances.StringFixed(2))
	row(w, "Net taxable", a.NetTaxable.StringFixed(2))
	row(w, "Annual tax", a.AnnualTax.StringFixed(2))
	row(w, "Monthly tax", a.Monthly.String())
	return nil
}

// ─── calc net ───────────────────────────────────────────────────────────────

var calcNetCmd = &cobra.Command{
	Use:   "net",
	Short: "Net pay from income and deduction items",
	Args:  cobra.NoArgs,
	RunE:  runCalcNet,
}

func runCalcNet(cmd *cobra.Command, args []string) error {
	calc, cur, err := calcSetup(cmd)
	if err != nil {
		return err
	}
	amounts := map[string]money.Money{}
	for _, name := range []string{"salary", "ot", "incentive", "deductions", "sso", "tax"} {
		m, err := moneyFlag(cmd, name, cur)
		if err != nil {
			return err
		}
		amounts[name] = m
	}

	bd, err := calc.Net(payroll.Items{
		Salary:     amounts["salary"],
		OT:         amounts["ot"],
		Incentive:  amounts["incentive"],
		Deductions: amounts["deductions"],
		SSO:        amounts["sso"],
		Tax:        amounts["tax"],
	})
	if err != nil {
		return err
	}
	printBreakdown(cmd.OutOrStdout(), bd.Items, bd.TotalIncome, bd.TotalDeduct, bd.Net)
	return nil
}

// ─── calc payslip ───────────────────────────────────────────────────────────

var calcPayslipCmd = &cobra.Command{
	Use:   "payslip",
	Short: "Preview a full payslip for a salary and month without storing it",
	Args:  cobra.NoArgs,
	RunE:  runCalcPayslip,
}

func runCalcPayslip(cmd *cobra.Command, args []string) error {
	calc, cur, err := calcSetup(cmd)
	if err != nil {
		return err
	}
	salary, err := moneyFlag(cmd, "salary", cur)
	if err != nil {
		return err
	}
	incentive, err := moneyFlag(cmd, "incentive", cur)
	if err != nil {
		return err
	}
	deductions, err := moneyFlag(cmd, "deductions", cur)
	if err != nil {
		return err
	}
	otRaw, _ := cmd.Flags().GetString("ot-hours")
	otHours, err := decimal.NewFromString(otRaw)
	if err != nil {
		return fmt.Errorf("invalid --ot-hours %q: %w", otRaw, err)
	}
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")
	absent, _ := cmd.Flags().GetInt("absent-days")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store := memory.New()
	if err := store.SaveEmployee(ctx, payroll.Employee{ID: "cli", Name: "CLI", BaseSalary: salary}); err != nil {
		return err
	}
	svc := payroll.NewService(store, calc)

	p, err := svc.Preview(ctx, payroll.GenerateRequest{
		EmployeeID:    "cli",
		Period:        payroll.PayPeriod{Year: year, Month: time.Month(month), StartDay: start, EndDay: end},
		OvertimeHours: otHours,
		Incentive:     incentive,
		Deductions:    deductions,
		AbsentDays:    absent,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	row(w, "Period", p.Period.String())
	printBreakdown(w, p.Items(), p.TotalIncome, p.TotalDeduct, p.Financials.Net)
	return nil
}

// ─── helpers ────────────────────────────────────────────────────────────────

func calcSetup(cmd *cobra.Command) (*payroll.Calculator, money.Currency, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	calc, err := newCalculator(cfg)
	if err != nil {
		return nil, "", err
	}
	cur, _ := cmd.Flags().GetString("currency")
	if cur == "" {
		return calc, calc.Policy().Currency, nil
	}
	return calc, money.Currency(cur), nil
}

func moneyFlag(cmd *cobra.Command, name string, cur money.Currency) (money.Money, error) {
	raw, _ := cmd.Flags().GetString(name)
	m, err := money.FromString(raw, cur)
	if err != nil {
		return money.Money{}, fmt.Errorf("--%s: %w", name, err)
	}
	return m, nil
}

func printBreakdown(w io.Writer, items payroll.Items, income, deduct, net money.Money) {
	for _, li := range items.Lines() {
		row(w, li.Label, li.Amount.String())
	}
	row(w, "Total income", income.String())
	row(w, "Total deductions", deduct.String())
	row(w, "Net pay", net.String())
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-18s %s\n", label, value)
}
