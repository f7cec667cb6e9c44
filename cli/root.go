/*
Package cli implements the payroll command line.

COMMANDS:
  payroll serve                 Run the HTTP API
  payroll calc sso              Social-security contribution
  payroll calc prorate          Partial-month salary
  payroll calc tax              Monthly withholding tax with audit trail
  payroll calc net              Net pay breakdown
  payroll policy                Print the active policy as JSON

GLOBAL FLAGS:
  --config    TOML config file (optional)
  --env-file  dotenv file loaded before PAYROLL_* variables (default .env)

SEE ALSO:
  - config/config.go: Layering rules
  - cmd/payroll/main.go: Entry point
*/
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

var rootCmd = &cobra.Command{
	Use:           "payroll",
	Short:         "Payroll calculation engine",
	Long:          `Computes social security, pro-rated salary, progressive withholding tax and net pay, and serves payslip generation over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a dotenv file")

	rootCmd.AddCommand(policyCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves --config and --env-file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(path, envFile)
}

// newCalculator builds a calculator from the configured policy.
func newCalculator(cfg *config.Config) (*payroll.Calculator, error) {
	p, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return payroll.NewCalculator(p)
}

// ─── policy ─────────────────────────────────────────────────────────────────

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the active payroll policy as JSON",
	Args:  cobra.NoArgs,
	RunE:  runPolicy,
}

func runPolicy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	calc, err := newCalculator(cfg)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(factory.NewPolicyFactory().ToJSON(calc.Policy()), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
