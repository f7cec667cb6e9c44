package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/factory"
)

// resetFlags restores every flag to its default; commands are package-level
// and keep parsed values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PAYROLL_POLICY", "")
	t.Setenv("PAYROLL_POLICY_FILE", "")
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", ""))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCalcSSO(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"mid range", []string{"--salary", "10000"}, "500.00 THB\n"},
		{"capped", []string{"--salary", "80000"}, "875.00 THB\n"},
		{"floor", []string{"--salary", "0"}, "83.00 THB\n"},
		{"explicit currency", []string{"--salary", "10000", "--currency", "USD"}, "500.00 USD\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"calc", "sso"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCalcProrate(t *testing.T) {
	out, err := run(t, "calc", "prorate", "--salary", "30000", "--start", "16", "--days", "31")
	require.NoError(t, err)
	assert.Equal(t, "16000.00 THB\n", out)

	out, err = run(t, "calc", "prorate", "--salary", "25000", "--end", "14", "--days", "28")
	require.NoError(t, err)
	assert.Equal(t, "11666.67 THB\n", out)
}

func TestCalcProrate_Errors(t *testing.T) {
	_, err := run(t, "calc", "prorate", "--salary", "30000")
	assert.Error(t, err, "--days is required")

	_, err = run(t, "calc", "prorate", "--salary", "30000", "--start", "20", "--end", "10", "--days", "31")
	assert.Error(t, err)

	_, err = run(t, "calc", "prorate", "--salary", "lots", "--days", "31")
	assert.ErrorContains(t, err, "--salary")
}

func TestCalcTax(t *testing.T) {
	out, err := run(t, "calc", "tax", "--income", "50000", "--sso", "875")
	require.NoError(t, err)
	assert.Contains(t, out, "600000.00")
	assert.Contains(t, out, "429500.00")
	assert.Contains(t, out, "1704.17 THB")
}

func TestCalcNet(t *testing.T) {
	out, err := run(t, "calc", "net", "--salary", "25000", "--ot", "1000", "--sso", "875", "--tax", "450")
	require.NoError(t, err)
	assert.Contains(t, out, "26000.00 THB")
	assert.Contains(t, out, "1325.00 THB")
	assert.Contains(t, out, "24675.00 THB")
}

func TestCalcPayslip_PartialMonth(t *testing.T) {
	// GIVEN: 30,000 base, joined on the 16th of March
	// THEN: Pro-rated salary, SSO on the pro-rated salary, no tax
	out, err := run(t, "calc", "payslip", "--salary", "30000", "--year", "2025", "--month", "3", "--start", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "[2025-03-16, 2025-03-31]")
	assert.Contains(t, out, "16000.00 THB")
	assert.Contains(t, out, "800.00 THB")
	assert.Contains(t, out, "15200.00 THB")
}

func TestCalcPayslip_InvalidMonth(t *testing.T) {
	_, err := run(t, "calc", "payslip", "--salary", "30000", "--year", "2025", "--month", "13")
	assert.Error(t, err)
}

func TestPolicyCommand(t *testing.T) {
	out, err := run(t, "policy")
	require.NoError(t, err)

	var pj factory.PolicyJSON
	require.NoError(t, json.Unmarshal([]byte(out), &pj))
	assert.Equal(t, "default", pj.ID)
	require.NotNil(t, pj.Tax)
	assert.Len(t, pj.Tax.Brackets, 8)
}

func TestPolicyCommand_Legacy(t *testing.T) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"policy", "--env-file", ""})
	t.Setenv("PAYROLL_POLICY", "legacy")

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"id": "legacy"`)
}

func TestRunCommand_EmptyMemoryStore(t *testing.T) {
	out, err := run(t, "run", "--store", "memory", "--year", "2025", "--month", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-03")
	assert.Contains(t, out, "Generated          0")
}

func TestRunCommand_InvalidMonth(t *testing.T) {
	_, err := run(t, "run", "--store", "memory", "--year", "2025", "--month", "13")
	assert.Error(t, err)
}
