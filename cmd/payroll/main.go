/*
main.go - Application entry point

PURPOSE:
  Starts the payroll command line. `payroll serve` runs the HTTP API with
  graceful shutdown; `payroll calc ...` runs one-off calculations.

EXAMPLES:
  # Run with file database
  PAYROLL_SQLITE_PATH=./data/payroll.db ./payroll serve

  # Run with in-memory store on a different port
  ./payroll serve --store memory --port 3000

  # Monthly withholding for 50,000 income
  ./payroll calc tax --income 50000 --sso 875

SEE ALSO:
  - cli/root.go: Command tree
  - config/config.go: Configuration layering
*/
package main

import (
	"fmt"
	"os"

	"github.com/warp/payroll-engine/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
