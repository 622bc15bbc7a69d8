// Command rmplan plans release-task due dates for engine calibration
// orders and submits the resulting schedule.
package main

import (
	"fmt"
	"os"

	"github.com/Ahmad-Qasm/RM-client/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
