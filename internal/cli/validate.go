package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ahmad-Qasm/RM-client/internal/catalog"
)

// ValidationResult holds validation results for the task directory.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	TaskCount int    `json:"task_count,omitempty"`
	Error     string `json:"error,omitempty"`
	Pos       string `json:"pos,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <tasks-dir>",
		Short: "Validate the CUE task directory",
		Long: `Validate the CUE task-directory files without planning anything.

Compiles every .cue file in the directory, checks ids, names and
estimate formulas, and reports the first problem found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, tasksDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	tasks, err := catalog.LoadDir(tasksDir)
	if err != nil {
		result := ValidationResult{Valid: false, Error: err.Error()}
		var compileErr *catalog.CompileError
		if errors.As(err, &compileErr) {
			result.Error = compileErr.Message
			result.Pos = compileErr.Pos
		}

		if formatter.Format == "json" {
			_ = formatter.Success(result)
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Task directory invalid")
			if result.Pos != "" {
				fmt.Fprintf(formatter.Writer, "  %s\n", result.Pos)
			}
			fmt.Fprintf(formatter.Writer, "  %s\n", result.Error)
		}
		return NewExitError(ExitFailure, "task directory validation failed")
	}

	formatter.VerboseLog("Compiled %d task(s) from %s", len(tasks), tasksDir)

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, TaskCount: len(tasks)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Task directory valid (%d tasks)\n", len(tasks))
	return nil
}
