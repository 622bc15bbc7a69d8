package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ahmad-Qasm/RM-client/internal/backend"
	"github.com/Ahmad-Qasm/RM-client/internal/session"
	"github.com/Ahmad-Qasm/RM-client/internal/store"
)

// SubmitResult is the submit command's output payload.
type SubmitResult struct {
	SubmissionToken string        `json:"submission_token"`
	Saved           []ScheduleRow `json:"saved"`
	Failed          []SubmitError `json:"failed,omitempty"`
}

// SubmitError is one per-task submission failure.
type SubmitError struct {
	Task  int    `json:"task"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type submitOptions struct {
	planOptions
	DBPath string
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the checked tasks' dates",
		Long: `Derive the schedule like plan, then persist the checked tasks' dates.

Targets: --db writes the local submission log; --backend posts each
task date to the release-management service. Both may be given, in
which case every task date goes to both. Submission is blocked while
any checked task has no date.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(rootOpts, opts, cmd)
		},
	}

	addPlanFlags(cmd, &opts.planOptions)
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "local submission-log database path")
	return cmd
}

func runSubmit(rootOpts *RootOptions, opts *submitOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if opts.DBPath == "" && opts.Backend == "" {
		err := fmt.Errorf("at least one of --db or --backend is required")
		_ = formatter.Error("BAD_FLAG", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	sess, _, err := buildSession(cmd, &opts.planOptions, formatter)
	if err != nil {
		return err
	}

	saver, cleanup, err := buildSaver(cmd.Context(), opts, formatter)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := sess.Submit(cmd.Context(), saver)
	if err != nil {
		_ = formatter.Error("SUBMIT_BLOCKED", err.Error(), nil)
		return WrapExitError(ExitFailure, "submission blocked", err)
	}

	payload := &SubmitResult{SubmissionToken: result.SubmissionToken}
	for _, td := range result.Saved {
		payload.Saved = append(payload.Saved, ScheduleRow{
			Task: td.CatalogID,
			Name: td.Name,
			Date: td.Due.Format(time.DateOnly),
		})
	}
	for _, failure := range result.Failed {
		payload.Failed = append(payload.Failed, SubmitError{
			Task:  failure.TaskID,
			Name:  failure.Name,
			Error: failure.Err.Error(),
		})
	}

	if formatter.Format == "json" {
		if err := formatter.Success(payload); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "Submission %s: %d task date(s) saved\n",
			payload.SubmissionToken, len(payload.Saved))
		for _, row := range payload.Saved {
			fmt.Fprintf(formatter.Writer, "  ✓ %d %s → %s\n", row.Task, row.Name, row.Date)
		}
		for _, failure := range payload.Failed {
			fmt.Fprintf(formatter.Writer, "  ✗ %d %s: %s\n", failure.Task, failure.Name, failure.Error)
		}
	}

	if len(payload.Failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d task date(s) failed to save", len(payload.Failed)))
	}
	return nil
}

// buildSaver assembles the submission target(s). The cleanup function
// closes the local store when one was opened.
func buildSaver(ctx context.Context, opts *submitOptions, formatter *OutputFormatter) (session.Saver, func(), error) {
	var savers []session.Saver
	cleanup := func() {}

	if opts.DBPath != "" {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			_ = formatter.Error("STORE_OPEN", err.Error(), nil)
			return nil, cleanup, WrapExitError(ExitCommandError, "failed to open submission log", err)
		}
		cleanup = func() { st.Close() }
		saver, err := store.NewSaver(ctx, st)
		if err != nil {
			cleanup()
			_ = formatter.Error("STORE_OPEN", err.Error(), nil)
			return nil, func() {}, WrapExitError(ExitCommandError, "failed to open submission log", err)
		}
		savers = append(savers, saver)
	}
	if opts.Backend != "" {
		savers = append(savers, backend.New(opts.Backend, nil))
	}

	if len(savers) == 1 {
		return savers[0], cleanup, nil
	}
	return multiSaver(savers), cleanup, nil
}

// multiSaver fans one save out to every target, stopping at the first
// failure so the session records it against the task.
type multiSaver []session.Saver

func (m multiSaver) SaveTaskDate(ctx context.Context, td session.TaskDate) error {
	for _, s := range m {
		if err := s.SaveTaskDate(ctx, td); err != nil {
			return err
		}
	}
	return nil
}
