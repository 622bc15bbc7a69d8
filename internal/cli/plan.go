package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ahmad-Qasm/RM-client/internal/order"
	"github.com/Ahmad-Qasm/RM-client/internal/session"
)

// ScheduleRow is one task in the derived schedule output.
type ScheduleRow struct {
	Task    int    `json:"task"`
	Name    string `json:"name"`
	Checked bool   `json:"checked,omitempty"`
	Date    string `json:"date,omitempty"`
}

// PlanResult is the plan command's output payload.
type PlanResult struct {
	Order    int64         `json:"order"`
	State    string        `json:"state"`
	Meeting  string        `json:"meeting,omitempty"`
	Schedule []ScheduleRow `json:"schedule"`
}

// planOptions holds the flags shared by plan and submit.
type planOptions struct {
	OrderFile string
	TasksDir  string
	Backend   string
	Meeting   string
	Dates     []string
	Checks    []int
	Today     string
}

func addPlanFlags(cmd *cobra.Command, opts *planOptions) {
	cmd.Flags().StringVar(&opts.OrderFile, "order", "", "order JSON file (required)")
	cmd.Flags().StringVar(&opts.TasksDir, "tasks", "specs", "task-directory CUE path")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "fetch the task directory from this backend URL instead")
	cmd.Flags().StringVar(&opts.Meeting, "meeting", "", "release meeting date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&opts.Dates, "date", nil, "override a task date as id=YYYY-MM-DD (repeatable)")
	cmd.Flags().IntSliceVar(&opts.Checks, "check", nil, "mark a task as selected (repeatable)")
	cmd.Flags().StringVar(&opts.Today, "today", "", "pin the clock (YYYY-MM-DD, defaults to today)")
	_ = cmd.MarkFlagRequired("order")
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Derive the release-task schedule for an order",
		Long: `Derive due dates for every release task of a calibration order.

Anchor-derived dates come from the order's delivery-order weeks.
Setting --meeting additionally derives the meeting-dependent tasks.
Explicit --date overrides always win over derivation.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, opts, cmd)
		},
	}

	addPlanFlags(cmd, opts)
	return cmd
}

func runPlan(rootOpts *RootOptions, opts *planOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	sess, o, err := buildSession(cmd, opts, formatter)
	if err != nil {
		return err
	}

	result := buildPlanResult(sess, o)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return writeScheduleText(formatter, result)
}

// buildSession loads the order and directory, then replays the plan
// flags through a fresh session: overrides first, meeting last, so the
// meeting-dependent derivation sees the overrides.
func buildSession(cmd *cobra.Command, opts *planOptions, formatter *OutputFormatter) (*session.Session, *order.Order, error) {
	o, err := order.LoadFile(opts.OrderFile)
	if err != nil {
		_ = formatter.Error("ORDER_LOAD", err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "failed to load order", err)
	}

	directory, err := loadDirectory(cmd, opts.TasksDir, opts.Backend)
	if err != nil {
		_ = formatter.Error("CATALOG_LOAD", err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "failed to load task directory", err)
	}

	var sessOpts []session.Option
	if opts.Today != "" {
		today, err := time.ParseInLocation(time.DateOnly, opts.Today, time.UTC)
		if err != nil {
			_ = formatter.Error("BAD_FLAG", fmt.Sprintf("--today: %v", err), nil)
			return nil, nil, WrapExitError(ExitCommandError, "invalid --today", err)
		}
		sessOpts = append(sessOpts, session.WithNow(func() time.Time { return today }))
	}

	sess := session.New(o, directory, sessOpts...)
	if err := sess.Init(); err != nil {
		_ = formatter.Error("SESSION_INIT", err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "failed to initialize session", err)
	}

	for _, spec := range opts.Dates {
		id, d, err := parseDateFlag(spec)
		if err != nil {
			_ = formatter.Error("BAD_FLAG", err.Error(), nil)
			return nil, nil, WrapExitError(ExitCommandError, "invalid --date", err)
		}
		if err := sess.SetDate(id, d); err != nil {
			_ = formatter.Error("SET_DATE", err.Error(), id)
			return nil, nil, WrapExitError(ExitCommandError, "failed to set date", err)
		}
	}

	if opts.Meeting != "" {
		meeting, err := time.ParseInLocation(time.DateOnly, opts.Meeting, time.UTC)
		if err != nil {
			_ = formatter.Error("BAD_FLAG", fmt.Sprintf("--meeting: %v", err), nil)
			return nil, nil, WrapExitError(ExitCommandError, "invalid --meeting", err)
		}
		if err := sess.SetDate(9, meeting); err != nil {
			_ = formatter.Error("SET_MEETING", err.Error(), nil)
			return nil, nil, WrapExitError(ExitCommandError, "failed to set meeting", err)
		}
	}

	for _, id := range opts.Checks {
		if err := sess.SetChecked(id, true); err != nil {
			_ = formatter.Error("CHECK", err.Error(), id)
			return nil, nil, WrapExitError(ExitCommandError, "failed to check task", err)
		}
	}

	return sess, o, nil
}

// parseDateFlag parses one "id=YYYY-MM-DD" override.
func parseDateFlag(spec string) (int, time.Time, error) {
	idStr, dateStr, ok := strings.Cut(spec, "=")
	if !ok {
		return 0, time.Time{}, fmt.Errorf("--date %q: expected id=YYYY-MM-DD", spec)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("--date %q: task id: %w", spec, err)
	}
	d, err := time.ParseInLocation(time.DateOnly, dateStr, time.UTC)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("--date %q: %w", spec, err)
	}
	return id, d, nil
}

func buildPlanResult(sess *session.Session, o *order.Order) *PlanResult {
	result := &PlanResult{
		Order: o.ID,
		State: sess.State().String(),
	}
	if m := sess.Meeting(); m != nil {
		result.Meeting = m.Format(time.DateOnly)
	}
	for _, task := range sess.Tasks() {
		row := ScheduleRow{Task: task.ID, Name: task.Name, Checked: task.Checked}
		if task.Date != nil {
			row.Date = task.Date.Format(time.DateOnly)
		}
		result.Schedule = append(result.Schedule, row)
	}
	return result
}

func writeScheduleText(formatter *OutputFormatter, result *PlanResult) error {
	if result.Meeting != "" {
		fmt.Fprintf(formatter.Writer, "Release meeting: %s\n", result.Meeting)
	}
	w := tabwriter.NewWriter(formatter.Writer, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTASK\tDATE\tCHECKED")
	for _, row := range result.Schedule {
		date := row.Date
		if date == "" {
			date = "-"
		}
		checked := ""
		if row.Checked {
			checked = "x"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.Task, row.Name, date, checked)
	}
	return w.Flush()
}
