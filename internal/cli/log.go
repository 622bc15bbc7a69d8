package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ahmad-Qasm/RM-client/internal/store"
)

// LogRow is one logged task date in the log listing.
type LogRow struct {
	Submission string `json:"submission_token"`
	Task       int    `json:"task"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	Minutes    int64  `json:"minutes"`
	Order      int64  `json:"order"`
	Seq        int64  `json:"seq"`
}

type logOptions struct {
	DBPath  string
	OrderID int64
	Token   string
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &logOptions{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List the local submission log",
		Long: `List task dates recorded in the local submission log, in the order
they were saved.

Filter with --order to see every submission for an order, or with
--token to see one submission.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "local submission-log database path")
	cmd.Flags().Int64Var(&opts.OrderID, "order", 0, "list every submission for this order id")
	cmd.Flags().StringVar(&opts.Token, "token", "", "list one submission by token")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLog(rootOpts *RootOptions, opts *logOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if (opts.OrderID == 0) == (opts.Token == "") {
		err := fmt.Errorf("exactly one of --order or --token is required")
		_ = formatter.Error("BAD_FLAG", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		_ = formatter.Error("STORE_OPEN", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open submission log", err)
	}
	defer st.Close()

	var records []store.Record
	if opts.Token != "" {
		records, err = st.ListSubmission(cmd.Context(), opts.Token)
	} else {
		records, err = st.ListTaskDates(cmd.Context(), opts.OrderID)
	}
	if err != nil {
		_ = formatter.Error("STORE_READ", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read submission log", err)
	}

	rows := make([]LogRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, LogRow{
			Submission: rec.SubmissionToken,
			Task:       rec.CatalogID,
			Name:       rec.Name,
			Date:       rec.Due.Format(time.DateOnly),
			Minutes:    rec.Minutes,
			Order:      rec.OrderID,
			Seq:        rec.Seq,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(rows)
	}

	w := tabwriter.NewWriter(formatter.Writer, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tSUBMISSION\tTASK\tNAME\tDATE\tMINUTES")
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%d\n",
			row.Seq, row.Submission, row.Task, row.Name, row.Date, row.Minutes)
	}
	return w.Flush()
}
