package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Ahmad-Qasm/RM-client/internal/catalog"
	"github.com/Ahmad-Qasm/RM-client/internal/estimate"
)

// CatalogEntry is one task in the catalog listing. Minutes is the
// evaluated estimate when an engine count was given, otherwise 0.
type CatalogEntry struct {
	ID       int    `json:"taskid"`
	Name     string `json:"name"`
	Estimate string `json:"originalEstimate"`
	Minutes  int64  `json:"minutes,omitempty"`
}

type catalogOptions struct {
	TasksDir string
	Backend  string
	Engines  int
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &catalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the release-task directory",
		Long: `List the release-task directory from the shipped CUE files or from
the task-directory backend.

With --engines the estimate formulas are evaluated for that engine
count and the resulting minutes are shown alongside.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TasksDir, "tasks", "specs", "task-directory CUE path")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "fetch the directory from this backend URL instead")
	cmd.Flags().IntVarP(&opts.Engines, "engines", "n", 0, "evaluate estimates for this engine count")

	return cmd
}

func runCatalog(rootOpts *RootOptions, opts *catalogOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	tasks, err := loadDirectory(cmd, opts.TasksDir, opts.Backend)
	if err != nil {
		_ = formatter.Error("CATALOG_LOAD", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load task directory", err)
	}

	entries := make([]CatalogEntry, 0, len(tasks))
	for _, task := range tasks {
		entry := CatalogEntry{ID: task.ID, Name: task.Name, Estimate: task.OriginalEstimate}
		if opts.Engines > 0 {
			minutes, err := estimate.Minutes(task.OriginalEstimate, opts.Engines)
			if err != nil {
				_ = formatter.Error("ESTIMATE_INVALID", err.Error(), task.ID)
				return WrapExitError(ExitFailure, "estimate evaluation failed", err)
			}
			entry.Minutes = minutes
		}
		entries = append(entries, entry)
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	w := tabwriter.NewWriter(formatter.Writer, 2, 4, 2, ' ', 0)
	if opts.Engines > 0 {
		fmt.Fprintln(w, "ID\tTASK\tESTIMATE\tMINUTES")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", e.ID, e.Name, e.Estimate, e.Minutes)
		}
	} else {
		fmt.Fprintln(w, "ID\tTASK\tESTIMATE")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\n", e.ID, e.Name, e.Estimate)
		}
	}
	return w.Flush()
}

// loadDirectory loads the task directory from the backend when a URL is
// given, otherwise from the CUE path. An explicitly set --tasks always
// wins, so a local directory can be planned against a remote backend.
func loadDirectory(cmd *cobra.Command, tasksDir, backendURL string) ([]catalog.Task, error) {
	if backendURL != "" && !cmd.Flags().Changed("tasks") {
		return catalog.Fetch(cmd.Context(), nil, backendURL)
	}
	return catalog.LoadDir(tasksDir)
}
