package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tckrunner/internal/aggregate"
	"github.com/roach88/tckrunner/internal/store"
)

// HistoryOptions holds flags shared by the history subcommands.
type HistoryOptions struct {
	*RootOptions
	DBPath string
	Limit  int
}

// RunView is the JSON form of a recorded run.
type RunView struct {
	ID          string            `json:"id"`
	RootDir     string            `json:"root_dir"`
	Endpoint    string            `json:"endpoint"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
	Summary     aggregate.Summary `json:"summary"`
	RequestTime int64             `json:"request_time_us"`
}

// TestView is the JSON form of a recorded test.
type TestView struct {
	Seq       int64  `json:"seq"`
	Directory string `json:"directory"`
	FileStem  string `json:"file_stem"`
	CaseID    string `json:"test_case_id"`
	TestID    string `json:"test_id"`
	Invocable string `json:"invocable"`
	Outcome   string `json:"outcome"`
	Remark    string `json:"remark,omitempty"`
	Computed  string `json:"computed,omitempty"`
	ElapsedUS int64  `json:"elapsed_us"`
}

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded test runs",
		Long: `Inspect runs recorded with --history-db (or history_db in the configuration).

Example:
  tckrunner history runs --db ./runs.db
  tckrunner history tests <run-id> --db ./runs.db
  tckrunner history diff <base-run> <head-run> --db ./runs.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite history database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	runsCmd := &cobra.Command{
		Use:           "runs",
		Short:         "List recorded runs, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryRuns(opts, cmd)
		},
	}
	runsCmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 lists all)")

	testsCmd := &cobra.Command{
		Use:           "tests <run-id>",
		Short:         "List the tests recorded for one run",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryTests(opts, args[0], cmd)
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff <base-run> <head-run>",
		Short: "Show tests whose outcome or computed value changed between two runs",
		Long: `Compare two recorded runs test by test.

A test is reported when its outcome differs, when both runs computed a value
and the values differ, or when it exists in only one of the runs.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryDiff(opts, args[0], args[1], cmd)
		},
	}

	cmd.AddCommand(runsCmd, testsCmd, diffCmd)
	return cmd
}

func historyFormatter(opts *HistoryOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// withStore opens the history database for the duration of fn.
func withStore(formatter *OutputFormatter, path string, fn func(*store.Store) error) error {
	st, err := store.Open(path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to open history database", err)
	}
	defer st.Close()
	return fn(st)
}

func runHistoryRuns(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := historyFormatter(opts, cmd)
	return withStore(formatter, opts.DBPath, func(st *store.Store) error {
		runs, err := st.ListRuns(commandContext(cmd), opts.Limit)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to list runs", err)
		}

		views := make([]RunView, len(runs))
		for i, r := range runs {
			views[i] = toRunView(r)
		}
		if formatter.Format == "json" {
			return formatter.Success(views)
		}

		if len(views) == 0 {
			fmt.Fprintln(formatter.Writer, "No runs recorded.")
			return nil
		}
		writeRunsTable(formatter.Writer, views)
		return nil
	})
}

func runHistoryTests(opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	formatter := historyFormatter(opts, cmd)
	return withStore(formatter, opts.DBPath, func(st *store.Store) error {
		ctx := commandContext(cmd)
		if _, err := st.GetRun(ctx, runID); err != nil {
			return historyLookupError(formatter, runID, err)
		}
		records, err := st.ReadTests(ctx, runID)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to read tests", err)
		}

		views := make([]TestView, len(records))
		for i, rec := range records {
			views[i] = TestView{
				Seq:       rec.Seq,
				Directory: rec.Dir,
				FileStem:  rec.Stem,
				CaseID:    rec.CaseID,
				TestID:    rec.TestID,
				Invocable: rec.Invocable,
				Outcome:   rec.Outcome,
				Remark:    rec.Remark,
				Computed:  rec.Computed,
				ElapsedUS: rec.Elapsed.Microseconds(),
			}
		}
		if formatter.Format == "json" {
			return formatter.Success(views)
		}

		tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tDIRECTORY\tFILE\tTEST\tOUTCOME\tREMARK")
		for _, v := range views {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", v.Seq, v.Directory, v.FileStem, v.TestID, v.Outcome, v.Remark)
		}
		return tw.Flush()
	})
}

func runHistoryDiff(opts *HistoryOptions, baseID, headID string, cmd *cobra.Command) error {
	formatter := historyFormatter(opts, cmd)
	return withStore(formatter, opts.DBPath, func(st *store.Store) error {
		changes, err := st.DiffRuns(commandContext(cmd), baseID, headID)
		if err != nil {
			return historyLookupError(formatter, baseID+" or "+headID, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(changes)
		}

		if len(changes) == 0 {
			fmt.Fprintln(formatter.Writer, "No changes.")
			return nil
		}
		tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DIRECTORY\tFILE\tTEST\tBASE\tHEAD\tVALUE")
		for _, c := range changes {
			value := ""
			if c.ValueChanged {
				value = "changed"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.Dir, c.Stem, c.TestID, orDash(c.Base), orDash(c.Head), value)
		}
		return tw.Flush()
	})
}

func historyLookupError(formatter *OutputFormatter, runID string, err error) error {
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeHistory, fmt.Sprintf("run %s not found", runID), nil)
	}
	return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to read history", err)
}

func toRunView(r store.Run) RunView {
	return RunView{
		ID:          r.ID,
		RootDir:     r.RootDir,
		Endpoint:    r.Endpoint,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Summary:     r.Summary,
		RequestTime: r.RequestTime.Microseconds(),
	}
}

func writeRunsTable(w io.Writer, runs []RunView) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tTESTS\tSUCCESS\tFAILURE\tCASES\tENDPOINT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.StartedAt.UTC().Format(time.RFC3339),
			r.Summary.Tests.Total,
			r.Summary.Tests.Success,
			r.Summary.Tests.Failure,
			r.Summary.Cases.Total,
			r.Endpoint)
	}
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
