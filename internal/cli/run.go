package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/tckrunner/internal/config"
	"github.com/roach88/tckrunner/internal/evaluator"
	"github.com/roach88/tckrunner/internal/fixture"
	"github.com/roach88/tckrunner/internal/identity"
	"github.com/roach88/tckrunner/internal/runner"
	"github.com/roach88/tckrunner/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	StopOnFailure bool
	HistoryDB     string

	// Clock and RunIDs override the runner defaults (for testing).
	Clock  runner.Clock
	RunIDs runner.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [config.yml]",
		Short: "Run the TCK test cases against an evaluation service",
		Long: `Run every TCK test case found below the configured directory.

All model definitions and fixtures are read before the first request is
sent. Each result node of each test case becomes one evaluation request.
The per-test report and the per-test-case (TCK) report are written to the
configured files.

Exit codes: 0 all tests passed, 1 at least one test failed,
2 configuration, parse or history error.

Example:
  tckrunner run
  tckrunner run ./config.yml --stop-on-failure
  tckrunner run --history-db ./runs.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			return runTests(opts, path, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.StopOnFailure, "stop-on-failure", false, "stop after the first failing test (overrides the config file)")
	cmd.Flags().StringVar(&opts.HistoryDB, "history-db", "", "record the run in this SQLite database (overrides the config file)")

	return cmd
}

func runTests(opts *RunOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := config.Load(configPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load configuration", err)
	}
	if cmd.Flags().Changed("stop-on-failure") {
		cfg.StopOnFailure = opts.StopOnFailure
	}
	if opts.HistoryDB != "" {
		cfg.HistoryDB = opts.HistoryDB
	}
	pattern, err := cfg.Pattern()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "invalid file search pattern", err)
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "invalid request timeout", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan, err := runner.BuildPlan(ctx, cfg.TestCasesDir, pattern, false, logger)
	if err != nil {
		return formatter.fail(ExitCommandError, planErrorCode(err), "failed to prepare test run", err)
	}
	formatter.VerboseLog("Found %d model definition(s) and %d fixture(s) in %s", plan.Definitions, len(plan.Fixtures), plan.Root)

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithReporter(newConsoleReporter(formatter)),
	}
	if opts.Clock != nil {
		runnerOpts = append(runnerOpts, runner.WithClock(opts.Clock))
	}
	if opts.RunIDs != nil {
		runnerOpts = append(runnerOpts, runner.WithRunIDGenerator(opts.RunIDs))
	}
	if cfg.HistoryDB != "" {
		st, err := store.Open(cfg.HistoryDB)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, "failed to open history database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing history database", "error", closeErr)
			}
		}()
		runnerOpts = append(runnerOpts, runner.WithHistory(st))
	}

	report, err := os.Create(cfg.ReportFile)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeReport, "failed to create report file", err)
	}
	defer closeLogged(logger, report)
	tckReport, err := os.Create(cfg.TCKReportFile)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeReport, "failed to create TCK report file", err)
	}
	defer closeLogged(logger, tckReport)

	ev := evaluator.New(cfg.EvaluateURL,
		evaluator.WithTimeout(timeout),
		evaluator.WithLogger(logger))
	r := runner.New(ev, runnerOpts...)

	result, err := r.Execute(ctx, plan, runner.Settings{
		Endpoint:      cfg.EvaluateURL,
		StopOnFailure: cfg.StopOnFailure,
	}, report, tckReport)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, store.ErrRunNotFound) {
			code = ErrCodeHistory
		}
		return formatter.fail(ExitCommandError, code, "test run aborted", err)
	}

	if err := outputRunSummary(formatter, result); err != nil {
		return err
	}
	if result.Failed() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d test(s) failed", result.Summary.Tests.Failure))
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// planErrorCode classifies a planning failure by the first error kind found.
func planErrorCode(err error) string {
	switch {
	case identity.IsDefinitionError(err), errors.Is(err, identity.ErrUnknownModel):
		return ErrCodeDefinition
	case fixture.IsParseError(err), errors.Is(err, runner.ErrMissingModelName):
		return ErrCodeFixture
	default:
		return ErrCodeDiscovery
	}
}

type closer interface {
	Close() error
	Name() string
}

func closeLogged(logger *slog.Logger, f closer) {
	if err := f.Close(); err != nil {
		logger.Error("error closing file", "file", f.Name(), "error", err)
	}
}
