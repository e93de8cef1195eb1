package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tckrunner/internal/config"
	"github.com/roach88/tckrunner/internal/runner"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Root        string            `json:"root,omitempty"`
	Definitions int               `json:"definitions"`
	Fixtures    int               `json:"fixtures"`
	TestCases   int               `json:"test_cases"`
	Tests       int               `json:"tests"`
	Errors      []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one problem found while preparing a run.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config.yml]",
		Short: "Check configuration, model definitions and fixtures without running tests",
		Long: `Validate the configuration and every file a run would read.

Discovers model definitions and fixtures, resolves model identities and
parses every fixture without contacting the evaluation service. All
problems are reported, not just the first one.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts, cmd.ErrOrStderr())

	cfg, err := config.Load(configPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load configuration", err)
	}
	pattern, err := cfg.Pattern()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "invalid file search pattern", err)
	}
	if _, err := cfg.Timeout(); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "invalid request timeout", err)
	}

	plan, err := runner.BuildPlan(commandContext(cmd), cfg.TestCasesDir, pattern, true, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, "validation cancelled", err)
		}
		return outputValidationErrors(formatter, collectIssues(err))
	}

	formatter.VerboseLog("Found %d model definition(s) and %d fixture(s) in %s", plan.Definitions, len(plan.Fixtures), plan.Root)
	return outputValidateSuccess(formatter, ValidationResult{
		Valid:       true,
		Root:        plan.Root,
		Definitions: plan.Definitions,
		Fixtures:    len(plan.Fixtures),
		TestCases:   plan.TestCaseCount(),
		Tests:       plan.TestCount(),
	})
}

// collectIssues flattens joined errors into one issue per failure.
func collectIssues(err error) []ValidationIssue {
	var issues []ValidationIssue
	var walk func(error)
	walk = func(e error) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		issues = append(issues, ValidationIssue{Code: planErrorCode(e), Message: e.Error()})
	}
	walk(err)
	return issues
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✓ All files valid")
	fmt.Fprintf(w, "  model definitions: %d\n", result.Definitions)
	fmt.Fprintf(w, "  fixtures:          %d\n", result.Fixtures)
	fmt.Fprintf(w, "  test cases:        %d\n", result.TestCases)
	fmt.Fprintf(w, "  tests:             %d\n", result.Tests)
	return nil
}

// outputValidationErrors outputs every collected problem.
func outputValidationErrors(formatter *OutputFormatter, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Code, issue.Message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
