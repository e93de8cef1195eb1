package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/roach88/tckrunner/internal/aggregate"
	"github.com/roach88/tckrunner/internal/canonical"
	"github.com/roach88/tckrunner/internal/dto"
	"github.com/roach88/tckrunner/internal/model"
	"github.com/roach88/tckrunner/internal/runner"
)

// consoleReporter prints test progress. In JSON mode progress goes to the
// diagnostic writer so stdout stays a single JSON document.
type consoleReporter struct {
	formatter *OutputFormatter
	w         io.Writer
}

func newConsoleReporter(f *OutputFormatter) *consoleReporter {
	w := f.Writer
	if f.Format == "json" {
		w = f.GetErrWriter()
	}
	return &consoleReporter{formatter: f, w: w}
}

func (r *consoleReporter) FixtureStarted(path string) {
	fmt.Fprintf(r.w, "\n%s\n", path)
}

func (r *consoleReporter) TestFinished(ev runner.TestEvent) {
	fmt.Fprintf(r.w, "  %s/%s (%s) ... ", ev.ModelName, ev.Invocable, ev.TestID)
	if ev.Outcome == aggregate.Success {
		fmt.Fprintf(r.w, "success %s\n", ev.Remark)
		return
	}
	fmt.Fprintf(r.w, "failure\n    %s\n", ev.Remark)
	if ev.Expected != nil || ev.Computed != nil {
		r.mismatch(ev)
	}
}

func (r *consoleReporter) mismatch(ev runner.TestEvent) {
	if !r.formatter.Verbose {
		return
	}
	w := r.formatter.GetErrWriter()
	fmt.Fprintf(w, "    expected: %s\n", valueJSON(ev.Expected))
	fmt.Fprintf(w, "    computed: %s\n", valueJSON(ev.Computed))
	if diff := dto.Diff(ev.Expected, ev.Computed); diff != "" {
		fmt.Fprintf(w, "    diff (-expected +computed):\n%s", diff)
	}
}

func valueJSON(v model.Value) string {
	if v == nil {
		return "<absent>"
	}
	data, err := canonical.Marshal(dto.FromValue(v).Canonical())
	if err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	return string(data)
}

// RunSummary is the JSON payload of a finished run.
type RunSummary struct {
	Tests             aggregate.Counts `json:"tests"`
	TestCases         aggregate.Counts `json:"test_cases"`
	RequestTimeMicros int64            `json:"request_time_us"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	Stopped           bool             `json:"stopped,omitempty"`
}

func outputRunSummary(f *OutputFormatter, result *runner.Result) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			RunID:  result.RunID,
			Data: RunSummary{
				Tests:             result.Summary.Tests,
				TestCases:         result.Summary.Cases,
				RequestTimeMicros: result.RequestTime.Microseconds(),
				RequestsPerSecond: result.RequestsPerSecond(),
				Stopped:           result.Stopped,
			},
		})
	}

	w := f.Writer
	fmt.Fprintln(w)
	if result.Stopped {
		fmt.Fprintln(w, "Stopped after the first failure.")
	}
	writeCountsTable(w, "Tests", result.Summary.Tests)
	writeCountsTable(w, "Test cases", result.Summary.Cases)
	writeTimingTable(w, result)
	if result.RunID != "" {
		fmt.Fprintf(w, "Run ID: %s\n", result.RunID)
	}
	return nil
}

func writeCountsTable(w io.Writer, title string, c aggregate.Counts) {
	success, failure := c.Percentages()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t\t\n", title)
	fmt.Fprintf(tw, "  total\t%5d\t\n", c.Total)
	fmt.Fprintf(tw, "  success\t%5d\t%7.2f%%\n", c.Success, success)
	fmt.Fprintf(tw, "  failure\t%5d\t%7.2f%%\n", c.Failure, failure)
	tw.Flush()
	fmt.Fprintln(w)
}

func writeTimingTable(w io.Writer, result *runner.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Timing\t\n")
	fmt.Fprintf(tw, "  requests\t%d\n", result.Summary.Tests.Total)
	fmt.Fprintf(tw, "  request time\t%s\n", result.RequestTime.Round(time.Microsecond))
	fmt.Fprintf(tw, "  requests/s\t%.2f\n", result.RequestsPerSecond())
	tw.Flush()
	fmt.Fprintln(w)
}
