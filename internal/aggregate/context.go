package aggregate

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Outcome is the verdict of a single test.
type Outcome int

const (
	Success Outcome = iota
	Failure
)

// String returns the report spelling of the outcome.
func (o Outcome) String() string {
	if o == Success {
		return "SUCCESS"
	}
	return "ERROR"
}

// CaseKey identifies a test case across the run.
type CaseKey struct {
	Dir    string
	Stem   string
	CaseID string
}

func compareKeys(a, b CaseKey) int {
	if c := strings.Compare(a.Dir, b.Dir); c != 0 {
		return c
	}
	if c := strings.Compare(a.Stem, b.Stem); c != 0 {
		return c
	}
	return strings.Compare(a.CaseID, b.CaseID)
}

// Options configures a Context.
type Options struct {
	// StopOnFailure makes Record return ErrStopOnFailure after a failure.
	StopOnFailure bool

	// Root is the discovery root. It is stripped, with a trailing "/", from
	// the directory column of both reports.
	Root string
}

// Counts is a total with its success and failure split.
type Counts struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Percentages returns the success and failure shares of the total, in percent.
// A zero total yields (0, 0).
func (c Counts) Percentages() (success, failure float64) {
	return Percentages(c.Total, c.Success, c.Failure)
}

// Percentages computes 100*count/total for both counts, or (0, 0) when total is 0.
func Percentages(total, success, failure int) (float64, float64) {
	if total == 0 {
		return 0, 0
	}
	return float64(success*100) / float64(total), float64(failure*100) / float64(total)
}

// Summary is the result of Finalize.
type Summary struct {
	Tests Counts `json:"tests"`
	Cases Counts `json:"test_cases"`
}

// Context accumulates test outcomes for one run.
//
// Thread-safety: all methods are safe for concurrent use. Report lines are
// written in the order Record is called.
type Context struct {
	mu sync.Mutex

	report    *bufio.Writer
	tckReport *bufio.Writer
	opts      Options
	prefix    string

	tests     Counts
	successes map[CaseKey]struct{}
	failures  map[CaseKey][]string
	finalized bool
}

// New creates a collecting context writing to the given report sinks.
func New(report, tckReport io.Writer, opts Options) *Context {
	return &Context{
		report:    bufio.NewWriter(report),
		tckReport: bufio.NewWriter(tckReport),
		opts:      opts,
		prefix:    opts.Root + "/",
		successes: make(map[CaseKey]struct{}),
		failures:  make(map[CaseKey][]string),
	}
}

// Key returns the case key for a fixture file path and test-case id.
func (c *Context) Key(file, caseID string) CaseKey {
	return CaseKey{
		Dir:    strings.TrimPrefix(parentDir(file), c.prefix),
		Stem:   fileStem(file),
		CaseID: caseID,
	}
}

// Record appends one line to the fine-grained report and updates the
// aggregates. The remark is written only for failures.
func (c *Context) Record(file, caseID, testID string, outcome Outcome, remark string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return ErrFinalized
	}

	key := c.Key(file, caseID)
	reportRemark := ""
	if outcome == Failure {
		reportRemark = remark
	}
	if err := writeLine(c.report, key.Dir, key.Stem, testID, outcome, reportRemark); err != nil {
		return fmt.Errorf("failed to write report line: %w", err)
	}

	c.tests.Total++
	if outcome == Success {
		c.tests.Success++
		c.successes[key] = struct{}{}
		return nil
	}

	c.tests.Failure++
	c.failures[key] = append(c.failures[key], remark)
	if c.opts.StopOnFailure {
		return ErrStopOnFailure
	}
	return nil
}

// Tests returns the test-grain counts recorded so far.
func (c *Context) Tests() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tests
}

// Finalize writes the aggregated report, flushes both sinks and returns the
// run summary. A case passes only when it has at least one success and no
// failure. Finalize may be called once.
func (c *Context) Finalize() (Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return Summary{}, ErrFinalized
	}
	c.finalized = true

	keys := make([]CaseKey, 0, len(c.successes)+len(c.failures))
	for key := range c.successes {
		if _, failed := c.failures[key]; !failed {
			keys = append(keys, key)
		}
	}
	passed := len(keys)
	for key := range c.failures {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, compareKeys)

	for _, key := range keys {
		remarks, failed := c.failures[key]
		var err error
		if failed {
			err = writeLine(c.tckReport, key.Dir, key.Stem, key.CaseID, Failure, strings.Join(remarks, ","))
		} else {
			err = writeLine(c.tckReport, key.Dir, key.Stem, key.CaseID, Success, "")
		}
		if err != nil {
			return Summary{}, fmt.Errorf("failed to write TCK report line: %w", err)
		}
	}

	if err := c.report.Flush(); err != nil {
		return Summary{}, fmt.Errorf("failed to flush report: %w", err)
	}
	if err := c.tckReport.Flush(); err != nil {
		return Summary{}, fmt.Errorf("failed to flush TCK report: %w", err)
	}

	return Summary{
		Tests: c.tests,
		Cases: Counts{
			Total:   len(keys),
			Success: passed,
			Failure: len(c.failures),
		},
	}, nil
}

func writeLine(w io.Writer, dir, stem, id string, outcome Outcome, remark string) error {
	_, err := fmt.Fprintf(w, `"%s","%s","%s","%s","%s"`+"\n", dir, stem, id, outcome, remark)
	return err
}

// parentDir returns the directory part of path, or "" when there is none.
func parentDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	if i == 0 {
		return "/"
	}
	return path[:i]
}

// fileStem returns the base name without its final extension.
// Dot files such as ".hidden" keep their full name.
func fileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
