package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/tckrunner/internal/aggregate"
	"github.com/roach88/tckrunner/internal/dto"
	"github.com/roach88/tckrunner/internal/model"
	"github.com/roach88/tckrunner/internal/store"
)

// Evaluator sends one evaluation request.
type Evaluator interface {
	Evaluate(ctx context.Context, req *dto.EvaluateRequest) (*dto.ResultDTO, error)
}

// Clock supplies wall-clock time for request timing and run timestamps.
type Clock interface {
	Now() time.Time
}

// RunIDGenerator generates run IDs for the history.
type RunIDGenerator interface {
	Generate() string
}

// History records runs. *store.Store implements it.
type History interface {
	BeginRun(ctx context.Context, run store.Run) error
	RecordTest(ctx context.Context, runID string, rec store.TestRecord) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, summary aggregate.Summary, requestTime time.Duration) error
}

// Reporter receives progress while a run executes.
type Reporter interface {
	FixtureStarted(path string)
	TestFinished(ev TestEvent)
}

// TestEvent describes one finished test.
type TestEvent struct {
	File      string
	TestID    string
	ModelName string
	Invocable string
	Outcome   aggregate.Outcome

	// Remark is "<n> µs" on success and the failure remark otherwise.
	Remark  string
	Elapsed time.Duration

	// Expected and Computed are set for mismatches.
	Expected model.Value
	Computed model.Value
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// UUIDv7Generator generates time-ordered run IDs.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type nopReporter struct{}

func (nopReporter) FixtureStarted(string)  {}
func (nopReporter) TestFinished(TestEvent) {}

// Runner executes plans against an evaluator.
type Runner struct {
	evaluator Evaluator
	clock     Clock
	ids       RunIDGenerator
	history   History
	reporter  Reporter
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock. Defaults to the system clock.
func WithClock(c Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithRunIDGenerator sets the run ID generator. Defaults to UUIDv7.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(r *Runner) { r.ids = g }
}

// WithHistory enables run history.
func WithHistory(h History) Option {
	return func(r *Runner) { r.history = h }
}

// WithReporter sets the progress reporter.
func WithReporter(rep Reporter) Option {
	return func(r *Runner) { r.reporter = rep }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New creates a runner sending requests through ev.
func New(ev Evaluator, opts ...Option) *Runner {
	r := &Runner{
		evaluator: ev,
		clock:     systemClock{},
		ids:       UUIDv7Generator{},
		reporter:  nopReporter{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Settings are the per-run inputs.
type Settings struct {
	Endpoint      string
	StopOnFailure bool
}

// Result is the outcome of Execute.
type Result struct {
	// RunID is set when history is enabled.
	RunID string

	Summary aggregate.Summary

	// RequestTime is the summed duration of all requests.
	RequestTime time.Duration

	// Stopped reports that the run ended early on the first failure.
	Stopped bool
}

// RequestsPerSecond returns the request throughput, or 0 when no time was measured.
func (r *Result) RequestsPerSecond() float64 {
	if r.RequestTime <= 0 {
		return 0
	}
	return float64(r.Summary.Tests.Total) / r.RequestTime.Seconds()
}

// Failed reports whether any test failed.
func (r *Result) Failed() bool {
	return r.Summary.Tests.Failure > 0
}

// Execute runs every test of plan, writing the fine-grained report to report
// and the aggregated report to tckReport. Both reports are flushed even when
// the run stops early or ctx is cancelled.
func (r *Runner) Execute(ctx context.Context, plan *Plan, settings Settings, report, tckReport io.Writer) (*Result, error) {
	agg := aggregate.New(report, tckReport, aggregate.Options{
		StopOnFailure: settings.StopOnFailure,
		Root:          plan.Root,
	})
	result := &Result{}

	if r.history != nil {
		result.RunID = r.ids.Generate()
		err := r.history.BeginRun(ctx, store.Run{
			ID:        result.RunID,
			RootDir:   plan.Root,
			Endpoint:  settings.Endpoint,
			StartedAt: r.clock.Now(),
		})
		if err != nil {
			return nil, err
		}
		r.logger.Info("recording run history", "run_id", result.RunID)
	}

	runErr := r.execute(ctx, plan, agg, result)
	if errors.Is(runErr, aggregate.ErrStopOnFailure) {
		result.Stopped = true
		runErr = nil
	}

	summary, err := agg.Finalize()
	if err != nil {
		return nil, errors.Join(runErr, err)
	}
	result.Summary = summary

	if r.history != nil {
		// The run row is closed even when ctx was cancelled.
		if err := r.history.FinishRun(context.WithoutCancel(ctx), result.RunID, r.clock.Now(), summary, result.RequestTime); err != nil {
			return nil, errors.Join(runErr, err)
		}
	}
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (r *Runner) execute(ctx context.Context, plan *Plan, agg *aggregate.Context, result *Result) error {
	var seq int64
	for _, f := range plan.Fixtures {
		r.reporter.FixtureStarted(f.Path)
		r.logger.Info("executing fixture", "file", f.Path, "model", f.Identity.ModelName)

		for _, tc := range f.Cases.TestCases {
			caseID := ""
			if tc.ID != nil {
				caseID = *tc.ID
			}
			inputs := dto.FromInputNodes(tc.InputNodes)

			for i, node := range tc.ResultNodes {
				if err := ctx.Err(); err != nil {
					return err
				}

				testID := caseID
				if i > 0 {
					testID = caseID + ":" + strconv.Itoa(i)
				}
				invocable := node.Name
				if tc.InvocableName != nil {
					invocable = *tc.InvocableName
				}
				req := &dto.EvaluateRequest{
					Invocable: f.Identity.InvocablePath(invocable),
					Input:     inputs,
				}

				start := r.clock.Now()
				res, evalErr := r.evaluator.Evaluate(ctx, req)
				elapsed := r.clock.Now().Sub(start)
				if err := ctx.Err(); err != nil {
					// An interrupted request was never judged by the service.
					return err
				}
				result.RequestTime += elapsed

				verdict := Judge(node.Expected, res, evalErr)
				remark := verdict.Remark
				if verdict.Outcome == aggregate.Success {
					remark = fmt.Sprintf("%d µs", elapsed.Microseconds())
				}

				r.logger.Debug("test finished",
					"file", f.Path,
					"test_id", testID,
					"invocable", req.Invocable,
					"outcome", verdict.Outcome.String(),
					"remark", remark,
					"elapsed", elapsed)

				ev := TestEvent{
					File:      f.Path,
					TestID:    testID,
					ModelName: f.Identity.ModelName,
					Invocable: invocable,
					Outcome:   verdict.Outcome,
					Remark:    remark,
					Elapsed:   elapsed,
				}
				if verdict.Mismatch {
					ev.Expected = node.Expected
					ev.Computed = verdict.Computed
				}
				r.reporter.TestFinished(ev)

				seq++
				if err := r.recordHistory(ctx, agg, result.RunID, seq, f.Path, caseID, testID, req.Invocable, verdict, elapsed); err != nil {
					return err
				}

				if err := agg.Record(f.Path, caseID, testID, verdict.Outcome, remark); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Runner) recordHistory(ctx context.Context, agg *aggregate.Context, runID string, seq int64, file, caseID, testID, invocable string, v Verdict, elapsed time.Duration) error {
	if r.history == nil {
		return nil
	}
	computed, digest, err := store.EncodeValue(dto.FromValue(v.Computed))
	if err != nil {
		return err
	}
	key := agg.Key(file, caseID)
	return r.history.RecordTest(ctx, runID, store.TestRecord{
		Seq:            seq,
		Dir:            key.Dir,
		Stem:           key.Stem,
		CaseID:         caseID,
		TestID:         testID,
		Invocable:      invocable,
		Outcome:        v.Outcome.String(),
		Remark:         v.Remark,
		Computed:       computed,
		ComputedDigest: digest,
		Elapsed:        elapsed,
	})
}
