package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/tckrunner/internal/aggregate"
)

// Run is one recorded run.
type Run struct {
	ID          string
	RootDir     string
	Endpoint    string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Summary     aggregate.Summary
	RequestTime time.Duration
}

// TestRecord is one executed test of a run.
type TestRecord struct {
	Seq       int64
	Dir       string
	Stem      string
	CaseID    string
	TestID    string
	Invocable string
	Outcome   string
	Remark    string

	// Computed is the canonical JSON of the computed value, empty when the
	// service returned none.
	Computed       string
	ComputedDigest string

	Elapsed time.Duration
}

// BeginRun inserts a run row. The run is open until FinishRun.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, root_dir, endpoint, started_at)
		VALUES (?, ?, ?, ?)
	`,
		run.ID,
		run.RootDir,
		run.Endpoint,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordTest inserts one test record of runID.
func (s *Store) RecordTest(ctx context.Context, runID string, rec TestRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tests
		(run_id, seq, directory, file_stem, test_case_id, test_id, invocable, outcome, remark, computed, computed_digest, elapsed_micros)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		rec.Seq,
		rec.Dir,
		rec.Stem,
		rec.CaseID,
		rec.TestID,
		rec.Invocable,
		rec.Outcome,
		rec.Remark,
		nullString(rec.Computed),
		nullString(rec.ComputedDigest),
		rec.Elapsed.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("record test %s: %w", rec.TestID, err)
	}
	return nil
}

// FinishRun stores the final counts of runID.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time, summary aggregate.Summary, requestTime time.Duration) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET
			finished_at = ?,
			tests_total = ?, tests_success = ?, tests_failure = ?,
			cases_total = ?, cases_success = ?, cases_failure = ?,
			request_nanos = ?
		WHERE id = ?
	`,
		formatTime(finishedAt),
		summary.Tests.Total, summary.Tests.Success, summary.Tests.Failure,
		summary.Cases.Total, summary.Cases.Success, summary.Cases.Failure,
		requestTime.Nanoseconds(),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
