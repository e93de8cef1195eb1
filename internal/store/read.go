package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, root_dir, endpoint, started_at, finished_at,
			tests_total, tests_success, tests_failure,
			cases_total, cases_success, cases_failure, request_nanos
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root_dir, endpoint, started_at, finished_at,
			tests_total, tests_success, tests_failure,
			cases_total, cases_success, cases_failure, request_nanos
		FROM runs
		WHERE id = ?
	`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
		nanos      int64
	)
	err := row.Scan(
		&run.ID, &run.RootDir, &run.Endpoint, &startedAt, &finishedAt,
		&run.Summary.Tests.Total, &run.Summary.Tests.Success, &run.Summary.Tests.Failure,
		&run.Summary.Cases.Total, &run.Summary.Cases.Success, &run.Summary.Cases.Failure,
		&nanos,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return Run{}, err
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return Run{}, err
		}
		run.FinishedAt = &t
	}
	run.RequestTime = time.Duration(nanos)
	return run, nil
}

// ReadTests returns the tests of runID ordered by seq.
// Returns an empty slice (not nil) when the run has no tests.
func (s *Store) ReadTests(ctx context.Context, runID string) ([]TestRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, directory, file_stem, test_case_id, test_id, invocable, outcome, remark,
			computed, computed_digest, elapsed_micros
		FROM tests
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query tests: %w", err)
	}
	defer rows.Close()

	records := []TestRecord{}
	for rows.Next() {
		var (
			rec      TestRecord
			computed sql.NullString
			digest   sql.NullString
			micros   int64
		)
		if err := rows.Scan(
			&rec.Seq, &rec.Dir, &rec.Stem, &rec.CaseID, &rec.TestID, &rec.Invocable,
			&rec.Outcome, &rec.Remark, &computed, &digest, &micros,
		); err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		rec.Computed = computed.String
		rec.ComputedDigest = digest.String
		rec.Elapsed = time.Duration(micros) * time.Microsecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tests: %w", err)
	}
	return records, nil
}

// Change is a test whose outcome differs between two runs.
// Base or Head is empty when the test exists in only one run.
type Change struct {
	Dir    string `json:"directory"`
	Stem   string `json:"file_stem"`
	TestID string `json:"test_id"`
	Base   string `json:"base"`
	Head   string `json:"head"`

	// ValueChanged reports that both runs returned a value and the digests differ.
	ValueChanged bool `json:"value_changed"`
}

type testKey struct {
	dir, stem, testID string
}

// DiffRuns compares the tests of two runs keyed by (directory, file stem, test id).
// Changes are sorted by key.
func (s *Store) DiffRuns(ctx context.Context, baseID, headID string) ([]Change, error) {
	for _, id := range []string{baseID, headID} {
		if _, err := s.GetRun(ctx, id); err != nil {
			return nil, err
		}
	}

	base, err := s.ReadTests(ctx, baseID)
	if err != nil {
		return nil, err
	}
	head, err := s.ReadTests(ctx, headID)
	if err != nil {
		return nil, err
	}

	index := func(recs []TestRecord) map[testKey]TestRecord {
		m := make(map[testKey]TestRecord, len(recs))
		for _, r := range recs {
			m[testKey{r.Dir, r.Stem, r.TestID}] = r
		}
		return m
	}
	baseByKey := index(base)
	headByKey := index(head)

	changes := []Change{}
	for key, b := range baseByKey {
		h, ok := headByKey[key]
		if !ok {
			changes = append(changes, Change{Dir: key.dir, Stem: key.stem, TestID: key.testID, Base: b.Outcome})
			continue
		}
		valueChanged := b.ComputedDigest != "" && h.ComputedDigest != "" && b.ComputedDigest != h.ComputedDigest
		if b.Outcome != h.Outcome || valueChanged {
			changes = append(changes, Change{
				Dir: key.dir, Stem: key.stem, TestID: key.testID,
				Base: b.Outcome, Head: h.Outcome, ValueChanged: valueChanged,
			})
		}
	}
	for key, h := range headByKey {
		if _, ok := baseByKey[key]; !ok {
			changes = append(changes, Change{Dir: key.dir, Stem: key.stem, TestID: key.testID, Head: h.Outcome})
		}
	}

	slices.SortFunc(changes, func(a, b Change) int {
		if c := strings.Compare(a.Dir, b.Dir); c != 0 {
			return c
		}
		if c := strings.Compare(a.Stem, b.Stem); c != 0 {
			return c
		}
		return strings.Compare(a.TestID, b.TestID)
	})
	return changes, nil
}
