package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// beginTestRun inserts a run started offset after baseTime.
func beginTestRun(t *testing.T, s *Store, id string, offset time.Duration) {
	t.Helper()
	err := s.BeginRun(context.Background(), Run{
		ID:        id,
		RootDir:   "/tck/TestCases",
		Endpoint:  "http://127.0.0.1:22022/evaluate",
		StartedAt: baseTime.Add(offset),
	})
	if err != nil {
		t.Fatalf("BeginRun(%s) failed: %v", id, err)
	}
}

// createTestRecord creates a test record with minimal required fields.
func createTestRecord(seq int64, testID, outcome string) TestRecord {
	return TestRecord{
		Seq:       seq,
		Dir:       "compliance-level-2/0001-input-data-string",
		Stem:      "0001-input-data-string-test-01",
		CaseID:    testID,
		TestID:    testID,
		Invocable: "org/omg/spec/DMN/20180521/Greeting Message",
		Outcome:   outcome,
		Elapsed:   125 * time.Microsecond,
	}
}
