package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() #%d failed: %v", i+1, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"runs", "tests"} {
		if len(getTableColumns(t, s.db, table)) == 0 {
			t.Errorf("table %q missing after repeated Open()", table)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name, want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.want); err != nil {
			t.Error(err)
		}
	}
}

func TestSchema_Tables(t *testing.T) {
	s := createTestStore(t)

	want := map[string][]string{
		"runs": {"id", "root_dir", "endpoint", "started_at", "finished_at",
			"tests_total", "tests_success", "tests_failure",
			"cases_total", "cases_success", "cases_failure", "request_nanos"},
		"tests": {"run_id", "seq", "directory", "file_stem", "test_case_id", "test_id",
			"invocable", "outcome", "remark", "computed", "computed_digest", "elapsed_micros"},
	}
	for table, columns := range want {
		got := getTableColumns(t, s.db, table)
		for _, col := range columns {
			if !slices.Contains(got, col) {
				t.Errorf("%s table missing column %q", table, col)
			}
		}
	}
}

func TestSchema_Indexes(t *testing.T) {
	s := createTestStore(t)

	if !slices.Contains(getTableIndexes(t, s.db, "tests"), "idx_tests_key") {
		t.Error("tests table missing index idx_tests_key")
	}
	if !slices.Contains(getTableIndexes(t, s.db, "runs"), "idx_runs_started") {
		t.Error("runs table missing index idx_runs_started")
	}
}

func TestConstraint_OutcomeCheck(t *testing.T) {
	s := createTestStore(t)
	beginTestRun(t, s, "run-1", 0)

	_, err := s.db.Exec(`
		INSERT INTO tests (run_id, seq, directory, file_stem, test_case_id, test_id, invocable, outcome, remark, elapsed_micros)
		VALUES ('run-1', 1, 'd', 's', '001', '001', 'i', 'MAYBE', '', 0)
	`)
	if err == nil {
		t.Error("expected CHECK constraint violation for outcome")
	}
}

func TestConstraint_ForeignKey(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO tests (run_id, seq, directory, file_stem, test_case_id, test_id, invocable, outcome, remark, elapsed_micros)
		VALUES ('missing', 1, 'd', 's', '001', '001', 'i', 'SUCCESS', '', 0)
	`)
	if err == nil {
		t.Error("expected foreign key violation for unknown run")
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}
