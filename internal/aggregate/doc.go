// Package aggregate rolls individual test outcomes up into test-case verdicts
// and renders the two run reports.
//
// A Context moves from collecting to finalized exactly once. While collecting,
// Record appends one line per test to the fine-grained report. Finalize writes
// one line per test case to the aggregated report, sorted by
// (directory, file stem, test-case id).
//
// Both reports are newline-delimited quoted CSV with five columns:
//
//	"directory","file-stem","test-id","SUCCESS|ERROR","remark"
//
// Fields are wrapped in double quotes and never escaped, so report files stay
// byte-compatible with existing TCK tooling.
package aggregate
