// Package runner orchestrates a conformance run.
//
// A run has two phases. Planning discovers files, resolves the identity of
// every model definition and parses every fixture; any failure here aborts
// before the first request is sent. Execution then issues one evaluation
// request per (test case, result node), judges the response and records the
// verdict in the aggregation context and, optionally, the run history.
//
// Requests are sent one at a time in discovery order so both reports are
// reproducible between runs.
package runner
