// Package store provides SQLite-backed run history for the TCK runner.
//
// Every run is recorded as:
//   - Runs: one row per run, keyed by a UUIDv7 run ID, with final counts
//   - Tests: one row per executed test, ordered by seq within its run
//
// Computed values are stored as RFC 8785 canonical JSON together with their
// domain-separated SHA-256 digest, so two runs can be compared by digest
// without re-parsing.
//
// # Ordering
//
// Runs are listed newest first (started_at DESC, id DESC). Tests are read
// in the order they were recorded (seq ASC).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
