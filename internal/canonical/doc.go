// Package canonical produces RFC 8785 canonical JSON and content digests of
// wire values.
//
// Canonical output is used wherever two runs must render the same value to
// the same bytes: mismatch diagnostics and the run history digest. It is
// never used to decide equality of results.
package canonical
