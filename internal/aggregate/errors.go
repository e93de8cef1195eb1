package aggregate

import "errors"

// ErrFinalized is returned by Record and Finalize once the context is finalized.
var ErrFinalized = errors.New("aggregation context already finalized")

// ErrStopOnFailure is returned by Record when a failure was recorded and the
// context is configured to stop on the first failure. The failure itself is
// recorded; the caller is expected to Finalize and stop.
var ErrStopOnFailure = errors.New("stopped on first failure")
