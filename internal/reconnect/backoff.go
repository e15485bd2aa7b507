// Package reconnect implements the gateway's per-controller reconnect state
// machine: exponential backoff gating, low-cardinality error classification,
// and a bounded recent-errors history exposed on the health endpoint.
package reconnect

// Default backoff parameters (seconds), overridable per StateMachine.
const (
	DefaultBase = 1.0
	DefaultMax  = 60.0
)

// ComputeBackoffDelay returns the exponential backoff delay for the given
// consecutive-failure count: 0 when failCount <= 0, otherwise
// min(base*2^(failCount-1), max).
func ComputeBackoffDelay(failCount int, base, max float64) float64 {
	if failCount <= 0 {
		return 0.0
	}
	exp := failCount - 1
	if exp < 0 {
		exp = 0
	}
	delay := base
	for i := 0; i < exp; i++ {
		delay *= 2
	}
	if delay > max {
		return max
	}
	return delay
}
