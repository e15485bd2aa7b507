package reconnect

import (
	"sync"
	"time"
)

// ErrorEntry is one bounded recent-errors history entry.
type ErrorEntry struct {
	Timestamp float64 `json:"ts"`
	Error     string  `json:"error"`
}

const recentErrorsCapacity = 10

// PLCHealth is the point-in-time health snapshot for one controller.
type PLCHealth struct {
	OK          bool         `json:"ok"`
	LastSuccess int64        `json:"last_success"`
	LastError   *string      `json:"last_error"`
	FailCount   int          `json:"fail_count"`
	NextAttempt int64        `json:"next_attempt"`
	LastBackoff float64      `json:"last_backoff"`
	RecentErrors []ErrorEntry `json:"recent_errors"`
}

// Opener is the subset of plcdriver.Driver the reconnect state machine
// depends on, kept minimal here to avoid a dependency cycle between
// reconnect and plcdriver.
type Opener interface {
	Open() error
	Connected() bool
}

// StateMachine tracks reconnect/backoff state for a single controller and
// implements the reconnect tick algorithm: gate on next_attempt, prefer an
// already-connected driver, retry Open() on the existing driver, and as a
// last resort construct a fresh driver instance.
type StateMachine struct {
	mu   sync.RWMutex
	Key  string
	IP   string
	Base float64
	Max  float64

	// ForceSyntheticFailure, when non-nil and returning true, makes every
	// ungated tick record a synthetic failure and return the current driver
	// unchanged, whatever its state. Used to exercise the reconnect/backoff
	// path without a real PLC (set from GATEWAY_MOCK_FAIL_RECONNECT).
	ForceSyntheticFailure func() bool

	// OnFailure, when set, is invoked with every recorded failure so the
	// caller can forward it to an external sink (e.g. Loki) without this
	// package depending on one.
	OnFailure func(key, ip string, ts time.Time, message string)

	health PLCHealth
}

// New constructs a StateMachine for controller key/ip with the given
// backoff parameters.
func New(key, ip string, base, max float64) *StateMachine {
	return &StateMachine{
		Key:  key,
		IP:   ip,
		Base: base,
		Max:  max,
	}
}

// Health returns a defensive copy of the current health snapshot.
func (sm *StateMachine) Health() PLCHealth {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	cp := sm.health
	cp.RecentErrors = append([]ErrorEntry(nil), sm.health.RecentErrors...)
	if sm.health.LastError != nil {
		e := *sm.health.LastError
		cp.LastError = &e
	}
	return cp
}

func (sm *StateMachine) recordFailureLocked(now time.Time, message string) {
	entry := ErrorEntry{Timestamp: float64(now.UnixNano()) / 1e9, Error: message}
	sm.health.RecentErrors = append(sm.health.RecentErrors, entry)
	if len(sm.health.RecentErrors) > recentErrorsCapacity {
		sm.health.RecentErrors = sm.health.RecentErrors[len(sm.health.RecentErrors)-recentErrorsCapacity:]
	}
	sm.health.FailCount++
	sm.health.OK = false
	msg := message
	sm.health.LastError = &msg

	delay := ComputeBackoffDelay(sm.health.FailCount, sm.Base, sm.Max)
	sm.health.NextAttempt = now.Add(time.Duration(delay * float64(time.Second))).Unix()
	sm.health.LastBackoff = delay

	if sm.OnFailure != nil {
		sm.OnFailure(sm.Key, sm.IP, now, message)
	}
}

func (sm *StateMachine) recordSuccessLocked(now time.Time) {
	sm.health.OK = true
	sm.health.FailCount = 0
	sm.health.NextAttempt = 0
	sm.health.LastBackoff = 0
	sm.health.LastSuccess = now.Unix()
}

// RecordReadFailure records a genuine read-path fault (a batch or per-tag
// read error returned while the driver itself reports Connected()): it
// appends to recent_errors and increments fail_count, but leaves
// next_attempt and last_backoff unchanged, so only a failed reconnect tick
// arms the backoff gate.
func (sm *StateMachine) RecordReadFailure(now time.Time, message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	nextAttempt, lastBackoff := sm.health.NextAttempt, sm.health.LastBackoff
	sm.recordFailureLocked(now, message)
	sm.health.NextAttempt, sm.health.LastBackoff = nextAttempt, lastBackoff
}

// Tick runs one reconnect attempt and returns the driver to use for
// subsequent reads (which may be the same instance, a freshly opened one, or
// nil when there was no prior driver and no fresh one connected).
//
//  1. Gated: if now is before next_attempt, no attempt is made.
//  2. A forced synthetic failure (ForceSyntheticFailure) is recorded and the
//     current driver is returned unchanged.
//  3. An already-connected driver short-circuits to success.
//  4. Open() is retried on the existing driver.
//  5. A fresh driver instance is constructed via newDriver and opened; if it
//     connects it is returned, otherwise (or if construction fails) a
//     "recreate error" failure is recorded and the prior driver is returned.
func (sm *StateMachine) Tick(now time.Time, driver Opener, newDriver func() (Opener, error)) Opener {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if now.Unix() < sm.health.NextAttempt {
		return driver
	}

	if sm.ForceSyntheticFailure != nil && sm.ForceSyntheticFailure() {
		sm.recordFailureLocked(now, "forced reconnect failure (test)")
		return driver
	}

	if driver != nil && driver.Connected() {
		sm.recordSuccessLocked(now)
		return driver
	}

	if driver != nil {
		_ = driver.Open()
		if driver.Connected() {
			sm.recordSuccessLocked(now)
			return driver
		}
	}

	newdrv, err := newDriver()
	if err != nil {
		sm.recordFailureLocked(now, "recreate error: "+err.Error())
		return driver
	}

	openErr := newdrv.Open()
	if !newdrv.Connected() {
		msg := "not connected after open"
		if openErr != nil {
			msg = openErr.Error()
		}
		sm.recordFailureLocked(now, "recreate error: "+msg)
		return driver
	}
	sm.recordSuccessLocked(now)
	return newdrv
}
