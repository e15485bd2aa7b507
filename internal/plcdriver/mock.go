package plcdriver

import (
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MockDriver simulates a controller connection for GATEWAY_MOCK_PLC=1
// development mode and for tests: Open always succeeds unless ForceFailOpen
// is set, and reads synthesize plausible values from the address's data
// type hint rather than talking to real hardware.
type MockDriver struct {
	mu            sync.Mutex
	instanceID    string
	connected     bool
	ForceFailOpen bool
	rng           *rand.Rand
}

// NewMockDriver constructs a disconnected mock driver with a fresh instance
// id, so tests can tell a reconnect produced a new driver instance.
func NewMockDriver() *MockDriver {
	return &MockDriver{
		instanceID: uuid.NewString(),
		rng:        rand.New(rand.NewSource(rand.Int63())),
	}
}

func (d *MockDriver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ForceFailOpen {
		d.connected = false
		return errNotConnected
	}
	d.connected = true
	return nil
}

func (d *MockDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	return nil
}

func (d *MockDriver) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

func (d *MockDriver) InstanceID() string {
	return d.instanceID
}

func (d *MockDriver) ReadOne(address string) Result {
	d.mu.Lock()
	connected := d.connected
	d.mu.Unlock()
	if !connected {
		return Result{Address: address, Err: errNotConnected}
	}
	return Result{Address: address, Value: d.synthesize(address)}
}

// ReadBatch always succeeds for the mock driver, mirroring CompactLogix's
// real batch-read support.
func (d *MockDriver) ReadBatch(addresses []string) ([]Result, error) {
	out := make([]Result, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, d.ReadOne(a))
	}
	return out, nil
}

// synthesize produces a plausible value for an address using its textual
// shape as a hint: an address containing "bool" or starting with "B3"/"BOOL"
// style CompactLogix/SLC naming yields a boolean, "cnt"/"counter" yields a
// slowly incrementing integer, everything else a bounded sine-wave float —
// enough to exercise scaling and OPC UA type mapping end to end without
// hardware.
func (d *MockDriver) synthesize(address string) any {
	lower := strings.ToLower(address)
	switch {
	case strings.Contains(lower, "bool") || strings.HasPrefix(lower, "b3"):
		return d.rng.Float64() > 0.5
	case strings.Contains(lower, "cnt") || strings.Contains(lower, "counter"):
		return int64(d.rng.Intn(1000))
	default:
		return math.Round((50+25*math.Sin(d.rng.Float64()*math.Pi))*100) / 100
	}
}

var errNotConnected = mockError("not connected")

type mockError string

func (e mockError) Error() string { return string(e) }
