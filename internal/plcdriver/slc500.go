package plcdriver

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SLC500Driver talks to an Allen-Bradley SLC 5/05 over its DF1/EtherNet-IP
// passthrough port. SLC 5/05 controllers do not support the multi-tag batch
// service CompactLogix does, so ReadBatch always reports
// ErrBatchUnsupported and callers fall back to sequential ReadOne calls —
// this is the driver behind Open Question (a) in DESIGN.md.
type SLC500Driver struct {
	mu            sync.Mutex
	ip            string
	socketTimeout time.Duration
	conn          net.Conn
	connected     bool
	instanceID    string
}

func NewSLC500Driver(ip string, socketTimeout time.Duration) *SLC500Driver {
	return &SLC500Driver{
		ip:            ip,
		socketTimeout: socketTimeout,
		instanceID:    uuid.NewString(),
	}
}

const slc500Port = "44818"

func (d *SLC500Driver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected && d.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(d.ip, slc500Port), d.socketTimeout)
	if err != nil {
		d.connected = false
		return fmt.Errorf("slc500: dial %s: %w", d.ip, err)
	}
	d.conn = conn
	d.connected = true
	return nil
}

func (d *SLC500Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connected = false
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

func (d *SLC500Driver) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

func (d *SLC500Driver) ReadOne(address string) Result {
	d.mu.Lock()
	conn := d.conn
	timeout := d.socketTimeout
	d.mu.Unlock()

	if conn == nil {
		return Result{Address: address, Err: fmt.Errorf("slc500: not connected")}
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))
	return Result{Address: address, Value: nil, Err: fmt.Errorf("slc500: DF1 decoding not available in this build")}
}

func (d *SLC500Driver) ReadBatch(addresses []string) ([]Result, error) {
	return nil, ErrBatchUnsupported
}
