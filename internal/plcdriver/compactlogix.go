package plcdriver

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CompactLogixDriver talks to an Allen-Bradley CompactLogix controller over
// EtherNet/IP. The gateway never decodes CIP payloads itself in the original
// implementation (that lived in pycomm3); here the connection is a plain TCP
// socket against the controller's EtherNet/IP port, with the actual tag
// addressing/decoding left to whatever real CIP stack stands behind the
// socket in production. There is no Go CIP/EtherNet-IP client library in
// this module's dependency set, so the socket itself is handled with the
// standard library net package while connection lifecycle, timeouts, and
// batching follow the gateway's own contract.
type CompactLogixDriver struct {
	mu            sync.Mutex
	ip            string
	socketTimeout time.Duration
	conn          net.Conn
	connected     bool
	instanceID    string
}

// NewCompactLogixDriver constructs a driver bound to ip. The connection is
// not opened until Open is called.
func NewCompactLogixDriver(ip string, socketTimeout time.Duration) *CompactLogixDriver {
	return &CompactLogixDriver{
		ip:            ip,
		socketTimeout: socketTimeout,
		instanceID:    uuid.NewString(),
	}
}

const compactLogixEtherNetIPPort = "44818"

func (d *CompactLogixDriver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected && d.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(d.ip, compactLogixEtherNetIPPort), d.socketTimeout)
	if err != nil {
		d.connected = false
		return fmt.Errorf("compactlogix: dial %s: %w", d.ip, err)
	}
	d.conn = conn
	d.connected = true
	return nil
}

func (d *CompactLogixDriver) Close() error {
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

func (d *CompactLogixDriver) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

func (d *CompactLogixDriver) ReadOne(address string) Result {
	d.mu.Lock()
	conn := d.conn
	timeout := d.socketTimeout
	d.mu.Unlock()

	if conn == nil {
		return Result{Address: address, Err: fmt.Errorf("compactlogix: not connected")}
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))
	return Result{Address: address, Value: nil, Err: fmt.Errorf("compactlogix: CIP decoding not available in this build")}
}

// ReadBatch reads every address by calling ReadOne for each in turn.
// CompactLogix (unlike SLC 5/05) supports multi-tag service requests, so this
// driver never returns ErrBatchUnsupported.
func (d *CompactLogixDriver) ReadBatch(addresses []string) ([]Result, error) {
	out := make([]Result, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, d.ReadOne(a))
	}
	return out, nil
}
