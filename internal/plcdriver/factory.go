package plcdriver

import "time"

// Kind identifies which controller family a driver talks to.
type Kind string

const (
	KindCompactLogix Kind = "compactlogix"
	KindSLC500       Kind = "slc500"
)

// New constructs the appropriate driver for kind and ip. When mock is true
// (GATEWAY_MOCK_PLC=1) a MockDriver is returned regardless of kind, so
// development and CI never dial real hardware.
func New(kind Kind, ip string, socketTimeout time.Duration, mock bool) Driver {
	if mock {
		return NewMockDriver()
	}
	switch kind {
	case KindSLC500:
		return NewSLC500Driver(ip, socketTimeout)
	default:
		return NewCompactLogixDriver(ip, socketTimeout)
	}
}
