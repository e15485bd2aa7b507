package reconnect

import "strings"

// ErrorCode is a low-cardinality classification of a reconnect failure
// message, suitable for use as a metric label.
type ErrorCode string

const (
	CodeForcedReconnect ErrorCode = "FORCED_RECONNECT"
	CodeRecreateError   ErrorCode = "RECREATE_ERROR"
	CodeNotConnected    ErrorCode = "NOT_CONNECTED"
	CodeTimeout         ErrorCode = "TIMEOUT"
	CodeSocketError     ErrorCode = "SOCKET_ERROR"
	CodeOther           ErrorCode = "OTHER"
	CodeUnknown         ErrorCode = "UNKNOWN"
)

// NormalizeErrorCode maps a free-form error message to a low-cardinality
// code via case-insensitive substring matching, checked in priority order.
func NormalizeErrorCode(msg string) ErrorCode {
	if msg == "" {
		return CodeUnknown
	}
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "forced reconnect"):
		return CodeForcedReconnect
	case strings.Contains(m, "recreate error"):
		return CodeRecreateError
	case strings.Contains(m, "not connected"):
		return CodeNotConnected
	case strings.Contains(m, "timeout"), strings.Contains(m, "timed out"):
		return CodeTimeout
	case strings.Contains(m, "socket"):
		return CodeSocketError
	default:
		return CodeOther
	}
}
