package telemetry

import "go.opentelemetry.io/otel/attribute"

// Standard attribute keys for gateway spans.
const (
	AttrPLCID       = "plc.id"
	AttrPLCAddress  = "plc.address"
	AttrTagsRead    = "plc.tags_read"
	AttrTagsFailed  = "plc.tags_failed"
	AttrFailCount   = "plc.fail_count"
	AttrBatched     = "plc.batched"

	AttrTagID    = "tag.id"
	AttrDataType = "tag.data_type"

	AttrHTTPMethod = "http.method"
	AttrHTTPPath   = "http.path"
	AttrHTTPStatus = "http.status"
)

// PollCycleAttributes returns the attribute set recorded on a poll-cycle
// span for one controller.
func PollCycleAttributes(plcID string, tagsRead, tagsFailed int, batched bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPLCID, plcID),
		attribute.Int(AttrTagsRead, tagsRead),
		attribute.Int(AttrTagsFailed, tagsFailed),
		attribute.Bool(AttrBatched, batched),
	}
}

// ReconnectAttributes returns the attribute set recorded on a reconnect-tick
// span.
func ReconnectAttributes(plcID string, failCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPLCID, plcID),
		attribute.Int(AttrFailCount, failCount),
	}
}

// HTTPAttributes returns the attribute set recorded on a REST request span.
func HTTPAttributes(method, path string, status int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPPath, path),
		attribute.Int(AttrHTTPStatus, status),
	}
}
