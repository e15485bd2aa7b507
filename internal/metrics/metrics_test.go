package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func freshRegistry() {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
}

func TestInitMetrics(t *testing.T) {
	freshRegistry()

	m := InitMetrics("test", "gateway")
	if m == nil {
		t.Fatal("InitMetrics returned nil")
	}
	if m.PollCycleDuration == nil {
		t.Error("PollCycleDuration should not be nil")
	}
	if m.TagsReadTotal == nil {
		t.Error("TagsReadTotal should not be nil")
	}
	if m.OPCUANodesTotal == nil {
		t.Error("OPCUANodesTotal should not be nil")
	}
}

func TestGet(t *testing.T) {
	freshRegistry()
	defaultMetrics = nil

	m := Get()
	if m == nil {
		t.Fatal("Get() should not return nil")
	}

	m2 := Get()
	if m2 != m {
		t.Error("Get() should return the same instance")
	}
}

func TestRecordPollCycle(t *testing.T) {
	freshRegistry()
	m := InitMetrics("test", "poll")

	m.RecordPollCycle(50 * time.Millisecond)
}

func TestRecordTagRead(t *testing.T) {
	freshRegistry()
	m := InitMetrics("test", "tags")

	m.RecordTagRead("compactlogix", "ok")
	m.RecordTagRead("slc500", "error")
}

func TestRecordReconnectFailureAndSuccess(t *testing.T) {
	freshRegistry()
	m := InitMetrics("test", "reconnect")

	m.RecordReconnectFailure("compactlogix", 3, 4.5)
	if got := testutil.ToFloat64(m.FailCount.WithLabelValues("compactlogix")); got != 3 {
		t.Errorf("FailCount = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Connected.WithLabelValues("compactlogix")); got != 0 {
		t.Errorf("Connected = %v, want 0 after failure", got)
	}

	m.RecordReconnectSuccess("compactlogix")
	if got := testutil.ToFloat64(m.FailCount.WithLabelValues("compactlogix")); got != 0 {
		t.Errorf("FailCount = %v, want 0 after success", got)
	}
	if got := testutil.ToFloat64(m.Connected.WithLabelValues("compactlogix")); got != 1 {
		t.Errorf("Connected = %v, want 1 after success", got)
	}
}

func TestRecordRecentErrors(t *testing.T) {
	freshRegistry()
	m := InitMetrics("test", "errors")

	m.RecordRecentErrors("slc500", 2, "TIMEOUT", 1700000000)
}

func TestRecordHTTPRequest(t *testing.T) {
	freshRegistry()
	m := InitMetrics("test", "http")

	m.RecordHTTPRequest("GET", "/api/v1/tags", "200", 10*time.Millisecond)
}

func TestRecordOPCUAOperationAndNodeCount(t *testing.T) {
	freshRegistry()
	m := InitMetrics("test", "opcua")

	m.RecordOPCUAOperation("create", "ok")
	m.SetOPCUANodeCount(12)
}

func TestSetServiceInfo(t *testing.T) {
	freshRegistry()
	m := InitMetrics("test", "info")

	m.SetServiceInfo("1.0.0", "production")
}

func TestHandler(t *testing.T) {
	handler := Handler()
	if handler == nil {
		t.Error("Handler() should not return nil")
	}
}
