package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-wide Prometheus collector container.
type Metrics struct {
	// Poll cycle
	PollCycleDuration *prometheus.HistogramVec
	PollCyclesTotal   *prometheus.CounterVec
	TagsReadTotal     *prometheus.CounterVec

	// Reconnect / backoff, one series per plc_id
	LastBackoff     *prometheus.GaugeVec
	FailCount       *prometheus.GaugeVec
	Connected       *prometheus.GaugeVec
	ReconnectsTotal *prometheus.CounterVec
	RecentErrors    *prometheus.GaugeVec
	RecentErrorLast *prometheus.GaugeVec

	// REST
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// OPC UA bridge
	OPCUANodesTotal    prometheus.Gauge
	OPCUAOperationsTot *prometheus.CounterVec

	// Service identity
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics constructs and registers the gateway's collectors.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		PollCycleDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "poll_cycle_duration_seconds",
				Help:      "Duration of one controller's poll cycle",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{},
		),

		PollCyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "poll_cycles_total",
				Help:      "Total number of completed poll cycles",
			},
			[]string{},
		),

		TagsReadTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tags_read_total",
				Help:      "Total number of tag reads, by plc_id and outcome",
			},
			[]string{"plc_id", "outcome"},
		),

		LastBackoff: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "last_backoff_seconds",
				Help:      "Most recently computed reconnect backoff delay",
			},
			[]string{"plc_id"},
		),

		FailCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fail_count",
				Help:      "Consecutive reconnect failure count",
			},
			[]string{"plc_id"},
		),

		Connected: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "connected",
				Help:      "1 if the controller's driver is currently connected",
			},
			[]string{"plc_id"},
		),

		ReconnectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reconnects_total",
				Help:      "Total number of reconnect attempts, by outcome",
			},
			[]string{"plc_id", "outcome"},
		),

		RecentErrors: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "recent_errors",
				Help:      "Number of entries currently held in the recent-errors queue",
			},
			[]string{"plc_id"},
		),

		RecentErrorLast: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "recent_error_last_timestamp",
				Help:      "Epoch seconds of the most recent classified error",
			},
			[]string{"plc_id", "code"},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of REST requests",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of REST requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),

		OPCUANodesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "opcua_nodes_total",
				Help:      "Current number of OPC UA variable nodes",
			},
		),

		OPCUAOperationsTot: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "opcua_operations_total",
				Help:      "Total number of OPC UA node operations, by kind and outcome",
			},
			[]string{"operation", "outcome"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the process-wide metrics singleton, initializing it with
// defaults if no one has called InitMetrics yet.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("plcgateway", "")
	}
	return defaultMetrics
}

// RecordPollCycle records one completed poll cycle's latency.
func (m *Metrics) RecordPollCycle(duration time.Duration) {
	m.PollCyclesTotal.WithLabelValues().Inc()
	m.PollCycleDuration.WithLabelValues().Observe(duration.Seconds())
}

// RecordTagRead records the outcome of reading a single tag.
func (m *Metrics) RecordTagRead(plcID, outcome string) {
	m.TagsReadTotal.WithLabelValues(plcID, outcome).Inc()
}

// RecordReconnectFailure updates the backoff/fail-count gauges after a
// failed reconnect attempt.
func (m *Metrics) RecordReconnectFailure(plcID string, failCount int, backoff float64) {
	m.FailCount.WithLabelValues(plcID).Set(float64(failCount))
	m.LastBackoff.WithLabelValues(plcID).Set(backoff)
	m.Connected.WithLabelValues(plcID).Set(0)
	m.ReconnectsTotal.WithLabelValues(plcID, "failure").Inc()
}

// RecordReconnectSuccess zeroes the backoff/fail-count gauges after a
// driver reports connected.
func (m *Metrics) RecordReconnectSuccess(plcID string) {
	m.FailCount.WithLabelValues(plcID).Set(0)
	m.LastBackoff.WithLabelValues(plcID).Set(0)
	m.Connected.WithLabelValues(plcID).Set(1)
}

// RecordRecentErrors updates the recent-errors queue-depth gauge and the
// last-seen timestamp for a normalized error code.
func (m *Metrics) RecordRecentErrors(plcID string, depth int, code string, ts int64) {
	m.RecentErrors.WithLabelValues(plcID).Set(float64(depth))
	m.RecentErrorLast.WithLabelValues(plcID, code).Set(float64(ts))
}

// RecordHTTPRequest records one REST request's outcome and latency.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOPCUAOperation records the outcome of a node create/update/delete.
func (m *Metrics) RecordOPCUAOperation(operation, outcome string) {
	m.OPCUAOperationsTot.WithLabelValues(operation, outcome).Inc()
}

// SetOPCUANodeCount sets the current node-count gauge.
func (m *Metrics) SetOPCUANodeCount(n int) {
	m.OPCUANodesTotal.Set(float64(n))
}

// SetServiceInfo publishes the running version/environment as a gauge.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer starts a dedicated HTTP server exposing /metrics and
// /health, returning only when it stops or fails to start.
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
