// Package lokipush best-effort-forwards recent PLC error messages to a Loki
// push endpoint, so they show up alongside the gateway's structured logs in
// a shared dashboard.
package lokipush

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"plcgateway/internal/logger"
)

// Pusher posts recent_errors entries to a Loki /loki/api/v1/push endpoint.
// A zero-valued Pusher (no URL) is a safe no-op.
type Pusher struct {
	url    string
	client *http.Client
}

// New builds a Pusher targeting url. An empty url disables pushing.
func New(url string) *Pusher {
	return &Pusher{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// stream is one Loki log stream: a label set plus [timestamp_ns, line] pairs.
type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string        `json:"values"`
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

// PushError forwards a single PLC error message, labeled by controller ID
// and address, timestamped at ts. Failures are logged and otherwise
// swallowed: a down or misconfigured Loki must never affect polling.
func (p *Pusher) PushError(ctx context.Context, plcID, ip string, ts time.Time, message string) {
	if p == nil || p.url == "" {
		return
	}

	body := pushRequest{
		Streams: []stream{
			{
				Stream: map[string]string{"plc": plcID, "ip": ip},
				Values: [][2]string{{strconv.FormatInt(ts.UnixNano(), 10), message}},
			},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		logger.Warn("lokipush: failed to marshal payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(data))
	if err != nil {
		logger.Warn("lokipush: failed to build request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		logger.Warn("lokipush: failed to push logs", "url", p.url, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Warn("lokipush: push rejected", "url", p.url, "status", resp.StatusCode)
	}
}
