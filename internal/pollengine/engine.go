// Package pollengine drives the per-controller read loop: gate on the
// reconnect state machine, batch-read enabled tags, publish results into the
// tag store and the OPC UA bridge, and record health/metrics.
package pollengine

import (
	"context"
	"sync"
	"time"

	"plcgateway/internal/lifecycle"
	"plcgateway/internal/metrics"
	"plcgateway/internal/plcdriver"
	"plcgateway/internal/reconnect"
	"plcgateway/internal/tagstore"
	"plcgateway/internal/telemetry"
)

// VarWriter is the subset of the OPC UA bridge the poll engine depends on,
// kept minimal to avoid a dependency cycle.
type VarWriter interface {
	UpdateValue(tagID string, value any)
}

// Controller bundles everything the poll engine needs for one PLC: its
// identity, its reconnect state machine, and a factory for fresh driver
// instances (mock or real, chosen once at startup).
type Controller struct {
	PLCID      string
	IP         string
	NewDriver  func() (reconnect.Opener, error)
	StateMachine *reconnect.StateMachine

	driver plcdriver.Driver
	mu     sync.Mutex
}

// Driver returns the controller's current driver instance, or nil if none
// has been opened yet. Safe for concurrent use, e.g. from a shutdown
// sequence running alongside the poll loop.
func (c *Controller) Driver() plcdriver.Driver {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.driver
}

// Engine runs one poll loop per controller against a shared tag store and
// OPC UA bridge.
type Engine struct {
	Store      *tagstore.Store
	Bridge     VarWriter
	PollPeriod time.Duration
	Readiness  *lifecycle.Readiness
}

// New constructs an Engine. readiness is signalled the first time any
// controller completes a read cycle over at least one enabled tag, whether
// or not the individual tag reads in that cycle succeeded.
func New(store *tagstore.Store, bridge VarWriter, pollPeriod time.Duration, readiness *lifecycle.Readiness) *Engine {
	if readiness == nil {
		readiness = lifecycle.NewReadiness("")
	}
	return &Engine{
		Store:      store,
		Bridge:     bridge,
		PollPeriod: pollPeriod,
		Readiness:  readiness,
	}
}

// Run drives ctrl's poll loop until ctx is cancelled. Intended to be
// launched once per controller in its own goroutine.
func (e *Engine) Run(ctx context.Context, ctrl *Controller) {
	ticker := time.NewTicker(e.PollPeriod)
	defer ticker.Stop()

	for {
		e.tick(ctx, ctrl)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (e *Engine) tick(ctx context.Context, ctrl *Controller) {
	start := time.Now()

	ctx, span := telemetry.StartSpan(ctx, "poll_cycle")
	defer span.End()

	ctrl.mu.Lock()
	var opener reconnect.Opener
	if ctrl.driver != nil {
		opener = ctrl.driver
	}
	next := ctrl.StateMachine.Tick(start, opener, ctrl.NewDriver)
	if d, ok := next.(plcdriver.Driver); ok {
		ctrl.driver = d
	} else if next == nil {
		ctrl.driver = nil
	}
	driver := ctrl.driver
	ctrl.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	if driver == nil || !driver.Connected() {
		failCount := ctrl.StateMachine.Health().FailCount
		metrics.Get().RecordReconnectFailure(ctrl.PLCID, failCount, ctrl.StateMachine.Health().LastBackoff)
		span.SetAttributes(telemetry.ReconnectAttributes(ctrl.PLCID, failCount)...)
		return
	}

	addresses, tagIDs := e.enabledAddresses(ctrl.PLCID)
	if len(addresses) == 0 {
		return
	}

	batched := true
	results, err := driver.ReadBatch(addresses)
	if err == plcdriver.ErrBatchUnsupported {
		batched = false
		results = make([]plcdriver.Result, 0, len(addresses))
		for _, addr := range addresses {
			results = append(results, driver.ReadOne(addr))
		}
	} else if err != nil {
		metrics.Get().RecordTagRead(ctrl.PLCID, "error")
		telemetry.SetError(ctx, err)
		ctrl.StateMachine.RecordReadFailure(start, err.Error())
		return
	}

	anySuccess := false
	tagsRead, tagsFailed := 0, 0
	for i, res := range results {
		tagID := tagIDs[i]
		if res.Err != nil {
			metrics.Get().RecordTagRead(ctrl.PLCID, "error")
			ctrl.StateMachine.RecordReadFailure(start, tagID+": "+res.Err.Error())
			tagsFailed++
			continue
		}
		e.Store.SetValue(tagID, res.Value)
		anySuccess = true
		tagsRead++
		metrics.Get().RecordTagRead(ctrl.PLCID, "ok")

		if scaled, ok := e.Store.GetValue(tagID); ok && e.Bridge != nil {
			e.Bridge.UpdateValue(tagID, scaled)
		}
	}

	span.SetAttributes(telemetry.PollCycleAttributes(ctrl.PLCID, tagsRead, tagsFailed, batched)...)

	if anySuccess {
		metrics.Get().RecordReconnectSuccess(ctrl.PLCID)
	}

	metrics.Get().RecordPollCycle(time.Since(start))
	e.markReady()
}

func (e *Engine) enabledAddresses(plcID string) ([]string, []string) {
	tags := e.Store.ListTags()
	addresses := make([]string, 0, len(tags))
	tagIDs := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.PLCID != plcID || !t.Enabled || t.Address == "" {
			continue
		}
		addresses = append(addresses, t.Address)
		tagIDs = append(tagIDs, t.TagID)
	}
	return addresses, tagIDs
}

func (e *Engine) markReady() {
	e.Readiness.Signal()
}
