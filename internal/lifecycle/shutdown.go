// Package lifecycle implements the gateway's startup readiness signal and
// its cooperative, budgeted shutdown sequence.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"plcgateway/internal/logger"
	"plcgateway/internal/plcdriver"
)

// Stopper is the subset of the REST server's contract this package depends
// on, kept minimal to avoid an import cycle with internal/restapi.
type Stopper interface {
	Stop(ctx context.Context) error
}

// BridgeRunner is the subset of the OPC UA bridge's contract this package
// depends on: it runs until its context is cancelled.
type BridgeRunner interface {
	Run(ctx context.Context)
}

// RunBridge launches runner in its own goroutine and returns a channel that
// closes once Run returns, suitable for Shutdown.BridgeDone.
func RunBridge(ctx context.Context, runner BridgeRunner) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()
	return done
}

// Shutdown coordinates the gateway's five-stage cooperative shutdown,
// budgeted by an overall timeout: signal worker goroutines, wait for the
// OPC UA bridge to drain, stop the OPC UA server runtime, close PLC driver
// connections, then stop the REST server.
type Shutdown struct {
	// Timeout bounds stage 2 (waiting for OPC UA tasks to drain) and stage
	// 5 (REST server graceful stop). Defaults to 5s if zero.
	Timeout time.Duration

	// CancelWorkers signals every cooperative worker goroutine (poll
	// loops, the bridge's Run loop) to exit between blocking calls.
	CancelWorkers context.CancelFunc

	// BridgeDone is closed once the bridge's Run goroutine has returned.
	// nil if there is no bridge to wait for.
	BridgeDone <-chan struct{}

	// Drivers returns every currently open PLC driver, closed in stage 4.
	// Errors from Close are logged and otherwise ignored: shutdown must
	// proceed regardless.
	Drivers func() []plcdriver.Driver

	// REST is the HTTP server stopped last, in stage 5.
	REST Stopper

	once sync.Once
}

func (s *Shutdown) timeout() time.Duration {
	if s.Timeout <= 0 {
		return 5 * time.Second
	}
	return s.Timeout
}

// Run executes all five shutdown stages. Safe to call more than once;
// only the first call has any effect, matching the gateway's tolerance for
// /hmi/stop racing a signal-driven shutdown.
func (s *Shutdown) Run(ctx context.Context) {
	s.once.Do(func() {
		s.run(ctx)
	})
}

func (s *Shutdown) run(ctx context.Context) {
	budget := s.timeout()

	// Stage 1: signal cooperative shutdown to worker goroutines.
	if s.CancelWorkers != nil {
		s.CancelWorkers()
	}

	// Stage 2: wait for OPC UA tasks (the bridge's Run loop) to drain,
	// bounded by the shutdown budget. A laggard is left to exit on its own
	// once the process tears down; it no longer holds any lock we need.
	if s.BridgeDone != nil {
		select {
		case <-s.BridgeDone:
		case <-time.After(budget):
			logger.Error("lifecycle: opc ua bridge did not stop within shutdown timeout", "timeout", budget)
		}
	}

	// Stage 3: stopping the OPC UA server runtime is folded into stage 2
	// here, since this bridge's "server" is the same Run loop cancelled
	// above rather than a separate process to stop.

	// Stage 4: close PLC drivers. Every exit path must reach this stage.
	if s.Drivers != nil {
		for _, d := range s.Drivers() {
			if d == nil {
				continue
			}
			if err := d.Close(); err != nil {
				logger.Error("lifecycle: failed to close plc driver", "error", err)
			}
		}
	}

	// Stage 5: stop the REST server within the same budget.
	if s.REST != nil {
		stopCtx, cancel := context.WithTimeout(ctx, budget)
		defer cancel()
		if err := s.REST.Stop(stopCtx); err != nil {
			logger.Error("lifecycle: rest server shutdown error", "error", err)
		}
	}
}
