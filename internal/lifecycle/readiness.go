package lifecycle

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// Readiness is a one-shot, level-triggered signal: it starts not-ready and,
// once Signal is called, stays ready for the remaining lifetime of the
// process. Mirrors the gateway's server_ready contract, which flips true
// only after the first completed poll cycle and never flips back.
type Readiness struct {
	file string

	once  sync.Once
	mu    sync.RWMutex
	ready bool
}

// NewReadiness builds a Readiness that additionally stamps file with the
// current Unix timestamp the first time it becomes ready. An empty file
// disables the marker.
func NewReadiness(file string) *Readiness {
	return &Readiness{file: file}
}

// Signal marks the gateway ready. Safe to call multiple times or
// concurrently; only the first call has any effect.
func (r *Readiness) Signal() {
	r.once.Do(func() {
		r.mu.Lock()
		r.ready = true
		r.mu.Unlock()

		if r.file == "" {
			return
		}
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		_ = os.WriteFile(r.file, []byte(ts), 0o644)
	})
}

// Ready reports whether Signal has been called yet.
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}
