// Package health provides Kubernetes-style liveness and readiness probes.
// Registered checks run periodically in the background; the HTTP endpoints
// report the most recent results without running checks inline.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. It returns nil when healthy.
type CheckFunc func(ctx context.Context) error

// check holds a registered probe and its latest result.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]
}

func (c *check) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)
	c.lastErr.Store(&err)
	c.healthy.Store(err == nil)
}

func (c *check) lastError() error {
	if p := c.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Health manages liveness and readiness checks for a service.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates a Health service. It starts not-ready; call SetReady(true)
// after initialization completes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness probe. Liveness failures mean the
// process itself is broken and should be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &check{name: name, timeout: timeout, fn: fn}
	c.healthy.Store(true)
	h.liveness = append(h.liveness, c)
}

// AddReadinessCheck registers a readiness probe. Readiness failures mean the
// service should stop receiving traffic until a dependency recovers.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &check{name: name, timeout: timeout, fn: fn}
	c.healthy.Store(true)
	h.readiness = append(h.readiness, c)
}

// Start launches the background loop running every registered check at the
// given interval, until Stop is called or ctx is cancelled.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	h.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	checks := append(append([]*check(nil), h.liveness...), h.readiness...)
	h.mu.Unlock()

	go func() {
		for _, c := range checks {
			c.run(runCtx)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, c := range checks {
					c.run(runCtx)
				}
			case <-runCtx.Done():
				return
			}
		}
	}()
}

// Stop halts the background check loop.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the overall readiness switch. Readiness requires both the
// switch and every readiness check to be healthy.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// LiveEndpoint is the HTTP handler for liveness probes.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := append([]*check(nil), h.liveness...)
	h.mu.RUnlock()
	h.respond(w, checks, true)
}

// ReadyEndpoint is the HTTP handler for readiness probes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := append([]*check(nil), h.readiness...)
	h.mu.RUnlock()
	h.respond(w, checks, h.ready.Load())
}

func (h *Health) respond(w http.ResponseWriter, checks []*check, ready bool) {
	healthy := ready
	results := make(map[string]string, len(checks))
	for _, c := range checks {
		if c.healthy.Load() {
			results[c.name] = "ok"
			continue
		}
		healthy = false
		if err := c.lastError(); err != nil {
			results[c.name] = err.Error()
		} else {
			results[c.name] = "unhealthy"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"healthy": healthy,
		"checks":  results,
	})
}
