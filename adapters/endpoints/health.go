// Package endpoints provides the built-in management endpoints. Each one
// produces a plain payload; links are added by the HTTP layer.
package endpoints

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/pkg/hal"
	"github.com/artpar/actuate/ports"
)

// Health statuses.
const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Checker checks one dependency.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f CheckerFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

// Health reports UP when every registered check passes. A failing check
// turns the response into a 503.
type Health struct {
	mu     sync.RWMutex
	names  []string
	checks map[string]Checker
}

// NewHealth creates a health endpoint with no checks.
func NewHealth() *Health {
	return &Health{checks: make(map[string]Checker)}
}

// AddCheck registers a named check. Re-adding a name replaces the check.
func (h *Health) AddCheck(name string, c Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.checks[name]; !ok {
		h.names = append(h.names, name)
	}
	h.checks[name] = c
}

// Invoke runs the checks in registration order.
func (h *Health) Invoke(ctx context.Context, _ ports.Request) (payload.Value, error) {
	h.mu.RLock()
	names := append([]string(nil), h.names...)
	checks := make([]Checker, len(names))
	for i, n := range names {
		checks[i] = h.checks[n]
	}
	h.mu.RUnlock()

	details := payload.NewMap()
	var failed []string
	for i, name := range names {
		if err := checks[i].HealthCheck(ctx); err != nil {
			failed = append(failed, name)
			details.Put(name, map[string]string{"status": StatusDown, "error": err.Error()})
			continue
		}
		details.Put(name, map[string]string{"status": StatusUp})
	}

	if len(failed) > 0 {
		return payload.Value{}, &hal.StatusError{
			Status: http.StatusServiceUnavailable,
			Code:   "down",
			Err:    fmt.Errorf("health checks failed: %s", strings.Join(failed, ", ")),
		}
	}

	out := payload.NewMap().Put("status", StatusUp)
	if details.Len() > 0 {
		out.Put("checks", details)
	}
	return payload.OfMapping(out), nil
}

var _ ports.Endpoint = (*Health)(nil)
