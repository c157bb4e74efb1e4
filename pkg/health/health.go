package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// CheckFunc probes a single dependency.
type CheckFunc func(ctx context.Context) error

// Checker aggregates named health checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates an empty health checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc)}
}

// Register adds a named check.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

type componentResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

type response struct {
	Status     Status                     `json:"status"`
	Components map[string]componentResult `json:"components,omitempty"`
}

// LiveHandler reports process liveness. It never checks dependencies.
func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{Status: StatusUp})
	}
}

// ReadyHandler runs all registered checks and reports 503 if any fail.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		c.mu.RLock()
		checks := make(map[string]CheckFunc, len(c.checks))
		for name, check := range c.checks {
			checks[name] = check
		}
		c.mu.RUnlock()

		resp := response{
			Status:     StatusUp,
			Components: make(map[string]componentResult, len(checks)),
		}

		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Status = StatusDown
				resp.Components[name] = componentResult{Status: StatusDown, Error: err.Error()}
				continue
			}
			resp.Components[name] = componentResult{Status: StatusUp}
		}

		status := http.StatusOK
		if resp.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
