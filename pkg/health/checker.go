// Package health reports whether the documentation server can serve pages
// and accept live sessions.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout bounds a check registered without its own timeout.
const DefaultTimeout = 2 * time.Second

// ErrEmpty is returned by Count checks that observe zero.
var ErrEmpty = errors.New("nothing loaded")

// Status is the outcome of a check or of the whole report.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Result is the outcome of one check.
type Result struct {
	Status     Status `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Report is the outcome of every check.
type Report struct {
	Status    Status            `json:"status"`
	Checks    map[string]Result `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
}

// Check is one named probe. A failing critical check makes the report
// unhealthy; any other failure only degrades it.
type Check struct {
	Name     string
	Fn       func(ctx context.Context) error
	Timeout  time.Duration
	Critical bool
}

// Checker runs registered checks concurrently.
type Checker struct {
	version string

	mu     sync.RWMutex
	checks []Check
}

// NewChecker creates a checker reporting version.
func NewChecker(version string) *Checker {
	return &Checker{version: version}
}

// Register adds a check.
func (c *Checker) Register(check Check) {
	if check.Timeout <= 0 {
		check.Timeout = DefaultTimeout
	}
	c.mu.Lock()
	c.checks = append(c.checks, check)
	c.mu.Unlock()
}

// Run executes every check and aggregates the results.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make([]Check, len(c.checks))
	copy(checks, c.checks)
	c.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]Result, len(checks)),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}

	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = run(ctx, check)
		}()
	}
	wg.Wait()

	for i, check := range checks {
		r := results[i]
		report.Checks[check.Name] = r
		if r.Status == StatusHealthy {
			continue
		}
		if check.Critical {
			report.Status = StatusUnhealthy
		} else if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	return report
}

func run(ctx context.Context, check Check) Result {
	ctx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	start := time.Now()
	err := check.Fn(ctx)
	r := Result{Status: StatusHealthy, DurationMS: time.Since(start).Milliseconds()}
	if err != nil {
		r.Status = StatusUnhealthy
		r.Error = err.Error()
	}
	return r
}

// LivenessHandler answers 200 while the process is up.
func (c *Checker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "alive", "version": c.version})
	})
}

// ReadinessHandler answers 503 while any critical check fails.
func (c *Checker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		code := http.StatusOK
		if report.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report)
	})
}

// Handler always answers 200 with the full report.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.Run(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Count fails with ErrEmpty while n reports zero.
func Count(n func() int) func(context.Context) error {
	return func(context.Context) error {
		if n() == 0 {
			return ErrEmpty
		}
		return nil
	}
}

// Accepting fails once closed reports true.
func Accepting(closed func() bool) func(context.Context) error {
	return func(context.Context) error {
		if closed() {
			return errors.New("shutting down")
		}
		return nil
	}
}
