package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_AllPass(t *testing.T) {
	c := NewChecker("1.2.3")
	c.Register(Check{Name: "pages", Fn: Count(func() int { return 2 }), Critical: true})
	c.Register(Check{Name: "live", Fn: Accepting(func() bool { return false })})

	report := c.Run(context.Background())
	if report.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("expected 2 results, got %d", len(report.Checks))
	}
	if report.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", report.Version)
	}
}

func TestChecker_NonCriticalFailureDegrades(t *testing.T) {
	c := NewChecker("")
	c.Register(Check{Name: "pages", Fn: Count(func() int { return 1 }), Critical: true})
	c.Register(Check{Name: "live", Fn: Accepting(func() bool { return true })})

	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", report.Status)
	}
	if report.Checks["live"].Error == "" {
		t.Error("failing check should carry its error")
	}
}

func TestChecker_CriticalFailure(t *testing.T) {
	c := NewChecker("")
	c.Register(Check{Name: "pages", Fn: Count(func() int { return 0 }), Critical: true})

	report := c.Run(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", report.Status)
	}
	if report.Checks["pages"].Error != ErrEmpty.Error() {
		t.Errorf("unexpected error %q", report.Checks["pages"].Error)
	}
}

func TestChecker_Timeout(t *testing.T) {
	c := NewChecker("")
	c.Register(Check{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	report := c.Run(context.Background())
	if got := report.Checks["slow"]; got.Status != StatusUnhealthy {
		t.Errorf("expected timed out check to fail, got %+v", got)
	}
}

func TestHandlers(t *testing.T) {
	c := NewChecker("v")
	c.Register(Check{Name: "db", Fn: func(context.Context) error { return errors.New("down") }, Critical: true})

	tests := []struct {
		name    string
		handler http.Handler
		code    int
	}{
		{"liveness", c.LivenessHandler(), http.StatusOK},
		{"readiness", c.ReadinessHandler(), http.StatusServiceUnavailable},
		{"full", c.Handler(), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("unexpected content type %q", ct)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
		})
	}
}
