package core

import (
	"time"
)

// TimeoutConfig configures timeouts for live component operations.
type TimeoutConfig struct {
	// ComponentMount bounds Mount() calls.
	ComponentMount time.Duration

	// ComponentEvent bounds HandleEvent() calls.
	ComponentEvent time.Duration

	// WebSocketRead is the idle read timeout for live connections.
	WebSocketRead time.Duration

	// WebSocketWrite is the write timeout for live connections.
	WebSocketWrite time.Duration

	// SessionCleanup is the interval for sweeping inactive sessions.
	SessionCleanup time.Duration

	// GracefulShutdown bounds server shutdown.
	GracefulShutdown time.Duration
}

// DefaultTimeoutConfig returns the production timeouts.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		ComponentMount:   5 * time.Second,
		ComponentEvent:   3 * time.Second,
		WebSocketRead:    60 * time.Second,
		WebSocketWrite:   10 * time.Second,
		SessionCleanup:   5 * time.Minute,
		GracefulShutdown: 30 * time.Second,
	}
}

// Validate reports the first non-positive timeout.
func (c TimeoutConfig) Validate() error {
	checks := []struct {
		name string
		d    time.Duration
	}{
		{"component_mount", c.ComponentMount},
		{"component_event", c.ComponentEvent},
		{"websocket_read", c.WebSocketRead},
		{"websocket_write", c.WebSocketWrite},
		{"session_cleanup", c.SessionCleanup},
		{"graceful_shutdown", c.GracefulShutdown},
	}
	for _, chk := range checks {
		if chk.d <= 0 {
			return configError("timeout " + chk.name + " must be positive")
		}
	}
	return nil
}

type configError string

func (e configError) Error() string { return string(e) }
