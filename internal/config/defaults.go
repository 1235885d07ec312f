package config

import "github.com/actionhero/docsite/pkg/core"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	t := core.DefaultTimeoutConfig()
	return &Config{
		Address:  ":8080",
		SiteName: "Actionhero",
		Codec:    "json",
		Log: LogConfig{
			Level: "info",
		},
		Timeouts: TimeoutsConfig{
			Mount:       t.ComponentMount,
			Event:       t.ComponentEvent,
			Read:        t.WebSocketRead,
			Write:       t.WebSocketWrite,
			SessionIdle: t.SessionCleanup,
			Shutdown:    t.GracefulShutdown,
		},
	}
}
