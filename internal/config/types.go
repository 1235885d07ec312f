// Package config loads the docsite server configuration from a YAML file
// with DOCSITE_* environment overrides.
package config

import "time"

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "docsite.yaml"

// Config is the top-level configuration, corresponding to docsite.yaml.
type Config struct {
	Address string `yaml:"address" koanf:"address"`

	// ContentDir holds page manifests and markdown. Empty serves the
	// embedded documentation.
	ContentDir string `yaml:"content_dir" koanf:"content_dir"`

	// BaseURL prefixes canonical links. Optional.
	BaseURL  string `yaml:"base_url" koanf:"base_url"`
	SiteName string `yaml:"site_name" koanf:"site_name"`

	// Codec is the default live wire codec: json, msgpack or phoenix.
	Codec string `yaml:"codec" koanf:"codec"`

	Log       LogConfig       `yaml:"log" koanf:"log"`
	WebSocket WebSocketConfig `yaml:"websocket" koanf:"websocket"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts" koanf:"timeouts"`
}

// LogConfig controls the server logger.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	JSON  bool   `yaml:"json" koanf:"json"`
}

// WebSocketConfig controls origin checks on live connections.
type WebSocketConfig struct {
	AllowedOrigins  []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	InsecureDevMode bool     `yaml:"insecure_dev_mode" koanf:"insecure_dev_mode"`
}

// TimeoutsConfig bounds component work and connection I/O.
type TimeoutsConfig struct {
	Mount       time.Duration `yaml:"mount" koanf:"mount"`
	Event       time.Duration `yaml:"event" koanf:"event"`
	Read        time.Duration `yaml:"read" koanf:"read"`
	Write       time.Duration `yaml:"write" koanf:"write"`
	SessionIdle time.Duration `yaml:"session_idle" koanf:"session_idle"`
	Shutdown    time.Duration `yaml:"shutdown" koanf:"shutdown"`
}
