package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/actionhero/docsite/pkg/core"
)

// EnvPrefix namespaces environment overrides. Nested keys are separated
// by a double underscore: DOCSITE_LOG__LEVEL sets log.level.
const EnvPrefix = "DOCSITE_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validCodecs = map[string]bool{
	"json":    true,
	"msgpack": true,
	"phoenix": true,
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}
	if c.SiteName == "" {
		return fmt.Errorf("%w: site_name is required", ErrInvalidConfig)
	}
	if !validCodecs[c.Codec] {
		return fmt.Errorf("%w: codec %q must be one of json, msgpack, phoenix", ErrInvalidConfig, c.Codec)
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("%w: log.level %q must be one of debug, info, warn, error", ErrInvalidConfig, c.Log.Level)
	}
	if c.ContentDir != "" {
		info, err := os.Stat(c.ContentDir)
		if err != nil {
			return fmt.Errorf("%w: content_dir: %v", ErrInvalidConfig, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: content_dir %s is not a directory", ErrInvalidConfig, c.ContentDir)
		}
	}
	if err := c.TimeoutConfig().Validate(); err != nil {
		return fmt.Errorf("%w: timeouts: %v", ErrInvalidConfig, err)
	}
	return nil
}

// TimeoutConfig maps the timeouts section onto the component timeouts.
func (c *Config) TimeoutConfig() core.TimeoutConfig {
	return core.TimeoutConfig{
		ComponentMount:   c.Timeouts.Mount,
		ComponentEvent:   c.Timeouts.Event,
		WebSocketRead:    c.Timeouts.Read,
		WebSocketWrite:   c.Timeouts.Write,
		SessionCleanup:   c.Timeouts.SessionIdle,
		GracefulShutdown: c.Timeouts.Shutdown,
	}
}

// CanonicalURL joins the base URL with a page path, or returns "" when no
// base URL is configured.
func (c *Config) CanonicalURL(path string) string {
	if c.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
