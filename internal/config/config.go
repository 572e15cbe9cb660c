// Package config holds the server configuration, loadable from a TOML file
// with defaults for everything but the model path.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ModelPath string `toml:"model_path"`

	// Serial link. Device may also be "tcp:host:port" for a socat-style
	// bridge during development.
	Device   string `toml:"device"`
	BaudRate int    `toml:"baud_rate"`

	// Health and metrics HTTP listener; empty disables it.
	ListenAddr string `toml:"listen_addr"`

	// Ceiling for the model weight + scratch allocation, in bytes.
	// Zero means the built-in default.
	MemoryBudget int64 `toml:"memory_budget"`

	// Per-phase read timeouts in milliseconds.
	MarkerTimeoutMS  int `toml:"marker_timeout_ms"`
	CountTimeoutMS   int `toml:"count_timeout_ms"`
	PayloadTimeoutMS int `toml:"payload_timeout_ms"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

func Default() Config {
	return Config{
		Device:           "/dev/ttyACM0",
		BaudRate:         115200,
		ListenAddr:       ":9090",
		MarkerTimeoutMS:  1000,
		CountTimeoutMS:   2000,
		PayloadTimeoutMS: 5000,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.Device == "" {
		return fmt.Errorf("device is required")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud_rate: %d (must be positive)", c.BaudRate)
	}
	if c.MemoryBudget < 0 {
		return fmt.Errorf("invalid memory_budget: %d (must be non-negative)", c.MemoryBudget)
	}
	if c.MarkerTimeoutMS <= 0 {
		return fmt.Errorf("invalid marker_timeout_ms: %d (must be positive)", c.MarkerTimeoutMS)
	}
	if c.CountTimeoutMS <= 0 {
		return fmt.Errorf("invalid count_timeout_ms: %d (must be positive)", c.CountTimeoutMS)
	}
	if c.PayloadTimeoutMS <= 0 {
		return fmt.Errorf("invalid payload_timeout_ms: %d (must be positive)", c.PayloadTimeoutMS)
	}
	return nil
}

func (c *Config) MarkerTimeout() time.Duration {
	return time.Duration(c.MarkerTimeoutMS) * time.Millisecond
}

func (c *Config) CountTimeout() time.Duration {
	return time.Duration(c.CountTimeoutMS) * time.Millisecond
}

func (c *Config) PayloadTimeout() time.Duration {
	return time.Duration(c.PayloadTimeoutMS) * time.Millisecond
}
