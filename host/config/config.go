// Package config loads the host tool settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "400ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) D() time.Duration { return time.Duration(d) }

// Config is the host tool configuration. Zero or missing fields keep their
// defaults.
type Config struct {
	// Port is the serial device path.
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	// AckTimeout bounds each command attempt; StreamAckTimeout replaces it
	// while the mirror stream is running.
	AckTimeout       Duration `yaml:"ack_timeout"`
	StreamAckTimeout Duration `yaml:"stream_ack_timeout"`
	MaxAttempts      int      `yaml:"max_attempts"`

	// CommandSpacing caps the command rate during mirroring;
	// KeepaliveInterval paces the mirror keepalive.
	CommandSpacing    Duration `yaml:"command_spacing"`
	KeepaliveInterval Duration `yaml:"keepalive_interval"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Baud:              38400,
		AckTimeout:        Duration(400 * time.Millisecond),
		StreamAckTimeout:  Duration(900 * time.Millisecond),
		MaxAttempts:       3,
		CommandSpacing:    Duration(50 * time.Millisecond),
		KeepaliveInterval: Duration(120 * time.Millisecond),
		LogLevel:          "info",
	}
}

// Load reads path over the defaults. A missing file is not an error when
// path is the default location; an explicit path must exist.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("config: baud must be positive, got %d", c.Baud)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("config: max_attempts must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

// DefaultPath is the config location the host tools try when no -config flag
// is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "k5remote.yaml"
	}
	return home + "/.config/k5remote/config.yaml"
}
