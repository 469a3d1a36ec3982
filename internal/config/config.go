// Package config loads notebox.yaml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the vault root.
const FileName = "notebox.yaml"

// Config mirrors notebox.yaml. Zero values are filled from Default.
type Config struct {
	Vault       string  `yaml:"vault"`
	Adapter     string  `yaml:"adapter" validate:"oneof=fs memory"`
	SystemDir   string  `yaml:"system_dir" validate:"required,excludesall=/\\"`
	EventBuffer int     `yaml:"event_buffer" validate:"gte=0"`
	LogLevel    string  `yaml:"log_level" validate:"oneof=debug info warn error"`
	Platform    string  `yaml:"platform"`
	Server      Server  `yaml:"server"`
	Session     Session `yaml:"session"`
}

type Server struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

type Session struct {
	// Secret signs session tokens. Empty means a key generated and kept
	// in the system dir.
	Secret string `yaml:"secret"`
	TTL    string `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Vault:       ".",
		Adapter:     "fs",
		SystemDir:   ".notebox",
		EventBuffer: 100,
		LogLevel:    "info",
		Platform:    "cli",
		Server:      Server{Addr: "127.0.0.1:8080"},
		Session:     Session{TTL: "720h"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.SessionTTL(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SessionTTL parses session.ttl. Empty or "0" means tokens never expire.
func (c Config) SessionTTL() (time.Duration, error) {
	if c.Session.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 0, fmt.Errorf("session.ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("session.ttl: negative duration %s", d)
	}
	return d, nil
}

// Level maps log_level to a slog level.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return l
}
