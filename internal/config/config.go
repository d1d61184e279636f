package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Icons   string   `koanf:"icons"`   // "nerd", "unicode", or "none"
	Accent  string   `koanf:"accent"`  // hex accent color, e.g. "#a78bfa"
	Devices []string `koanf:"devices"` // receivers to connect to in addition to mDNS, host[:port]

	DiscoveryTimeoutSecs int `koanf:"discovery_timeout_secs"`
	CommandTimeoutSecs   int `koanf:"command_timeout_secs"`

	VolumeDebounceMs int `koanf:"volume_debounce_ms"` // echo suppression window after a volume change
	VolumeStep       int `koanf:"volume_step"`        // percent per +/- press
	SeekStepSecs     int `koanf:"seek_step_secs"`
	SkipOffsetSecs   int `koanf:"skip_offset_secs"` // skip lands this far before the end

	// Volume applied to a receiver that reconnects; negative disables.
	ReconnectVolume *float64 `koanf:"reconnect_volume"`

	Notifications *bool `koanf:"notifications"` // desktop notifications on join/loss (default: true)

	Log LogConfig `koanf:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // trace, debug, info, warn, error (default: info)
	File  string `koanf:"file"`  // default: $XDG_STATE_HOME/castwave/castwave.log
}

func Load() (*Config, error) {
	return load(getConfigPaths())
}

func load(paths []string) (*Config, error) {
	k := koanf.New(".")

	// Later files win
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	devices := cfg.Devices[:0]
	for _, d := range cfg.Devices {
		if d = strings.TrimSpace(d); d != "" {
			devices = append(devices, d)
		}
	}
	cfg.Devices = devices

	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/castwave/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "castwave", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// DiscoveryTimeout returns how long the initial mDNS browse runs (default: 5s).
func (c *Config) DiscoveryTimeout() time.Duration {
	if c.DiscoveryTimeoutSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.DiscoveryTimeoutSecs) * time.Second
}

// CommandTimeout bounds a single command sent to a receiver (default: 5s).
func (c *Config) CommandTimeout() time.Duration {
	if c.CommandTimeoutSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.CommandTimeoutSecs) * time.Second
}

// VolumeDebounce returns the volume echo suppression window (default: 250ms).
func (c *Config) VolumeDebounce() time.Duration {
	if c.VolumeDebounceMs <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(c.VolumeDebounceMs) * time.Millisecond
}

// GetVolumeStep returns the volume step in percent (1-50, default: 5).
func (c *Config) GetVolumeStep() int {
	if c.VolumeStep <= 0 || c.VolumeStep > 50 {
		return 5
	}
	return c.VolumeStep
}

// GetSeekStep returns the relative seek step in seconds (default: 10).
func (c *Config) GetSeekStep() int {
	if c.SeekStepSecs <= 0 {
		return 10
	}
	return c.SeekStepSecs
}

// GetSkipOffset returns how many seconds before the end a skip lands (default: 3).
func (c *Config) GetSkipOffset() int {
	if c.SkipOffsetSecs <= 0 {
		return 3
	}
	return c.SkipOffsetSecs
}

// GetReconnectVolume returns the volume applied after a reconnect and whether
// it is enabled (default: 0.25).
func (c *Config) GetReconnectVolume() (float64, bool) {
	if c.ReconnectVolume == nil {
		return 0.25, true
	}
	v := *c.ReconnectVolume
	if v < 0 {
		return 0, false
	}
	return min(v, 1), true
}

// NotificationsEnabled reports whether desktop notifications are on (default: true).
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// GetLogConfig returns the logging configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	switch strings.ToLower(cfg.Level) {
	case "trace", "debug", "info", "warn", "error":
		cfg.Level = strings.ToLower(cfg.Level)
	default:
		cfg.Level = "info"
	}
	if cfg.File == "" {
		cfg.File = filepath.Join(xdg.StateHome, "castwave", "castwave.log")
	}
	return cfg
}
