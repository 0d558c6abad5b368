package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config captures the pager settings.
type Config struct {
	APIBind          string
	PageSize         int
	PrefetchDistance int
	LogLevel         string
	LogFormat        string
	LogFile          string
	MetricsAddr      string
	Logs             LogsConfig
	Demo             DemoConfig
}

// LogsConfig filters the daemon log feed.
type LogsConfig struct {
	Component string
	Level     string
	// Follow is how often the log feed asks for new events. Zero disables it.
	Follow time.Duration
}

// DemoConfig configures `pager demo`.
type DemoConfig struct {
	Listen    string
	Items     int
	Latency   time.Duration
	FailEvery int
}

const (
	defaultConfigPath       = "~/.config/pager/config.toml"
	defaultAPIBind          = "127.0.0.1:7487"
	defaultPageSize         = 50
	defaultPrefetchDistance = 5
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
	defaultLogFile          = "~/.local/state/pager/pager.log"
	defaultLogsFollow       = 2 * time.Second
	defaultDemoItems        = 120
	defaultDemoLatency      = 150 * time.Millisecond

	maxPageSize = 500
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:          defaultAPIBind,
		PageSize:         defaultPageSize,
		PrefetchDistance: defaultPrefetchDistance,
		LogLevel:         defaultLogLevel,
		LogFormat:        defaultLogFormat,
		LogFile:          mustExpand(defaultLogFile),
		Logs:             LogsConfig{Follow: defaultLogsFollow},
		Demo: DemoConfig{
			Listen:  defaultAPIBind,
			Items:   defaultDemoItems,
			Latency: defaultDemoLatency,
		},
	}
}

type rawConfig struct {
	APIBind          string `toml:"api_bind"`
	PageSize         int    `toml:"page_size"`
	PrefetchDistance *int   `toml:"prefetch_distance"`
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
	LogFile          string `toml:"log_file"`
	MetricsAddr      string `toml:"metrics_addr"`
	Logs             struct {
		Component string `toml:"component"`
		Level     string `toml:"level"`
		Follow    string `toml:"follow"`
	} `toml:"logs"`
	Demo struct {
		Listen    string `toml:"listen"`
		Items     int    `toml:"items"`
		Latency   string `toml:"latency"`
		FailEvery int    `toml:"fail_every"`
	} `toml:"demo"`
}

// Load locates and parses the pager config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.merge(raw); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(raw rawConfig) error {
	if v := strings.TrimSpace(raw.APIBind); v != "" {
		c.APIBind = v
	}
	if raw.PageSize != 0 {
		c.PageSize = raw.PageSize
	}
	if raw.PrefetchDistance != nil {
		c.PrefetchDistance = *raw.PrefetchDistance
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFormat); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		expanded, err := expandPath(v)
		if err != nil {
			return fmt.Errorf("log_file: %w", err)
		}
		c.LogFile = expanded
	}
	c.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	c.Logs.Component = strings.TrimSpace(raw.Logs.Component)
	c.Logs.Level = strings.TrimSpace(raw.Logs.Level)
	if v := strings.TrimSpace(raw.Logs.Follow); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("logs.follow: %w", err)
		}
		c.Logs.Follow = d
	}

	if v := strings.TrimSpace(raw.Demo.Listen); v != "" {
		c.Demo.Listen = v
	}
	if raw.Demo.Items != 0 {
		c.Demo.Items = raw.Demo.Items
	}
	if v := strings.TrimSpace(raw.Demo.Latency); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("demo.latency: %w", err)
		}
		c.Demo.Latency = d
	}
	c.Demo.FailEvery = raw.Demo.FailEvery
	return nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return fmt.Errorf("page_size %d out of range [1,%d]", c.PageSize, maxPageSize)
	}
	if c.PrefetchDistance < 0 {
		return fmt.Errorf("prefetch_distance %d must not be negative", c.PrefetchDistance)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format %q must be text or json", c.LogFormat)
	}
	if c.Logs.Follow < 0 {
		return fmt.Errorf("logs.follow %s must not be negative", c.Logs.Follow)
	}
	if c.Demo.Items < 1 {
		return fmt.Errorf("demo.items %d must be positive", c.Demo.Items)
	}
	if c.Demo.Latency < 0 {
		return fmt.Errorf("demo.latency %s must not be negative", c.Demo.Latency)
	}
	if c.Demo.FailEvery < 0 {
		return fmt.Errorf("demo.fail_every %d must not be negative", c.Demo.FailEvery)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
