package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

const (
	ModeResume         = "resume"
	ModeRefuseIfExists = "refuse-if-exists"
)

// Config holds everything one download invocation needs.
type Config struct {
	URL              string
	Target           string
	ChunkSize        uint64
	Workers          int
	Mode             string
	Strict           bool
	BandwidthLimit   uint64 // bytes per second, 0 disables limiting
	Timeout          time.Duration
	KeepAliveTimeout time.Duration
	UserAgent        string
	Headers          map[string]string
	Debug            bool
	NoProgress       bool
}

// yamlConfig mirrors Config with human-readable sizes and durations.
type yamlConfig struct {
	URL              string            `yaml:"url"`
	Target           string            `yaml:"target"`
	ChunkSize        string            `yaml:"chunk_size"`
	Workers          *int              `yaml:"workers"`
	Mode             string            `yaml:"mode"`
	Strict           bool              `yaml:"strict"`
	Limit            string            `yaml:"limit"`
	Timeout          string            `yaml:"timeout"`
	KeepAliveTimeout string            `yaml:"keep_alive_timeout"`
	UserAgent        string            `yaml:"user_agent"`
	Headers          map[string]string `yaml:"headers"`
	Debug            bool              `yaml:"debug"`
	NoProgress       bool              `yaml:"no_progress"`
}

func Default() Config {
	return Config{
		ChunkSize:        100 * 1024 * 1024,
		Workers:          8,
		Mode:             ModeResume,
		Timeout:          3 * time.Minute,
		KeepAliveTimeout: 90 * time.Second,
		Headers:          map[string]string{},
	}
}

// LoadFromFile reads a YAML file on top of Default().
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	cfg.URL = yc.URL
	cfg.Target = yc.Target
	if yc.ChunkSize != "" {
		if cfg.ChunkSize, err = ParseSize(yc.ChunkSize); err != nil {
			return Config{}, fmt.Errorf("parse chunk_size: %w", err)
		}
	}
	if yc.Workers != nil {
		cfg.Workers = *yc.Workers
	}
	if yc.Mode != "" {
		cfg.Mode = yc.Mode
	}
	cfg.Strict = yc.Strict
	if yc.Limit != "" {
		if cfg.BandwidthLimit, err = ParseSize(yc.Limit); err != nil {
			return Config{}, fmt.Errorf("parse limit: %w", err)
		}
	}
	if yc.Timeout != "" {
		if cfg.Timeout, err = time.ParseDuration(yc.Timeout); err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
	}
	if yc.KeepAliveTimeout != "" {
		if cfg.KeepAliveTimeout, err = time.ParseDuration(yc.KeepAliveTimeout); err != nil {
			return Config{}, fmt.Errorf("parse keep_alive_timeout: %w", err)
		}
	}
	cfg.UserAgent = yc.UserAgent
	for k, v := range yc.Headers {
		cfg.Headers[k] = v
	}
	cfg.Debug = yc.Debug
	cfg.NoProgress = yc.NoProgress
	return cfg, nil
}

// ParseSize accepts plain byte counts as well as "100MiB", "512KB" and "0".
func ParseSize(s string) (uint64, error) {
	return humanize.ParseBytes(s)
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: url is required")
	}
	if c.Target == "" {
		return errors.New("config: target is required")
	}
	if c.ChunkSize == 0 {
		return errors.New("config: chunk_size must be positive")
	}
	if c.Workers < 0 {
		return errors.New("config: workers must not be negative")
	}
	switch c.Mode {
	case ModeResume, ModeRefuseIfExists:
	default:
		return fmt.Errorf("config: unknown mode %q (want %s or %s)", c.Mode, ModeResume, ModeRefuseIfExists)
	}
	return nil
}
