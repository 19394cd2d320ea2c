// Package config loads the finder's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paramsearch/finder/internal/domain"
)

// StrategyConfig names a strategy and its default parameters. The engine
// resolves the key against its strategy registry at run time.
type StrategyConfig struct {
	Key    string                `yaml:"key"`
	Name   string                `yaml:"name"`
	Params domain.StrategyParams `yaml:"params"`
}

// OffloadConfig configures the remote acceleration engine client.
type OffloadConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	BreakerTimeSec int    `yaml:"breaker_time_sec"`
	MaxFailures    int    `yaml:"max_failures"`
}

// CacheConfig configures the in-memory dataset cache.
type CacheConfig struct {
	TTLSec int `yaml:"ttl_sec"`
}

// TTL returns the configured cache TTL.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// DebugConfig configures the local debug HTTP server.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Config is the root finder configuration.
type Config struct {
	Symbol   string               `yaml:"symbol"`
	Interval string               `yaml:"interval"`
	Finder   domain.FinderOptions `yaml:"finder"`
	Spec     domain.BacktestSpec  `yaml:"spec"`
	Offload  OffloadConfig        `yaml:"offload"`
	Cache    CacheConfig          `yaml:"cache"`
	Debug    DebugConfig          `yaml:"debug"`

	Strategies []StrategyConfig `yaml:"strategies"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Symbol:   "BTCUSDT",
		Interval: "1h",
		Finder:   domain.DefaultFinderOptions(),
		Spec: domain.BacktestSpec{
			InitialCapital: 10_000,
			PositionSize:   100,
			Commission:     0.1,
			Sizing:         "percent",
		},
		Offload: OffloadConfig{
			BaseURL:        "http://127.0.0.1:9633",
			TimeoutSec:     60,
			BreakerTimeSec: 120,
			MaxFailures:    3,
		},
		Cache: CacheConfig{TTLSec: 30},
		Debug: DebugConfig{Host: "127.0.0.1", Port: 8214},
	}
}

// Load reads path and merges it over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	if c.Interval == "" {
		return fmt.Errorf("interval must not be empty")
	}
	if err := c.Finder.Validate(); err != nil {
		return fmt.Errorf("finder: %w", err)
	}
	if c.Spec.InitialCapital <= 0 {
		return fmt.Errorf("spec: initial capital must be positive, got %g", c.Spec.InitialCapital)
	}
	if c.Offload.Enabled && c.Offload.BaseURL == "" {
		return fmt.Errorf("offload: base_url required when enabled")
	}
	seen := make(map[string]bool, len(c.Strategies))
	for _, s := range c.Strategies {
		if s.Key == "" {
			return fmt.Errorf("strategies: key must not be empty")
		}
		if seen[s.Key] {
			return fmt.Errorf("strategies: duplicate key %q", s.Key)
		}
		seen[s.Key] = true
	}
	return nil
}
