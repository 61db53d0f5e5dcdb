// Package config loads the wishcalc service configuration with Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxTrials caps simulation.count.
const MaxTrials = 1_000_000

// SimulationConfig holds Monte Carlo defaults used when a request leaves them unset.
type SimulationConfig struct {
	Count int `mapstructure:"count"`
	// Seed is the default seed; 0 draws a fresh one per run.
	Seed    uint64 `mapstructure:"seed"`
	Workers int    `mapstructure:"workers"` // 0 = GOMAXPROCS
}

// OptimizerConfig tunes the allocation search.
type OptimizerConfig struct {
	ProbeTrials int `mapstructure:"probe_trials"`
	Step        int `mapstructure:"step"`
	MaxProbes   int `mapstructure:"max_probes"`
}

// MechanicsConfig selects the game rules in effect.
type MechanicsConfig struct {
	FatePointThreshold int  `mapstructure:"fate_point_threshold"`
	CapturingRadiance  bool `mapstructure:"capturing_radiance"`
}

// ListenConfig is a host/port pair.
type ListenConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
func (l ListenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CatalogConfig locates plan files and the top-up pack list.
type CatalogConfig struct {
	// Path is the plan directory holding catalog.yaml and accounts/.
	Path string `mapstructure:"path"`
	// Packs is an optional pack catalog; empty uses the built-in US store.
	Packs string `mapstructure:"packs"`
	// WatchInterval is the hot-reload poll period; 0 disables watching.
	WatchInterval time.Duration `mapstructure:"watch_interval"`
}

// Config is the top-level application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Optimizer  OptimizerConfig  `mapstructure:"optimizer"`
	Mechanics  MechanicsConfig  `mapstructure:"mechanics"`
	HTTP       ListenConfig     `mapstructure:"http"`
	GRPC       ListenConfig     `mapstructure:"grpc"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
}

// Validate checks every setting and reports all violations at once.
func (c Config) Validate() error {
	var errs []string

	if c.Simulation.Count < 1 || c.Simulation.Count > MaxTrials {
		errs = append(errs, fmt.Sprintf("simulation.count must be 1-%d, got %d", MaxTrials, c.Simulation.Count))
	}
	if c.Simulation.Workers < 0 {
		errs = append(errs, fmt.Sprintf("simulation.workers must be >= 0, got %d", c.Simulation.Workers))
	}
	if c.Optimizer.ProbeTrials < 1 || c.Optimizer.ProbeTrials > MaxTrials {
		errs = append(errs, fmt.Sprintf("optimizer.probe_trials must be 1-%d, got %d", MaxTrials, c.Optimizer.ProbeTrials))
	}
	if c.Optimizer.Step < 1 {
		errs = append(errs, fmt.Sprintf("optimizer.step must be >= 1, got %d", c.Optimizer.Step))
	}
	if c.Optimizer.MaxProbes < 1 {
		errs = append(errs, fmt.Sprintf("optimizer.max_probes must be >= 1, got %d", c.Optimizer.MaxProbes))
	}
	if c.Mechanics.FatePointThreshold < 1 {
		errs = append(errs, fmt.Sprintf("mechanics.fate_point_threshold must be >= 1, got %d", c.Mechanics.FatePointThreshold))
	}
	errs = append(errs, validateListen("http", c.HTTP)...)
	errs = append(errs, validateListen("grpc", c.GRPC)...)
	if c.HTTP.Port == c.GRPC.Port && c.HTTP.Host == c.GRPC.Host {
		errs = append(errs, "http and grpc must not share an address")
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Catalog.WatchInterval < 0 {
		errs = append(errs, "catalog.watch_interval must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateListen(name string, l ListenConfig) []string {
	if l.Port < 1 || l.Port > 65535 {
		return []string{fmt.Sprintf("%s.port must be 1-65535, got %d", name, l.Port)}
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from path, applies WISHCALC_* environment
// overrides and validates the result. An empty path uses defaults and the
// environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WISHCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.count", 10000)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.workers", 0)

	v.SetDefault("optimizer.probe_trials", 2000)
	v.SetDefault("optimizer.step", 10)
	v.SetDefault("optimizer.max_probes", 400)

	v.SetDefault("mechanics.fate_point_threshold", 1)
	v.SetDefault("mechanics.capturing_radiance", true)

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50051)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("catalog.path", "./config")
	v.SetDefault("catalog.packs", "")
	v.SetDefault("catalog.watch_interval", "2s")
}
