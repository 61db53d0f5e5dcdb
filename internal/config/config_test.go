package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Simulation: SimulationConfig{Count: 10000},
		Optimizer:  OptimizerConfig{ProbeTrials: 2000, Step: 10, MaxProbes: 400},
		Mechanics:  MechanicsConfig{FatePointThreshold: 1, CapturingRadiance: true},
		HTTP:       ListenConfig{Host: "0.0.0.0", Port: 8080},
		GRPC:       ListenConfig{Host: "0.0.0.0", Port: 50051},
		Logging:    LoggingConfig{Level: "info", Format: "json"},
		Catalog:    CatalogConfig{Path: "./config", WatchInterval: 2 * time.Second},
	}
}

func TestValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", validConfig().HTTP.Addr())
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.Count = 0
	cfg.Simulation.Workers = -1
	cfg.Optimizer.Step = 0
	cfg.Mechanics.FatePointThreshold = 0
	cfg.GRPC.Port = 70000
	cfg.Logging.Level = "trace"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"simulation.count",
		"simulation.workers",
		"optimizer.step",
		"mechanics.fate_point_threshold",
		"grpc.port",
		"logging.level",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_SharedAddress(t *testing.T) {
	cfg := validConfig()
	cfg.GRPC = cfg.HTTP
	assert.ErrorContains(t, cfg.Validate(), "must not share")
}

func TestValidate_CountRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Simulation.Count = rapid.IntRange(-10, 2*MaxTrials).Draw(t, "count")
		err := cfg.Validate()
		if cfg.Simulation.Count >= 1 && cfg.Simulation.Count <= MaxTrials {
			assert.NoError(t, err)
		} else {
			assert.Error(t, err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Simulation.Count)
	assert.Equal(t, 2000, cfg.Optimizer.ProbeTrials)
	assert.True(t, cfg.Mechanics.CapturingRadiance)
	assert.Equal(t, 2*time.Second, cfg.Catalog.WatchInterval)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wishcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`simulation:
  count: 5000
  seed: 99
mechanics:
  capturing_radiance: false
logging:
  format: console
`), 0o644))
	t.Setenv("WISHCALC_SIMULATION_WORKERS", "3")
	t.Setenv("WISHCALC_HTTP_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Simulation.Count)
	assert.Equal(t, uint64(99), cfg.Simulation.Seed)
	assert.Equal(t, 3, cfg.Simulation.Workers)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.Mechanics.CapturingRadiance)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  count: -5\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "simulation.count")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
