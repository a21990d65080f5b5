package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2000, cfg.NumAgents)
	assert.Equal(t, 50.0, cfg.PerceptionRadius)
	assert.Equal(t, 100.0, cfg.EmitterRadius)
	assert.Equal(t, 1.0, cfg.EmitterShrinkRate)
}

func TestLoadConfig_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "boids.json", `{"numAgents": 150, "workers": 3, "perceptionRadius": 35.5, "logLevel": "debug"}`},
		{"yaml", "boids.yaml", "numAgents: 150\nworkers: 3\nperceptionRadius: 35.5\nlogLevel: debug\n"},
		{"yml", "boids.yml", "numAgents: 150\nworkers: 3\nperceptionRadius: 35.5\nlogLevel: debug\n"},
		{"toml", "boids.toml", "numAgents = 150\nworkers = 3\nperceptionRadius = 35.5\nlogLevel = \"debug\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, 150, cfg.NumAgents)
			assert.Equal(t, 3, cfg.Workers)
			assert.Equal(t, 35.5, cfg.PerceptionRadius)
			assert.Equal(t, "debug", cfg.LogLevel)
			// untouched keys keep their defaults
			assert.Equal(t, 1280.0, cfg.WorldWidth)
			assert.Equal(t, 4, cfg.QuadtreeCapacity)
		})
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		invalid bool // semantic failure wrapping ErrInvalidConfig
	}{
		{"unknown key", "c.json", `{"numRedAtStart": 5}`, false},
		{"wrong type", "c.json", `{"numAgents": "many"}`, false},
		{"fractional count", "c.yaml", "numAgents: 1.5\n", false},
		{"negative radius", "c.toml", "perceptionRadius = -1.0\n", false},
		{"unknown log level", "c.json", `{"logLevel": "chatty"}`, false},
		{"speed range inverted", "c.json", `{"maxSpeedMin": 5, "maxSpeedMax": 3}`, true},
		{"broken json", "c.json", `{"numAgents": `, false},
		{"unsupported extension", "c.ini", "numAgents=3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidConfig), "error: %v", err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.WorldWidth = 0 }},
		{"negative agents", func(c *Config) { c.NumAgents = -1 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"zero capacity", func(c *Config) { c.QuadtreeCapacity = 0 }},
		{"negative shrink", func(c *Config) { c.EmitterShrinkRate = -0.5 }},
		{"zero telemetry window", func(c *Config) { c.TelemetryWindow = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestWriteYAML_LoadsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAgents = 77
	cfg.Seed = 1234
	cfg.TelemetryDir = "out"

	path := filepath.Join(t.TempDir(), "effective.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSettings(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.Settings()
	assert.Equal(t, cfg.PerceptionRadius, s.PerceptionRadius)
	assert.Equal(t, cfg.MaxForce, s.MaxForce)
	assert.Equal(t, cfg.MaxSpeedMin, s.MinMaxSpeed)
	assert.Equal(t, cfg.MaxSpeedMax, s.MaxMaxSpeed)
}
