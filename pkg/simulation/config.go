package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/behavior"
)

//go:embed config.schema.json
var configSchema string

// ErrInvalidConfig is wrapped by every semantic validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth" yaml:"worldWidth"`
	WorldHeight float64 `json:"worldHeight" yaml:"worldHeight"`

	// Population
	NumAgents int `json:"numAgents" yaml:"numAgents"`

	// Flocking
	PerceptionRadius float64 `json:"perceptionRadius" yaml:"perceptionRadius"`
	MaxForce         float64 `json:"maxForce" yaml:"maxForce"`
	MaxSpeedMin      float64 `json:"maxSpeedMin" yaml:"maxSpeedMin"`
	MaxSpeedMax      float64 `json:"maxSpeedMax" yaml:"maxSpeedMax"`

	// Emitters spawned by clicks
	EmitterRadius     float64 `json:"emitterRadius" yaml:"emitterRadius"`
	EmitterShrinkRate float64 `json:"emitterShrinkRate" yaml:"emitterShrinkRate"`

	// Spatial index
	QuadtreeCapacity int `json:"quadtreeCapacity" yaml:"quadtreeCapacity"`
	QuadtreeMaxDepth int `json:"quadtreeMaxDepth" yaml:"quadtreeMaxDepth"`

	// Execution
	Workers        int    `json:"workers" yaml:"workers"`
	Seed           uint64 `json:"seed" yaml:"seed"` // 0 picks a random seed
	TicksPerSecond int    `json:"ticksPerSecond" yaml:"ticksPerSecond"`

	// Rendering
	AgentSize float64 `json:"agentSize" yaml:"agentSize"`

	// Telemetry and logging
	TelemetryWindow int    `json:"telemetryWindow" yaml:"telemetryWindow"`
	TelemetryDir    string `json:"telemetryDir" yaml:"telemetryDir"`
	LogLevel        string `json:"logLevel" yaml:"logLevel"`
	LogFile         string `json:"logFile" yaml:"logFile"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:        1280,
		WorldHeight:       800,
		NumAgents:         2000,
		PerceptionRadius:  behavior.DefaultPerceptionRadius,
		MaxForce:          behavior.DefaultMaxForce,
		MaxSpeedMin:       2,
		MaxSpeedMax:       behavior.DefaultMaxSpeed,
		EmitterRadius:     behavior.DefaultBlackholeRadius,
		EmitterShrinkRate: behavior.DefaultShrinkRate,
		QuadtreeCapacity:  4,
		QuadtreeMaxDepth:  16,
		Workers:           1,
		Seed:              0,
		TicksPerSecond:    60,
		AgentSize:         10,
		TelemetryWindow:   60,
		TelemetryDir:      "",
		LogLevel:          "info",
		LogFile:           "",
	}
}

// LoadConfig loads configuration from a JSON, YAML or TOML file, validates it against the
// embedded schema and overlays it on DefaultConfig. Keys missing from the file keep their default.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File and normalize it to JSON
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	b, err := toJSON(filepath.Ext(configFile), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", configFile, err)
	}

	// 3. Validate
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toJSON(ext string, raw []byte) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return raw, nil
	case ".yaml", ".yml":
		m := map[string]interface{}{}
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return json.Marshal(m)
	case ".toml":
		m := map[string]interface{}{}
		if err := toml.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return json.Marshal(m)
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}
}

// Validate checks the cross-field rules the schema cannot express.
// It is run again after command line overrides.
func (c *Config) Validate() error {
	switch {
	case c.WorldWidth <= 0 || c.WorldHeight <= 0:
		return fmt.Errorf("%w: world size %vx%v must be positive", ErrInvalidConfig, c.WorldWidth, c.WorldHeight)
	case c.NumAgents < 0:
		return fmt.Errorf("%w: numAgents %d is negative", ErrInvalidConfig, c.NumAgents)
	case c.PerceptionRadius <= 0:
		return fmt.Errorf("%w: perceptionRadius %v must be positive", ErrInvalidConfig, c.PerceptionRadius)
	case c.MaxForce < 0:
		return fmt.Errorf("%w: maxForce %v is negative", ErrInvalidConfig, c.MaxForce)
	case c.MaxSpeedMin < 0 || c.MaxSpeedMin > c.MaxSpeedMax:
		return fmt.Errorf("%w: maxSpeedMin %v must be in [0, maxSpeedMax %v]", ErrInvalidConfig, c.MaxSpeedMin, c.MaxSpeedMax)
	case c.EmitterRadius <= 0 || c.EmitterShrinkRate < 0:
		return fmt.Errorf("%w: emitter radius %v / shrink rate %v", ErrInvalidConfig, c.EmitterRadius, c.EmitterShrinkRate)
	case c.QuadtreeCapacity < 1 || c.QuadtreeMaxDepth < 1:
		return fmt.Errorf("%w: quadtree capacity %d and max depth %d must be at least 1", ErrInvalidConfig, c.QuadtreeCapacity, c.QuadtreeMaxDepth)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d must be at least 1", ErrInvalidConfig, c.Workers)
	case c.TicksPerSecond < 0:
		return fmt.Errorf("%w: ticksPerSecond %d is negative", ErrInvalidConfig, c.TicksPerSecond)
	case c.AgentSize <= 0:
		return fmt.Errorf("%w: agentSize %v must be positive", ErrInvalidConfig, c.AgentSize)
	case c.TelemetryWindow < 1:
		return fmt.Errorf("%w: telemetryWindow %d must be at least 1", ErrInvalidConfig, c.TelemetryWindow)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logLevel %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Settings returns the agent physics derived from the config.
func (c *Config) Settings() behavior.Settings {
	return behavior.Settings{
		PerceptionRadius: c.PerceptionRadius,
		MaxForce:         c.MaxForce,
		MinMaxSpeed:      c.MaxSpeedMin,
		MaxMaxSpeed:      c.MaxSpeedMax,
	}
}

// WriteYAML saves the effective configuration.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
