// Package config loads a simulation profile: who is fighting, what they
// wear, how they decide and how the batch is run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Rotation sources.
const (
	RotationBuiltin = "builtin"
	RotationAPL     = "apl"
	RotationLua     = "lua"
)

// Config is the whole profile.
type Config struct {
	Character  CharacterConfig  `yaml:"character" toml:"character"`
	Gear       []ItemConfig     `yaml:"gear" toml:"gear"`
	Rotation   RotationConfig   `yaml:"rotation" toml:"rotation"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Output     OutputConfig     `yaml:"output" toml:"output"`

	dir string
}

// CharacterConfig identifies the simulated player and its target.
type CharacterConfig struct {
	Name   string       `yaml:"name" toml:"name"`
	Job    string       `yaml:"job" toml:"job"`
	Race   string       `yaml:"race" toml:"race"`
	Level  int          `yaml:"level" toml:"level"`
	Target TargetConfig `yaml:"target" toml:"target"`
}

type TargetConfig struct {
	Name  string `yaml:"name" toml:"name"`
	Level int    `yaml:"level" toml:"level"`
}

// ItemConfig is one equipped item. Slot is where it is worn; Fits is the
// item's own slot category ("ring" fits either hand) and defaults to Slot.
type ItemConfig struct {
	Name           string          `yaml:"name" toml:"name"`
	Slot           string          `yaml:"slot" toml:"slot"`
	Fits           string          `yaml:"fits" toml:"fits"`
	ItemLevel      int             `yaml:"item_level" toml:"item_level"`
	Stats          map[string]int  `yaml:"stats" toml:"stats"`
	Melds          []MateriaConfig `yaml:"melds" toml:"melds"`
	PhysicalDamage int             `yaml:"physical_damage" toml:"physical_damage"`
	MagicDamage    int             `yaml:"magic_damage" toml:"magic_damage"`
	DelaySeconds   float64         `yaml:"delay_seconds" toml:"delay_seconds"`
	AutoAttack     float64         `yaml:"auto_attack" toml:"auto_attack"`
}

type MateriaConfig struct {
	Name      string `yaml:"name" toml:"name"`
	Attribute string `yaml:"attribute" toml:"attribute"`
	Bonus     int    `yaml:"bonus" toml:"bonus"`
}

// RotationConfig picks the decision source. File is resolved relative to
// the profile.
type RotationConfig struct {
	Source string `yaml:"source" toml:"source"`
	File   string `yaml:"file" toml:"file"`
}

type SimulationConfig struct {
	Iterations     int     `yaml:"iterations" toml:"iterations"`
	CombatSeconds  float64 `yaml:"combat_seconds" toml:"combat_seconds"`
	ExecuteSeconds float64 `yaml:"execute_seconds" toml:"execute_seconds"`
	Seed           int64   `yaml:"seed" toml:"seed"`
	Workers        int     `yaml:"workers" toml:"workers"`

	LogPushes         bool   `yaml:"log_pushes" toml:"log_pushes"`
	LogPops           bool   `yaml:"log_pops" toml:"log_pops"`
	LogActionAttempts bool   `yaml:"log_action_attempts" toml:"log_action_attempts"`
	EventFilter       string `yaml:"event_filter" toml:"event_filter"`
}

type LoggingConfig struct {
	Level   string   `yaml:"level" toml:"level"`
	Format  string   `yaml:"format" toml:"format"`
	Outputs []string `yaml:"outputs" toml:"outputs"`
}

type OutputConfig struct {
	Language     string `yaml:"language" toml:"language"`
	DamageCSV    string `yaml:"damage_csv" toml:"damage_csv"`
	AuraCSV      string `yaml:"aura_csv" toml:"aura_csv"`
	ResultsDSN   string `yaml:"results_dsn" toml:"results_dsn"`
	OTelEndpoint string `yaml:"otel_endpoint" toml:"otel_endpoint"`
}

func defaults() Config {
	return Config{
		Character: CharacterConfig{
			Name:  "Bard",
			Job:   "bard",
			Race:  "highlander",
			Level: 70,
			Target: TargetConfig{
				Name:  "Striking Dummy",
				Level: 70,
			},
		},
		Rotation: RotationConfig{Source: RotationBuiltin},
		Simulation: SimulationConfig{
			Iterations:     100,
			CombatSeconds:  300,
			ExecuteSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{Language: "en"},
	}
}

// Default returns the built-in profile: a level 70 bard with no gear using
// the built-in rotation.
func Default() *Config {
	cfg := defaults()
	return &cfg
}

// Load reads a profile. Files ending in .toml are decoded as TOML, anything
// else as YAML. Missing keys keep their defaults. The result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	cfg, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a profile in the given format ("yaml" or "toml") on top of
// the defaults without validating it.
func Decode(data []byte, format string) (*Config, error) {
	cfg := defaults()
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown profile format %q", ErrInvalid, format)
	}
	return &cfg, nil
}

// RotationPath returns the rotation file resolved against the profile's
// directory.
func (c *Config) RotationPath() string {
	if c.Rotation.File == "" || filepath.IsAbs(c.Rotation.File) || c.dir == "" {
		return c.Rotation.File
	}
	return filepath.Join(c.dir, c.Rotation.File)
}
