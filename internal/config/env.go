package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// overrides are the environment variables that win over the profile.
type overrides struct {
	Iterations    int     `env:"SIM_ITERATIONS"`
	Seed          int64   `env:"SIM_SEED"`
	CombatSeconds float64 `env:"SIM_COMBAT_SECONDS"`
	Workers       int     `env:"SIM_WORKERS"`
	LogLevel      string  `env:"SIM_LOG_LEVEL"`
	OTelEndpoint  string  `env:"SIM_OTEL_ENDPOINT"`
	ResultsDSN    string  `env:"SIM_RESULTS_DSN"`
}

// ApplyEnv overlays SIM_* environment variables and validates the result.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(env.Options{})
}

func (c *Config) applyEnv(opts env.Options) error {
	o := overrides{
		Iterations:    c.Simulation.Iterations,
		Seed:          c.Simulation.Seed,
		CombatSeconds: c.Simulation.CombatSeconds,
		Workers:       c.Simulation.Workers,
		LogLevel:      c.Logging.Level,
		OTelEndpoint:  c.Output.OTelEndpoint,
		ResultsDSN:    c.Output.ResultsDSN,
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.Simulation.Iterations = o.Iterations
	c.Simulation.Seed = o.Seed
	c.Simulation.CombatSeconds = o.CombatSeconds
	c.Simulation.Workers = o.Workers
	c.Logging.Level = o.LogLevel
	c.Output.OTelEndpoint = o.OTelEndpoint
	c.Output.ResultsDSN = o.ResultsDSN
	return c.Validate()
}
