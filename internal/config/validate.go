package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"stormblood-bard-sim/internal/stats"
)

// ErrInvalid marks a profile that cannot be simulated.
var ErrInvalid = errors.New("invalid profile")

// Validate checks the profile before anything is scheduled.
func (c *Config) Validate() error {
	if _, err := stats.ParseJob(c.Character.Job); err != nil {
		return fmt.Errorf("%w: character: %w", ErrInvalid, err)
	}
	if _, err := stats.ParseRace(c.Character.Race); err != nil {
		return fmt.Errorf("%w: character: %w", ErrInvalid, err)
	}
	if _, err := stats.ForLevel(c.Character.Level); err != nil {
		return fmt.Errorf("%w: character: %w", ErrInvalid, err)
	}
	if _, err := c.GearSet(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	switch strings.ToLower(c.Rotation.Source) {
	case RotationBuiltin, "":
	case RotationAPL, RotationLua:
		if c.Rotation.File == "" {
			return fmt.Errorf("%w: rotation: %s source needs a file", ErrInvalid, c.Rotation.Source)
		}
	default:
		return fmt.Errorf("%w: rotation: unknown source %q", ErrInvalid, c.Rotation.Source)
	}

	sim := c.Simulation
	if sim.Iterations <= 0 {
		return fmt.Errorf("%w: simulation: iterations must be positive, got %d", ErrInvalid, sim.Iterations)
	}
	if sim.CombatSeconds <= 0 {
		return fmt.Errorf("%w: simulation: combat_seconds must be positive, got %g", ErrInvalid, sim.CombatSeconds)
	}
	if sim.ExecuteSeconds < 0 {
		return fmt.Errorf("%w: simulation: execute_seconds must not be negative", ErrInvalid)
	}
	if sim.Workers < 0 {
		return fmt.Errorf("%w: simulation: workers must not be negative", ErrInvalid)
	}
	if sim.EventFilter != "" {
		if _, err := regexp.Compile(sim.EventFilter); err != nil {
			return fmt.Errorf("%w: simulation: event_filter: %w", ErrInvalid, err)
		}
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: logging: unknown format %q", ErrInvalid, c.Logging.Format)
	}
	if c.Output.Language != "" {
		if _, err := language.Parse(c.Output.Language); err != nil {
			return fmt.Errorf("%w: output: language: %w", ErrInvalid, err)
		}
	}
	return nil
}
