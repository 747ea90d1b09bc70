package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"

	"stormblood-bard-sim/internal/gear"
	"stormblood-bard-sim/internal/stats"
)

const profileYAML = `
character:
  name: Aria
  job: bard
  race: highlander
  level: 70
gear:
  - name: Bow
    slot: weapon
    physical_damage: 104
    delay_seconds: 3.04
    stats:
      dex: 300
  - name: Ring
    slot: left_ring
    fits: ring
    stats:
      critical_hit: 120
    melds:
      - name: Savage Aim
        attribute: crit
        bonus: 40
rotation:
  source: apl
  file: rotations/bard.yaml
simulation:
  iterations: 50
  combat_seconds: 120
  execute_seconds: 20
  seed: 7
  event_filter: "Damage|DotTick"
`

func writeProfile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeProfile(t, "profile.yaml", profileYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Character.Name != "Aria" || cfg.Simulation.Iterations != 50 {
		t.Fatalf("unexpected profile: %+v", cfg)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("default log level lost: %q", cfg.Logging.Level)
	}
	if want := filepath.Join(filepath.Dir(path), "rotations/bard.yaml"); cfg.RotationPath() != want {
		t.Fatalf("rotation path = %q, want %q", cfg.RotationPath(), want)
	}

	set, err := cfg.GearSet()
	if err != nil {
		t.Fatalf("GearSet: %v", err)
	}
	weapon, err := set.Weapon()
	if err != nil {
		t.Fatalf("Weapon: %v", err)
	}
	if weapon.Delay != 3040*time.Millisecond {
		t.Fatalf("delay = %v", weapon.Delay)
	}
	if got := set.Bonuses()[stats.CriticalHit]; got != 160 {
		t.Fatalf("critical hit bonus = %d, want 160", got)
	}

	ec := cfg.Engine()
	if ec.CombatLength != 2*time.Minute || ec.ExecuteWindow != 20*time.Second || ec.Seed != 7 {
		t.Fatalf("engine config = %+v", ec)
	}
	if ec.Trace.Filter == nil || !ec.Trace.Filter.MatchString("DotTick") {
		t.Fatalf("event filter not compiled")
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeProfile(t, "profile.toml", `
[character]
job = "bard"
race = "midlander"
level = 60

[simulation]
iterations = 10
combat_seconds = 60

[[gear]]
name = "Bow"
slot = "weapon"
physical_damage = 90
delay_seconds = 3.2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	job, race, err := cfg.Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if job != stats.Bard || race != stats.Midlander || cfg.Character.Level != 60 {
		t.Fatalf("identity = %v %v %d", job, race, cfg.Character.Level)
	}
	if cfg.Simulation.ExecuteSeconds != 60 {
		t.Fatalf("execute window default lost: %v", cfg.Simulation.ExecuteSeconds)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		also   error
	}{
		{"unknown job", func(c *Config) { c.Character.Job = "blue_mage" }, stats.ErrUnknownJob},
		{"unknown race", func(c *Config) { c.Character.Race = "lalafell" }, stats.ErrUnknownRace},
		{"unknown attribute", func(c *Config) {
			c.Gear = []ItemConfig{{Name: "Hat", Slot: "head", Stats: map[string]int{"luck": 5}}}
		}, stats.ErrUnknownAttribute},
		{"unknown slot", func(c *Config) { c.Gear = []ItemConfig{{Name: "Cape", Slot: "back"}} }, gear.ErrUnknownSlot},
		{"slot mismatch", func(c *Config) {
			c.Gear = []ItemConfig{{Name: "Ring", Slot: "head", Fits: "ring"}}
		}, gear.ErrSlotMismatch},
		{"zero iterations", func(c *Config) { c.Simulation.Iterations = 0 }, nil},
		{"negative length", func(c *Config) { c.Simulation.CombatSeconds = -1 }, nil},
		{"lua without file", func(c *Config) { c.Rotation.Source = RotationLua }, nil},
		{"bad filter", func(c *Config) { c.Simulation.EventFilter = "(" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if tt.also != nil && !errors.Is(err, tt.also) {
				t.Fatalf("expected %v in chain, got %v", tt.also, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env.Options{Environment: map[string]string{
		"SIM_ITERATIONS":     "250",
		"SIM_SEED":           "42",
		"SIM_COMBAT_SECONDS": "90.5",
		"SIM_LOG_LEVEL":      "debug",
		"SIM_RESULTS_DSN":    "results.db",
	}})
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Simulation.Iterations != 250 || cfg.Simulation.Seed != 42 {
		t.Fatalf("overrides not applied: %+v", cfg.Simulation)
	}
	if cfg.Engine().CombatLength != 90500*time.Millisecond {
		t.Fatalf("combat length = %v", cfg.Engine().CombatLength)
	}
	if cfg.Logging.Level != "debug" || cfg.Output.ResultsDSN != "results.db" {
		t.Fatalf("unexpected logging/output: %+v %+v", cfg.Logging, cfg.Output)
	}
	if cfg.Simulation.ExecuteSeconds != 60 {
		t.Fatalf("unset variable changed the profile")
	}

	bad := Default()
	if err := bad.applyEnv(env.Options{Environment: map[string]string{"SIM_ITERATIONS": "0"}}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
