// Package scenario turns a loaded profile into per-iteration engine
// scenarios.
package scenario

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"stormblood-bard-sim/internal/apl"
	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/config"
	"stormblood-bard-sim/internal/engine"
	"stormblood-bard-sim/internal/jobs/bard"
	"stormblood-bard-sim/internal/scripting"
	"stormblood-bard-sim/internal/stats"
)

// ErrUnsupportedJob is returned for profiles of jobs without a kit.
var ErrUnsupportedJob = errors.New("no kit for job")

const (
	playerID = 1
	targetID = 2
)

// Builder holds everything that can be prepared once per batch: the parsed
// identity and the compiled rotation or script.
type Builder struct {
	cfg  *config.Config
	log  *zap.Logger
	job  stats.Job
	race stats.Race

	rotation *apl.CompiledRotation
	script   *scripting.Script
	extra    map[stats.Attribute]int
}

// New validates the profile's identity and loads its rotation source.
func New(cfg *config.Config, log *zap.Logger) (*Builder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	job, race, err := cfg.Identity()
	if err != nil {
		return nil, err
	}
	if job != stats.Bard {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedJob, job)
	}
	b := &Builder{cfg: cfg, log: log, job: job, race: race}

	switch cfg.Rotation.Source {
	case config.RotationAPL:
		// A throwaway kit answers which names the rotation may use.
		catalog := bard.New(character.New(playerID, cfg.Character.Name, job, race, cfg.Character.Level, nil)).Loadout
		path := cfg.RotationPath()
		rot, err := apl.Load(filepath.Dir(path), filepath.Base(path), catalog)
		if err != nil {
			return nil, fmt.Errorf("rotation %s: %w", path, err)
		}
		b.rotation = rot
		log.Info("rotation loaded", zap.String("name", rot.Name), zap.String("file", path))
	case config.RotationLua:
		path := cfg.RotationPath()
		script, err := scripting.Load(path)
		if err != nil {
			return nil, err
		}
		b.script = script
		log.Info("rotation script loaded", zap.String("file", path))
	}
	return b, nil
}

// WithBonus returns a copy of b whose player gets extra statistics on top
// of gear and traits.
func (b *Builder) WithBonus(extra map[stats.Attribute]int) *Builder {
	c := *b
	c.extra = make(map[stats.Attribute]int, len(b.extra)+len(extra))
	for attr, v := range b.extra {
		c.extra[attr] += v
	}
	for attr, v := range extra {
		c.extra[attr] += v
	}
	return &c
}

// Factory returns an engine factory building a fresh cast per iteration.
func (b *Builder) Factory() engine.Factory {
	return func(int) (*engine.Scenario, error) {
		return b.Build()
	}
}

// Build creates one iteration's cast.
func (b *Builder) Build() (*engine.Scenario, error) {
	set, err := b.cfg.GearSet()
	if err != nil {
		return nil, err
	}
	ch := b.cfg.Character
	player := character.New(playerID, ch.Name, b.job, b.race, ch.Level, set)
	kit := bard.New(player)
	if len(b.extra) > 0 {
		player.Bonus = addBonus(player.Bonus, b.extra)
	}

	var d engine.Decider
	switch {
	case b.rotation != nil:
		d = &engine.RotationDecider{Rotation: b.rotation, Loadout: kit.Loadout}
	case b.script != nil:
		sd, err := b.script.NewDecider(kit.Loadout, b.log)
		if err != nil {
			return nil, err
		}
		d = sd
	}

	target := character.New(targetID, ch.Target.Name, stats.Enemy, stats.EnemyRace, ch.Target.Level, nil)
	return &engine.Scenario{
		Combatants: []*engine.Combatant{kit.Combatant(player, d)},
		Bystanders: []*character.Actor{target},
	}, nil
}

func addBonus(base func(int) map[stats.Attribute]int, extra map[stats.Attribute]int) func(int) map[stats.Attribute]int {
	return func(level int) map[stats.Attribute]int {
		out := make(map[stats.Attribute]int, len(extra))
		if base != nil {
			for attr, v := range base(level) {
				out[attr] += v
			}
		}
		for attr, v := range extra {
			out[attr] += v
		}
		return out
	}
}
