package config

import (
	"fmt"
	"regexp"
	"time"

	"golang.org/x/text/language"

	"stormblood-bard-sim/internal/engine"
	"stormblood-bard-sim/internal/gear"
	"stormblood-bard-sim/internal/stats"
)

// Identity returns the parsed job and race of the character.
func (c *Config) Identity() (stats.Job, stats.Race, error) {
	job, err := stats.ParseJob(c.Character.Job)
	if err != nil {
		return 0, 0, err
	}
	race, err := stats.ParseRace(c.Character.Race)
	if err != nil {
		return 0, 0, err
	}
	return job, race, nil
}

// GearSet builds the equipment described by the profile. Every call returns
// a new set.
func (c *Config) GearSet() (*gear.Set, error) {
	set := gear.NewSet()
	for i, ic := range c.Gear {
		item, slot, err := ic.build()
		if err != nil {
			return nil, fmt.Errorf("gear[%d] %q: %w", i, ic.Name, err)
		}
		if err := set.Equip(slot, item); err != nil {
			return nil, fmt.Errorf("gear[%d]: %w", i, err)
		}
	}
	return set, nil
}

func (ic ItemConfig) build() (*gear.Item, gear.Slot, error) {
	slot, err := gear.ParseSlot(ic.Slot)
	if err != nil {
		return nil, 0, err
	}
	fits := slot
	if ic.Fits != "" {
		if fits, err = gear.ParseSlot(ic.Fits); err != nil {
			return nil, 0, err
		}
	}
	item := &gear.Item{
		Name:           ic.Name,
		ItemLevel:      ic.ItemLevel,
		Slot:           fits,
		Stats:          make(map[stats.Attribute]int, len(ic.Stats)),
		PhysicalDamage: ic.PhysicalDamage,
		MagicDamage:    ic.MagicDamage,
		Delay:          time.Duration(ic.DelaySeconds * float64(time.Second)),
		AutoAttack:     ic.AutoAttack,
	}
	for name, v := range ic.Stats {
		attr, err := stats.ParseAttribute(name)
		if err != nil {
			return nil, 0, err
		}
		item.Stats[attr] += v
	}
	for _, m := range ic.Melds {
		attr, err := stats.ParseAttribute(m.Attribute)
		if err != nil {
			return nil, 0, fmt.Errorf("meld %q: %w", m.Name, err)
		}
		item.Melds = append(item.Melds, gear.Materia{Name: m.Name, Attribute: attr, Bonus: m.Bonus})
	}
	return item, slot, nil
}

// Engine returns the per-run engine settings.
func (c *Config) Engine() engine.Config {
	sim := c.Simulation
	cfg := engine.Config{
		CombatLength:  seconds(sim.CombatSeconds),
		ExecuteWindow: seconds(sim.ExecuteSeconds),
		Seed:          sim.Seed,
		Trace: engine.Trace{
			Pushes:  sim.LogPushes,
			Pops:    sim.LogPops,
			Actions: sim.LogActionAttempts,
		},
	}
	if sim.EventFilter != "" {
		cfg.Trace.Filter = regexp.MustCompile(sim.EventFilter)
	}
	return cfg
}

// Batch returns the batch settings.
func (c *Config) Batch() engine.Batch {
	return engine.Batch{
		Config:     c.Engine(),
		Iterations: c.Simulation.Iterations,
		Workers:    c.Simulation.Workers,
	}
}

// Language is the report locale; English when unset or unparsable.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Output.Language)
	if err != nil {
		return language.English
	}
	return tag
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}
