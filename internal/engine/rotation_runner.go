package engine

import (
	"time"

	"go.uber.org/zap"

	"stormblood-bard-sim/internal/apl"
	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/stats"
)

// rotationContext answers rotation conditions for one combatant.
type rotationContext struct {
	sim     *Simulation
	actor   *character.Actor
	loadout *Loadout
}

func (c *rotationContext) buff(name string) *effects.Aura {
	a, ok := c.loadout.Buff(name)
	if !ok || !c.actor.Auras.Has(a) {
		return nil
	}
	return a
}

func (c *rotationContext) debuff(name string) *effects.Aura {
	label, ok := c.loadout.DebuffLabel(name)
	if !ok || c.actor.Target == nil {
		return nil
	}
	a, ok := c.actor.TargetData().Lookup(label)
	if !ok || !c.actor.Target.Auras.Has(a) {
		return nil
	}
	return a
}

func (c *rotationContext) BuffActive(name string) bool {
	return c.buff(name).Up(c.sim)
}

func (c *rotationContext) BuffRemaining(name string) time.Duration {
	return c.buff(name).Remains(c.sim)
}

func (c *rotationContext) BuffStacks(name string) int {
	return c.buff(name).Stacks()
}

func (c *rotationContext) DebuffActive(name string) bool {
	return c.debuff(name).Up(c.sim)
}

func (c *rotationContext) DebuffRemaining(name string) time.Duration {
	return c.debuff(name).Remains(c.sim)
}

func (c *rotationContext) ResourcePercent(resource string) float64 {
	res, err := stats.ParseResource(resource)
	if err != nil {
		return 0
	}
	pool := c.actor.Resource(res)
	if pool.Max <= 0 {
		return 0
	}
	return float64(pool.Current) / float64(pool.Max)
}

func (c *rotationContext) CooldownReady(name string) bool {
	a, ok := c.loadout.Action(name)
	if !ok {
		return true
	}
	return !a.OnCooldown(c.sim.Now())
}

func (c *rotationContext) CooldownRemaining(name string) time.Duration {
	a, ok := c.loadout.Action(name)
	if !ok {
		return 0
	}
	return a.CooldownRemains(c.sim.Now())
}

func (c *rotationContext) InExecute() bool {
	return c.sim.InExecute()
}

func (c *rotationContext) CombatRemaining() time.Duration {
	return c.sim.Remaining()
}

// Conditions returns the view rotation conditions evaluate against for
// actor at the current instant.
func Conditions(s *Simulation, actor *character.Actor, l *Loadout) apl.EvaluationContext {
	return &rotationContext{sim: s, actor: actor, loadout: l}
}

// RotationDecider turns a compiled priority list into choices. Conditions
// are evaluated lazily, right before each attempt.
type RotationDecider struct {
	Rotation *apl.CompiledRotation
	Loadout  *Loadout
}

func (d *RotationDecider) Decide(s *Simulation, actor *character.Actor) []Choice {
	if d.Rotation == nil {
		return nil
	}
	ctx := &rotationContext{sim: s, actor: actor, loadout: d.Loadout}
	var out []Choice
	d.expand(s, ctx, d.Rotation.Actions, nil, &out)
	return out
}

func (d *RotationDecider) expand(s *Simulation, ctx *rotationContext, entries []*apl.Action, parent apl.Condition, out *[]Choice) {
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		when := guard(ctx, parent, entry.Condition)
		switch entry.Type {
		case apl.ActionUse:
			a, ok := d.Loadout.Action(entry.Ability)
			if !ok {
				s.log.Warn("rotation refers to unknown ability", zap.String("ability", entry.Ability))
				continue
			}
			*out = append(*out, Choice{Action: a, When: when})
		case apl.ActionGroup:
			d.expand(s, ctx, entry.Steps, both(parent, entry.Condition), out)
		case apl.ActionWait:
			if entry.Duration <= 0 {
				continue
			}
			// A guarded wait only applies when its condition holds at
			// decision time; the rest of the list is then skipped.
			if when != nil && !when() {
				continue
			}
			*out = append(*out, Choice{Wait: entry.Duration})
			return
		}
	}
}

func both(a, b apl.Condition) apl.Condition {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return allOf{a, b}
}

type allOf [2]apl.Condition

func (c allOf) Eval(ctx apl.EvaluationContext) bool {
	return c[0].Eval(ctx) && c[1].Eval(ctx)
}

func guard(ctx *rotationContext, parent, cond apl.Condition) func() bool {
	combined := both(parent, cond)
	if combined == nil {
		return nil
	}
	return func() bool { return combined.Eval(ctx) }
}
