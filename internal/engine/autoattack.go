package engine

import (
	"time"

	"go.uber.org/zap"

	"stormblood-bard-sim/internal/timeline"
)

const defaultSwingDelay = 3 * time.Second

// startSwing begins a combatant's auto-attack timer. Swings run beside the
// decider and never take a lock.
func (s *Simulation) startSwing(c *Combatant) {
	if c.Loadout == nil || c.Loadout.AutoAttack == nil {
		return
	}
	c.swing = s.schedule(Event{
		Kind:      KindSwing,
		Combatant: c,
		Source:    c.Actor,
		Action:    c.Loadout.AutoAttack,
	}, 0)
	if s.cfg.Trace.Actions {
		s.log.Debug("auto-attack started",
			zap.String("actor", c.Actor.Name()),
			zap.Duration("delay", s.swingDelay(c)))
	}
}

func (s *Simulation) swingDelay(c *Combatant) time.Duration {
	delay := defaultSwingDelay
	if weapon, err := c.Actor.Gear.Weapon(); err == nil && weapon.Delay > 0 {
		delay = weapon.Delay
	}
	a := c.Loadout.AutoAttack
	if a.HasteRecast {
		delay = a.Scaled(delay, c.Actor, s)
	}
	return delay
}

func (s *Simulation) swingEvent(h timeline.Handle, ev *Event) {
	c := ev.Combatant
	a := ev.Action
	if target := c.Actor.Target; target != nil {
		if potency := a.PotencyAgainst(c.Actor, s); potency > 0 {
			out := s.newOutcome(c.Actor, target, a, potency)
			out.AutoAttack = true
			s.resolve(out)
		}
	}
	s.push(h, s.swingDelay(c))
}
