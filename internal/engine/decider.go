package engine

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/spells"
)

// Choice is one entry of a decision: an action to try, optionally guarded
// by a predicate evaluated right before the attempt. A Choice without an
// action and with a positive Wait ends the decision and asks to be
// consulted again after Wait.
type Choice struct {
	Action *spells.Action
	Target *character.Actor
	When   func() bool
	Wait   time.Duration
}

// Decider returns an actor's priorities, most important first. The first
// legal choice whose predicate holds is performed.
type Decider interface {
	Decide(s *Simulation, actor *character.Actor) []Choice
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(s *Simulation, actor *character.Actor) []Choice

func (f DeciderFunc) Decide(s *Simulation, actor *character.Actor) []Choice {
	return f(s, actor)
}

// Use is shorthand for an unconditional choice.
func Use(a *spells.Action) Choice {
	return Choice{Action: a}
}

// UseIf is shorthand for a guarded choice.
func UseIf(a *spells.Action, when func() bool) Choice {
	return Choice{Action: a, When: when}
}

func (s *Simulation) actorReady(c *Combatant) {
	if c == nil || c.Decider == nil {
		return
	}
	for _, choice := range c.Decider.Decide(s, c.Actor) {
		if choice.Action == nil {
			if choice.Wait > 0 {
				s.push(c.ready, choice.Wait)
				return
			}
			continue
		}
		if err := choice.Action.Check(c.Actor, s); err != nil {
			s.rejected(c, choice.Action, err)
			continue
		}
		if choice.When != nil && !choice.When() {
			continue
		}
		exec, err := s.Perform(c.Actor, choice.Action, choice.Target)
		if err != nil {
			s.rejected(c, choice.Action, err)
			continue
		}
		s.push(c.ready, exec)
		return
	}
	s.retry(c)
}

func (s *Simulation) rejected(c *Combatant, a *spells.Action, err error) {
	var illegal *spells.IllegalActionError
	if !errors.As(err, &illegal) {
		s.log.Error("perform", zap.String("action", a.Name), zap.Error(err))
		return
	}
	s.stats.Illegal++
	if s.cfg.Trace.Actions && s.traced(KindActorReady) {
		s.log.Debug("@@ rejected",
			zap.Duration("now", s.Now()),
			zap.String("actor", c.Actor.Name()),
			zap.String("action", a.Name),
			zap.Stringer("reason", illegal.Reason))
	}
}

// retry asks again after the retry delay, or as soon as one of the actor's
// locks releases if that comes first.
func (s *Simulation) retry(c *Combatant) {
	now := s.Now()
	delay := s.cfg.RetryDelay
	if at, ok := c.Actor.NextUnlock(now); ok && at-now < delay {
		delay = at - now
	}
	s.push(c.ready, delay)
}
