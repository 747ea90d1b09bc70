package engine

import (
	"time"

	"go.uber.org/zap"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/formula"
	"stormblood-bard-sim/internal/report"
	"stormblood-bard-sim/internal/spells"
	"stormblood-bard-sim/internal/stats"
)

// Perform has src use a against target (src's current target when nil).
// On success it returns the execute time: the delay after which the
// action's effects land and src may act again.
func (s *Simulation) Perform(src *character.Actor, a *spells.Action, target *character.Actor) (time.Duration, error) {
	if err := a.Check(src, s); err != nil {
		return 0, err
	}
	if target == nil {
		target = src.Target
	}
	now := s.Now()
	exec := a.ExecuteTime(src, s)

	src.AnimationLock.Reset(now, exec)
	if !a.OffGCD {
		src.GCDLock.Reset(now, a.GCD(src, s))
	}

	if a.Cost != nil && a.Cost.Amount != 0 {
		s.schedule(Event{Kind: KindResource, Target: src, Resource: a.Cost.Resource, Amount: -a.Cost.Amount}, exec)
	}
	if potency := a.PotencyAgainst(src, s); potency > 0 && target != nil {
		out := s.newOutcome(src, target, a, potency)
		s.schedule(Event{Kind: KindDamage, Source: src, Target: target, Action: a, Outcome: out}, exec)
	}
	if a.OnExecute != nil {
		a.OnExecute(&execution{Simulation: s, src: src, tgt: target, action: a, delay: exec})
	}
	a.StartRecast(now + exec + a.RecastTime(src, s))

	s.stats.Actions++
	if s.cfg.Trace.Actions && s.traced(KindActorReady) {
		s.log.Debug("@@",
			zap.Duration("now", now),
			zap.String("actor", src.Name()),
			zap.String("action", a.Name),
			zap.Duration("execute", exec),
			zap.Duration("recast_at", a.CanRecastAt()))
	}
	return exec, nil
}

// execution is what an action's OnExecute hook sees.
type execution struct {
	*Simulation
	src    *character.Actor
	tgt    *character.Actor
	action *spells.Action
	delay  time.Duration
}

func (x *execution) Source() *character.Actor { return x.src }
func (x *execution) Target() *character.Actor { return x.tgt }
func (x *execution) Delay() time.Duration { return x.delay }

func (x *execution) ApplyAura(bearer *character.Actor, a *effects.Aura) {
	x.ScheduleAuraEvents(bearer, a, x.delay)
}

func (x *execution) ApplyDot(target *character.Actor, a *effects.Aura) {
	x.ScheduleDot(x.src, target, x.action, a, x.delay)
}

func (x *execution) RefreshDot(target *character.Actor, a *effects.Aura, owner *spells.Action) {
	if owner == nil {
		owner = x.action
	}
	x.ScheduleDot(x.src, target, owner, a, x.delay)
}

func (x *execution) AddStack(bearer *character.Actor, a *effects.Aura) {
	x.schedule(Event{Kind: KindApplyAuraStack, Target: bearer, Aura: a}, x.delay)
}

func (x *execution) Consume(bearer *character.Actor, a *effects.Aura) {
	x.schedule(Event{Kind: KindConsumeAura, Target: bearer, Aura: a}, x.delay)
}

func (x *execution) Chance(p float64) bool {
	return formula.Draw(x.rng, p)
}

func (s *Simulation) resource(ev *Event) {
	s.adjustResource(ev.Target, ev.Resource, ev.Amount)
}

func (s *Simulation) adjustResource(target *character.Actor, res stats.Resource, amount int) {
	level := target.AdjustResource(res, amount)
	s.sink.Resource(report.Resource{
		Timestamp: s.Now(),
		Target:    target.Name(),
		Resource:  res.String(),
		Amount:    amount,
		Level:     level,
	})
}
