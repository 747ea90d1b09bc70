package engine

import (
	"time"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/spells"
	"stormblood-bard-sim/internal/timeline"
)

// ScheduleDot applies a damage-over-time aura of a's to target delta from
// now and starts a new tick chain. A running chain is replaced from the new
// application on. The tick snapshot (potency, multipliers, chances) is
// taken now.
func (s *Simulation) ScheduleDot(src, target *character.Actor, a *spells.Action, aura *effects.Aura, delta time.Duration) {
	s.ScheduleAuraEvents(target, aura, delta)
	interval := aura.TickInterval
	if interval <= 0 {
		interval = DotTickInterval
	}
	s.endChain(aura, s.Now()+delta, interval)
	ticks := int(aura.Duration / interval)
	if ticks <= 0 {
		aura.TickEvent = timeline.Handle{}
		return
	}
	out := s.newOutcome(src, target, a, a.TickPotency)
	out.Label = aura.Label
	out.Dot = true
	out.AutoAttack = false
	out.snapshot(s)
	aura.TickEvent = s.schedule(Event{
		Kind:        KindDotTick,
		Source:      src,
		Target:      target,
		Action:      a,
		Aura:        aura,
		Outcome:     out,
		TicksRemain: ticks,
	}, delta+interval)
}

// endChain stops a's running tick chain at the instant at. Ticks landing
// after it are dropped and ticks up to it still happen.
func (s *Simulation) endChain(a *effects.Aura, at, interval time.Duration) {
	if !s.queue.Pending(a.TickEvent) {
		return
	}
	next := s.queue.Timestamp(a.TickEvent)
	if next > at {
		s.unschedule(a.TickEvent)
		return
	}
	ev := s.queue.Payload(a.TickEvent)
	if keep := 1 + int((at-next)/interval); keep < ev.TicksRemain {
		ev.TicksRemain = keep
	}
}

func (s *Simulation) dotTick(h timeline.Handle, ev *Event) {
	s.resolve(ev.Outcome.tick())
	ev.TicksRemain--
	if ev.TicksRemain <= 0 {
		return
	}
	interval := ev.Aura.TickInterval
	if interval <= 0 {
		interval = DotTickInterval
	}
	s.push(h, interval)
}
