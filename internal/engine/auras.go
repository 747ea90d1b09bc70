package engine

import (
	"time"

	"go.uber.org/zap"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/report"
	"stormblood-bard-sim/internal/timeline"
)

// ScheduleAuraEvents puts a on bearer delta from now. When a is still up
// past that instant the application becomes a refresh: the pending
// expiration is cancelled and a RefreshAura event takes its place.
// Otherwise fresh apply and expire events are created.
func (s *Simulation) ScheduleAuraEvents(bearer *character.Actor, a *effects.Aura, delta time.Duration) {
	now := s.Now()
	if s.queue.Live(a.ExpireEvent) && s.queue.Timestamp(a.ExpireEvent) > now+delta {
		remains := s.queue.Timestamp(a.ExpireEvent) - now
		s.schedule(Event{Kind: KindRefreshAura, Target: bearer, Aura: a, Remains: remains}, delta)
		s.unschedule(a.ExpireEvent)
		return
	}
	a.ApplyEvent = s.schedule(Event{Kind: KindApplyAura, Target: bearer, Aura: a}, delta)
	a.ExpireEvent = s.schedule(Event{Kind: KindExpireAura, Target: bearer, Aura: a}, delta+a.Duration)
}

func (s *Simulation) auraRecord(bearer *character.Actor, a *effects.Aura, change report.AuraChange) {
	s.auraRecordRemains(bearer, a, change, a.Remains(s))
}

func (s *Simulation) auraRecordRemains(bearer *character.Actor, a *effects.Aura, change report.AuraChange, remains time.Duration) {
	s.sink.Aura(report.Aura{
		Timestamp: s.Now(),
		Target:    bearer.Name(),
		Aura:      a.Label,
		Change:    change,
		Remains:   remains,
		Stacks:    a.Stacks(),
	})
}

func (s *Simulation) apply(bearer *character.Actor, a *effects.Aura) {
	if bearer.Auras.Apply(a, bearer, s.Now()) {
		s.log.Warn("aura already present", zap.String("aura", a.Label), zap.String("target", bearer.Name()))
	}
}

func (s *Simulation) expire(bearer *character.Actor, a *effects.Aura) bool {
	if !bearer.Auras.Expire(a, bearer, s.Now()) {
		s.log.Warn("aura not present", zap.String("aura", a.Label), zap.String("target", bearer.Name()))
		return false
	}
	return true
}

// cancelTicks drops a pending tick of a strictly after now. A tick landing
// at the same instant as the removal still happens.
func (s *Simulation) cancelTicks(a *effects.Aura) {
	if s.queue.Pending(a.TickEvent) && s.queue.Timestamp(a.TickEvent) > s.Now() {
		s.unschedule(a.TickEvent)
	}
}

func (s *Simulation) applyAura(ev *Event) {
	s.apply(ev.Target, ev.Aura)
	s.auraRecord(ev.Target, ev.Aura, report.AuraApply)
}

// expireAura handles the expiration h. Only the aura's current expiration
// stops its tick chain; an older one ending a superseded application leaves
// the chain of the new application alone.
func (s *Simulation) expireAura(h timeline.Handle, ev *Event) {
	if s.expire(ev.Target, ev.Aura) {
		if h == ev.Aura.ExpireEvent {
			s.cancelTicks(ev.Aura)
		}
		s.auraRecord(ev.Target, ev.Aura, report.AuraExpire)
	}
}

func (s *Simulation) refreshAura(ev *Event) {
	a, bearer := ev.Aura, ev.Target
	now := s.Now()

	remains := a.Duration
	if a.Refresh == effects.RefreshExtendToMax {
		left := s.queue.Timestamp(a.ExpireEvent) - now
		if left < 0 {
			left = 0
		}
		remains = left + a.Extension
		if remains > a.Duration {
			remains = a.Duration
		}
	}

	if bearer.Auras.Has(a) {
		bearer.Auras.Expire(a, bearer, now)
	}
	bearer.Auras.Apply(a, bearer, now)

	if s.queue.Pending(a.ExpireEvent) {
		s.unschedule(a.ExpireEvent)
	}
	a.ExpireEvent = s.schedule(Event{Kind: KindExpireAura, Target: bearer, Aura: a}, remains)
	// Remains is the time the previous application had left.
	s.auraRecordRemains(bearer, a, report.AuraRefresh, ev.Remains)
}

func (s *Simulation) consumeAura(ev *Event) {
	a, bearer := ev.Aura, ev.Target
	if !bearer.Auras.Has(a) {
		return
	}
	s.expire(bearer, a)
	if s.queue.Pending(a.ExpireEvent) {
		s.unschedule(a.ExpireEvent)
	}
	s.cancelTicks(a)
	s.auraRecord(bearer, a, report.AuraConsume)
}

func (s *Simulation) applyAuraStack(ev *Event) {
	if ev.Aura.AddStack() {
		s.auraRecord(ev.Target, ev.Aura, report.AuraStack)
	}
}
