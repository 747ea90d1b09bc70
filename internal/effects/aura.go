package effects

import (
	"time"

	"stormblood-bard-sim/internal/stats"
	"stormblood-bard-sim/internal/timeline"
)

// RefreshPolicy decides the new remaining duration when an aura that is
// still up gets applied again.
type RefreshPolicy int

const (
	// RefreshReset restores the full duration.
	RefreshReset RefreshPolicy = iota
	// RefreshExtendToMax adds Extension to what is left, capped at Duration.
	RefreshExtendToMax
)

func (p RefreshPolicy) String() string {
	switch p {
	case RefreshReset:
		return "reset"
	case RefreshExtendToMax:
		return "extend_to_max"
	}
	return "unknown"
}

// Bearer is whatever an aura sits on. Hooks use it to adjust statistics.
type Bearer interface {
	Name() string
	Stat(attr stats.Attribute) int
	AdjustStat(attr stats.Attribute, delta int)
}

// Clock is the read side of the event queue needed to answer timing
// questions about an aura's events.
type Clock interface {
	Now() time.Duration
	Live(h timeline.Handle) bool
	Pending(h timeline.Handle) bool
	Timestamp(h timeline.Handle) time.Duration
}

// Aura is a timed buff or debuff. Its lifetime is driven entirely by queued
// events; the aura only remembers the handles of those events.
type Aura struct {
	Label     string
	Duration  time.Duration
	MaxStacks int
	Refresh   RefreshPolicy
	Extension time.Duration

	// TickInterval marks a damage-over-time aura.
	TickInterval time.Duration

	OnApply  func(a *Aura, bearer Bearer, now time.Duration)
	OnExpire func(a *Aura, bearer Bearer, now time.Duration)

	stacks int

	ApplyEvent  timeline.Handle
	ExpireEvent timeline.Handle
	TickEvent   timeline.Handle
}

// NewAura returns an aura with one stack maximum and the reset policy.
func NewAura(label string, duration time.Duration) *Aura {
	return &Aura{
		Label:     label,
		Duration:  duration,
		MaxStacks: 1,
	}
}

// Ticks is the number of periodic ticks a full application produces.
func (a *Aura) Ticks() int {
	if a == nil || a.TickInterval <= 0 {
		return 0
	}
	return int(a.Duration / a.TickInterval)
}

// Stacks returns the current stack count.
func (a *Aura) Stacks() int {
	if a == nil {
		return 0
	}
	return a.stacks
}

// AddStack raises the stack count by one up to MaxStacks. It reports
// whether the count changed.
func (a *Aura) AddStack() bool {
	if a == nil {
		return false
	}
	limit := a.MaxStacks
	if limit <= 0 {
		limit = 1
	}
	if a.stacks >= limit {
		return false
	}
	a.stacks++
	return true
}

// Remains returns how long the aura has left. It is zero while the
// application is still in the future, and whenever the expiration event is
// missing, cancelled or already in the past.
func (a *Aura) Remains(c Clock) time.Duration {
	if a == nil {
		return 0
	}
	now := c.Now()
	if c.Pending(a.ApplyEvent) && c.Timestamp(a.ApplyEvent) > now {
		return 0
	}
	if !c.Live(a.ExpireEvent) {
		return 0
	}
	return c.Timestamp(a.ExpireEvent) - now
}

// Up reports whether the aura has time left.
func (a *Aura) Up(c Clock) bool {
	return a.Remains(c) > 0
}

// Reset forgets stacks and event handles. Used when an actor arises.
func (a *Aura) Reset() {
	if a == nil {
		return
	}
	a.stacks = 0
	a.ApplyEvent = timeline.Handle{}
	a.ExpireEvent = timeline.Handle{}
	a.TickEvent = timeline.Handle{}
}

// Set is the insertion-ordered collection of auras present on a bearer.
type Set struct {
	auras []*Aura
}

// Has reports whether a is present.
func (s *Set) Has(a *Aura) bool {
	for _, existing := range s.auras {
		if existing == a {
			return true
		}
	}
	return false
}

// All returns the auras in application order.
func (s *Set) All() []*Aura {
	return s.auras
}

// Clear removes everything without running hooks.
func (s *Set) Clear() {
	for _, a := range s.auras {
		a.stacks = 0
	}
	s.auras = s.auras[:0]
}

// Apply puts a on bearer with one stack and runs OnApply. A duplicate is
// reported and changes nothing: the aura is not inserted twice and its
// hook does not run again.
func (s *Set) Apply(a *Aura, bearer Bearer, now time.Duration) (duplicate bool) {
	if s.Has(a) {
		return true
	}
	a.stacks = 1
	s.auras = append(s.auras, a)
	if a.OnApply != nil {
		a.OnApply(a, bearer, now)
	}
	return false
}

// Expire removes a from bearer and runs OnExpire. It reports false when a
// was not present, in which case nothing happens.
func (s *Set) Expire(a *Aura, bearer Bearer, now time.Duration) bool {
	for i, existing := range s.auras {
		if existing != a {
			continue
		}
		s.auras = append(s.auras[:i], s.auras[i+1:]...)
		a.stacks = 0
		if a.OnExpire != nil {
			a.OnExpire(a, bearer, now)
		}
		return true
	}
	return false
}
