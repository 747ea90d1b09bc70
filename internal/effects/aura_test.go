package effects

import (
	"testing"
	"time"

	"stormblood-bard-sim/internal/stats"
	"stormblood-bard-sim/internal/timeline"
)

type dummy struct {
	attrs map[stats.Attribute]int
}

func (d *dummy) Name() string { return "dummy" }

func (d *dummy) Stat(a stats.Attribute) int { return d.attrs[a] }

func (d *dummy) AdjustStat(a stats.Attribute, delta int) { d.attrs[a] += delta }

func TestAddStackCapsAtMax(t *testing.T) {
	a := NewAura("Stacking", 10*time.Second)
	a.MaxStacks = 3
	for i := 0; i < 5; i++ {
		a.AddStack()
	}
	if a.Stacks() != 3 {
		t.Fatalf("expected 3 stacks, got %d", a.Stacks())
	}
	if a.AddStack() {
		t.Fatalf("expected add beyond max to be a no-op")
	}
}

func TestSetApplyExpireHooksAndDuplicates(t *testing.T) {
	var applied, expired int
	a := NewAura("Buff", 30*time.Second)
	a.OnApply = func(_ *Aura, b Bearer, _ time.Duration) {
		applied++
		b.AdjustStat(stats.CriticalHit, 100)
	}
	a.OnExpire = func(_ *Aura, b Bearer, _ time.Duration) {
		expired++
		b.AdjustStat(stats.CriticalHit, -100)
	}
	bearer := &dummy{attrs: map[stats.Attribute]int{stats.CriticalHit: 1000}}
	var set Set

	if set.Apply(a, bearer, 0) {
		t.Fatalf("first apply should not be a duplicate")
	}
	if !set.Has(a) || a.Stacks() != 1 || bearer.attrs[stats.CriticalHit] != 1100 {
		t.Fatalf("unexpected state after apply: stacks=%d crit=%d", a.Stacks(), bearer.attrs[stats.CriticalHit])
	}
	if !set.Expire(a, bearer, time.Second) {
		t.Fatalf("expected expire to find the aura")
	}
	if set.Expire(a, bearer, time.Second) {
		t.Fatalf("expected second expire to report a missing aura")
	}
	if applied != 1 || expired != 1 || bearer.attrs[stats.CriticalHit] != 1000 {
		t.Fatalf("hooks ran applied=%d expired=%d crit=%d", applied, expired, bearer.attrs[stats.CriticalHit])
	}

	set.Apply(a, bearer, 0)
	if !set.Apply(a, bearer, 0) {
		t.Fatalf("expected duplicate apply to be reported")
	}
	if len(set.All()) != 1 {
		t.Fatalf("expected duplicate apply not to insert twice, got %d", len(set.All()))
	}
	if applied != 2 || bearer.attrs[stats.CriticalHit] != 1100 {
		t.Fatalf("duplicate apply must not run OnApply again: applied=%d crit=%d", applied, bearer.attrs[stats.CriticalHit])
	}
}

func TestRemainsFollowsExpirationEvent(t *testing.T) {
	q := timeline.New[string]()
	a := NewAura("Buff", 30*time.Second)
	if a.Remains(q) != 0 {
		t.Fatalf("expected zero remains without events")
	}

	a.ApplyEvent = q.Add("apply")
	a.ExpireEvent = q.Add("expire")
	q.Schedule(a.ApplyEvent, time.Second)
	q.Schedule(a.ExpireEvent, 31*time.Second)
	if a.Remains(q) != 0 {
		t.Fatalf("expected zero remains before application")
	}

	q.Pop() // apply at 1s
	if got := a.Remains(q); got != 30*time.Second {
		t.Fatalf("expected 30s remaining, got %v", got)
	}

	q.Unschedule(a.ExpireEvent)
	if a.Remains(q) != 0 {
		t.Fatalf("expected zero remains after cancelling expiration")
	}
}

func TestTicks(t *testing.T) {
	a := NewAura("Dot", 30*time.Second)
	a.TickInterval = 3 * time.Second
	if a.Ticks() != 10 {
		t.Fatalf("expected 10 ticks, got %d", a.Ticks())
	}
	a.Duration = 31 * time.Second
	if a.Ticks() != 10 {
		t.Fatalf("expected ticks to floor, got %d", a.Ticks())
	}
}
