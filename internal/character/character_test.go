package character

import (
	"testing"
	"time"

	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/gear"
	"stormblood-bard-sim/internal/stats"
)

func newBard(t *testing.T) *Actor {
	t.Helper()
	set := gear.NewSet()
	if err := set.Equip(gear.Weapon, &gear.Item{
		Name:           "Bow",
		Slot:           gear.Weapon,
		PhysicalDamage: 104,
		Delay:          3040 * time.Millisecond,
		Stats:          map[stats.Attribute]int{stats.Dexterity: 347},
	}); err != nil {
		t.Fatalf("equip: %v", err)
	}
	a := New(1, "bard", stats.Bard, stats.SeekerOfTheSun, 70, set)
	a.Bonus = func(level int) map[stats.Attribute]int {
		return map[stats.Attribute]int{stats.Dexterity: 48}
	}
	return a
}

func TestAriseComputesStatsAndResetsState(t *testing.T) {
	a := newBard(t)
	if err := a.Arise(); err != nil {
		t.Fatalf("arise: %v", err)
	}
	if got := a.Stat(stats.Dexterity); got != 338+347+48 {
		t.Fatalf("unexpected dexterity %d", got)
	}
	if a.Resource(stats.TP).Current != 1000 {
		t.Fatalf("expected full TP")
	}

	a.GCDLock.Reset(0, 2500*time.Millisecond)
	a.AdjustStat(stats.CriticalHit, 99)
	aura := effects.NewAura("Buff", time.Second)
	a.Auras.Apply(aura, a, 0)
	td := a.TargetData()
	td.Aura("dot", func() *effects.Aura { return effects.NewAura("dot", time.Second) })

	if err := a.Arise(); err != nil {
		t.Fatalf("arise: %v", err)
	}
	if !a.GCDReady(0) {
		t.Fatalf("expected GCD lock cleared")
	}
	if a.Auras.Has(aura) {
		t.Fatalf("expected auras cleared")
	}
	if _, ok := a.TargetData().Lookup("dot"); ok {
		t.Fatalf("expected target data cleared")
	}
	if a.Stat(stats.CriticalHit) != 364 {
		t.Fatalf("expected stats recomputed, got %d", a.Stat(stats.CriticalHit))
	}
}

func TestReadyRespectsLocks(t *testing.T) {
	a := newBard(t)
	a.AnimationLock.Reset(0, 750*time.Millisecond)
	a.GCDLock.Reset(0, 2500*time.Millisecond)

	if a.GCDReady(time.Second) {
		t.Fatalf("expected GCD action blocked at 1s")
	}
	if !a.AnimationReady(time.Second) {
		t.Fatalf("expected off-GCD action allowed at 1s")
	}
	if !a.GCDReady(2500 * time.Millisecond) {
		t.Fatalf("expected GCD action allowed at 2.5s")
	}
	next, ok := a.NextUnlock(0)
	if !ok || next != 750*time.Millisecond {
		t.Fatalf("expected next unlock at 0.75s, got %v", next)
	}
}

func TestAdjustResourceClamps(t *testing.T) {
	a := newBard(t)
	a.SetPool(stats.TP, 950, 1000)
	if got := a.AdjustResource(stats.TP, 60); got != 1000 {
		t.Fatalf("expected clamp to max, got %d", got)
	}
	if got := a.AdjustResource(stats.TP, -2000); got != 0 {
		t.Fatalf("expected clamp to zero, got %d", got)
	}
}
