package bard

import (
	"context"
	"testing"
	"time"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/engine"
	"stormblood-bard-sim/internal/gear"
	"stormblood-bard-sim/internal/report"
	"stormblood-bard-sim/internal/spells"
	"stormblood-bard-sim/internal/stats"
)

func newBard(t *testing.T, level int) *character.Actor {
	t.Helper()
	set := gear.NewSet()
	bow := &gear.Item{Name: "Bow", Slot: gear.Weapon, PhysicalDamage: 104, Delay: 3040 * time.Millisecond}
	if err := set.Equip(gear.Weapon, bow); err != nil {
		t.Fatalf("equip: %v", err)
	}
	return character.New(1, "Bard", stats.Bard, stats.Highlander, level, set)
}

type run struct {
	rec  *report.Recorder
	bard *character.Actor
	kit  *Kit
}

func simulate(t *testing.T, cfg engine.Config, level int, decide func(*Kit) engine.Decider) *run {
	t.Helper()
	r := &run{bard: newBard(t, level)}
	r.kit = New(r.bard)
	var d engine.Decider
	if decide != nil {
		d = decide(r.kit)
	}
	r.rec = report.NewRecorder(0, cfg.CombatLength)
	sim := engine.New(cfg, nil, r.rec)
	sim.AddCombatant(r.kit.Combatant(r.bard, d))
	sim.AddActor(character.New(2, "Striking Dummy", stats.Enemy, stats.EnemyRace, level, nil))
	st, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Desyncs != 0 {
		t.Fatalf("expected no desyncs, got %d", st.Desyncs)
	}
	return r
}

func (r *run) auras(label string, change report.AuraChange) []time.Duration {
	var out []time.Duration
	for _, a := range r.rec.Auras {
		if a.Aura == label && a.Change == change {
			out = append(out, a.Timestamp)
		}
	}
	return out
}

func (r *run) damage(action string) []report.Damage {
	var out []report.Damage
	for _, d := range r.rec.Damages {
		if d.Action == action {
			out = append(out, d)
		}
	}
	return out
}

func TestTraitsByLevel(t *testing.T) {
	tests := []struct {
		level  int
		dex    int
		traits int
	}{
		{10, 0, 0},
		{20, 8, 1},
		{40, 24, 2},
		{60, 48, 2},
		{70, 48, 2},
	}
	for _, tt := range tests {
		if got := Bonus(tt.level)[stats.Dexterity]; got != tt.dex {
			t.Fatalf("level %d: dexterity bonus %d, want %d", tt.level, got, tt.dex)
		}
		if got := len(Traits(tt.level)); got != tt.traits {
			t.Fatalf("level %d: %d multipliers, want %d", tt.level, got, tt.traits)
		}
	}
	if DotDuration(63) != 15*time.Second || DotDuration(64) != 30*time.Second {
		t.Fatalf("unexpected bite durations")
	}
}

func TestSidewinderPotency(t *testing.T) {
	tests := []struct {
		level, dots, want int
	}{
		{60, 2, 100},
		{70, 0, 100},
		{70, 1, 175},
		{70, 2, 260},
	}
	for _, tt := range tests {
		if got := sidewinderPotency(tt.level, tt.dots); got != tt.want {
			t.Fatalf("level %d with %d dots: %d, want %d", tt.level, tt.dots, got, tt.want)
		}
	}
}

func TestBloodletterSharesCooldown(t *testing.T) {
	k := New(newBard(t, 70))
	k.Bloodletter.StartRecast(15 * time.Second)
	if !k.RainOfDeath.OnCooldown(10 * time.Second) {
		t.Fatalf("Rain of Death should share Bloodletter's cooldown")
	}
	if k.RainOfDeath.OnCooldown(15 * time.Second) {
		t.Fatalf("shared cooldown should end at 15s")
	}
}

func TestStraightShotRaisesCriticalHit(t *testing.T) {
	var during int
	r := simulate(t, engine.Config{CombatLength: 40 * time.Second, Seed: 1}, 70, func(k *Kit) engine.Decider {
		used := false
		return engine.DeciderFunc(func(s *engine.Simulation, bard *character.Actor) []engine.Choice {
			if !used {
				return []engine.Choice{engine.UseIf(k.StraightShot, func() bool { used = true; return true })}
			}
			if s.Now() >= 5*time.Second && during == 0 {
				during = bard.Stat(stats.CriticalHit)
			}
			return []engine.Choice{{Wait: 5 * time.Second}}
		})
	})

	base := 364
	if during != 400 {
		t.Fatalf("critical hit during Straight Shot = %d, want 400", during)
	}
	if got := r.bard.Stat(stats.CriticalHit); got != base {
		t.Fatalf("critical hit after expiry = %d, want %d", got, base)
	}
	if got := r.auras(StraightShotLabel, report.AuraExpire); len(got) != 1 || got[0] != 30750*time.Millisecond {
		t.Fatalf("expected expiry at 30.75s, got %v", got)
	}
}

func TestStraighterShotGuaranteesCritical(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		r := simulate(t, engine.Config{CombatLength: 120 * time.Second, Seed: seed}, 60, func(k *Kit) engine.Decider {
			return engine.DeciderFunc(func(s *engine.Simulation, bard *character.Actor) []engine.Choice {
				if bard.Auras.Has(k.StraighterShot) {
					return []engine.Choice{engine.Use(k.StraightShot)}
				}
				return []engine.Choice{engine.Use(k.HeavyShot)}
			})
		})
		shots := r.damage("Straight Shot")
		if len(shots) == 0 {
			continue
		}
		for _, d := range shots {
			if !d.Critical {
				t.Fatalf("seed %d: Straight Shot at %v did not crit", seed, d.Timestamp)
			}
		}
		if got := len(r.auras(StraighterShotLabel, report.AuraConsume)); got != len(shots) {
			t.Fatalf("seed %d: %d consumptions for %d Straight Shots", seed, got, len(shots))
		}
		return
	}
	t.Fatalf("no Straighter Shot proc in five seeds")
}

func TestIronJawsRefreshesBites(t *testing.T) {
	r := simulate(t, engine.Config{CombatLength: 40 * time.Second, Seed: 2}, 70, func(k *Kit) engine.Decider {
		plan := []*spells.Action{k.VenomousBite, k.Windbite, k.IronJaws}
		next := 0
		return engine.DeciderFunc(func(*engine.Simulation, *character.Actor) []engine.Choice {
			if next < len(plan) {
				return []engine.Choice{engine.UseIf(plan[next], func() bool { next++; return true })}
			}
			return []engine.Choice{engine.Use(k.HeavyShot)}
		})
	})

	if got := r.auras(VenomousBiteLabel, report.AuraRefresh); len(got) != 1 || got[0] != 5750*time.Millisecond {
		t.Fatalf("expected Venomous Bite refresh at 5.75s, got %v", got)
	}
	if got := r.auras(VenomousBiteLabel, report.AuraExpire); len(got) != 1 || got[0] != 35750*time.Millisecond {
		t.Fatalf("expected Venomous Bite expiry at 35.75s, got %v", got)
	}
	var early, late int
	for _, d := range r.damage(VenomousBiteLabel) {
		if !d.Dot {
			continue
		}
		if d.Potency != 45 {
			t.Fatalf("tick at %v has potency %d, want 45", d.Timestamp, d.Potency)
		}
		if d.Timestamp < 6*time.Second {
			early++
		} else {
			late++
		}
	}
	if early != 1 || late != 10 {
		t.Fatalf("expected 1 tick before the refresh and 10 after, got %d and %d", early, late)
	}
}

func TestWindbiteReappliedAtExpirationKeepsTicking(t *testing.T) {
	r := simulate(t, engine.Config{CombatLength: 70 * time.Second, Seed: 3}, 70, func(k *Kit) engine.Decider {
		uses := 0
		return engine.DeciderFunc(func(s *engine.Simulation, _ *character.Actor) []engine.Choice {
			if uses == 0 || (uses == 1 && s.Now() >= 30*time.Second) {
				return []engine.Choice{engine.UseIf(k.Windbite, func() bool { uses++; return true })}
			}
			return []engine.Choice{engine.Use(k.HeavyShot)}
		})
	})

	// The second Windbite goes out on the GCD at 30s and lands on the
	// first one's expiration.
	applies := r.auras(WindbiteLabel, report.AuraApply)
	if len(applies) != 2 || applies[0] != 750*time.Millisecond || applies[1] != 30750*time.Millisecond {
		t.Fatalf("expected Windbite applied at 0.75s and 30.75s, got %v", applies)
	}
	if got := r.auras(WindbiteLabel, report.AuraRefresh); len(got) != 0 {
		t.Fatalf("expected no refresh, got %v", got)
	}
	if got := r.auras(WindbiteLabel, report.AuraExpire); len(got) != 2 || got[1] != 60750*time.Millisecond {
		t.Fatalf("expected Windbite to expire at 30.75s and 60.75s, got %v", got)
	}

	var first, second []time.Duration
	for _, d := range r.damage(WindbiteLabel) {
		if !d.Dot {
			continue
		}
		if d.Timestamp <= applies[1] {
			first = append(first, d.Timestamp)
		} else {
			second = append(second, d.Timestamp)
		}
	}
	if len(first) != 10 || len(second) != 10 {
		t.Fatalf("expected 10 ticks from each application, got %v and %v", first, second)
	}
	if second[0] != 33750*time.Millisecond || second[9] != 60750*time.Millisecond {
		t.Fatalf("second application should tick from 33.75s to 60.75s, got %v", second)
	}
}

func TestMiserysEndOnlyInExecutePhase(t *testing.T) {
	r := simulate(t, engine.Config{CombatLength: 40 * time.Second, ExecuteWindow: 10 * time.Second, Seed: 4}, 70, nil)
	hits := r.damage("Misery's End")
	if len(hits) == 0 {
		t.Fatalf("expected Misery's End during the execute phase")
	}
	for _, d := range hits {
		if d.Timestamp < 30*time.Second {
			t.Fatalf("Misery's End landed at %v, before the execute phase", d.Timestamp)
		}
	}
}

func TestDefaultPriority(t *testing.T) {
	r := simulate(t, engine.Config{CombatLength: 90 * time.Second, Seed: 3}, 70, nil)

	if got := r.auras(StraightShotLabel, report.AuraApply); len(got) == 0 || got[0] != 750*time.Millisecond {
		t.Fatalf("expected Straight Shot first, got %v", got)
	}
	if got := r.auras(RagingStrikesLabel, report.AuraApply); len(got) == 0 || got[0] > 2*time.Second {
		t.Fatalf("expected Raging Strikes in the opener, got %v", got)
	}
	ticks := 0
	for _, d := range r.rec.Damages {
		if d.Dot {
			ticks++
		}
	}
	if ticks < 40 {
		t.Fatalf("expected both bites ticking throughout, got %d ticks", ticks)
	}
	if len(r.damage("Heavy Shot")) == 0 || len(r.damage("Shot")) == 0 {
		t.Fatalf("expected Heavy Shot and auto-attacks")
	}
	if r.rec.TotalDamage() <= 0 {
		t.Fatalf("expected damage")
	}
}
