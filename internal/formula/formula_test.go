package formula

import (
	"math/rand"
	"testing"
	"time"

	"stormblood-bard-sim/internal/stats"
)

func level70(t *testing.T) stats.Level {
	t.Helper()
	lv, err := stats.ForLevel(70)
	if err != nil {
		t.Fatalf("level: %v", err)
	}
	return lv
}

// neutral stats make every factor except f_wd exactly 1.
func neutralInput(t *testing.T) Input {
	lv := level70(t)
	return Input{
		Level:         lv,
		JobModifier:   115,
		AttackRating:  292,
		Determination: lv.MainStat,
		Tenacity:      lv.SubStat,
		CriticalHit:   lv.SubStat,
		DirectHit:     lv.SubStat,
		Speed:         lv.SubStat,
		WeaponDamage:  104,
		WeaponDelay:   3 * time.Second,
		Potency:       100,
	}
}

func TestDirectDamagePipeline(t *testing.T) {
	in := neutralInput(t)
	cases := []struct {
		name string
		roll Roll
		want int
	}{
		{"plain", Roll{}, 137},
		{"critical", Roll{Critical: true}, 191},
		{"direct", Roll{Direct: true}, 171},
		{"critical direct", Roll{Critical: true, Direct: true}, 238},
	}
	for _, tc := range cases {
		if got := Direct(in, tc.roll, 1.0); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestTraitsAndBuffsFloorEachStep(t *testing.T) {
	in := neutralInput(t)
	in.Traits = []float64{1.1, 1.2}
	in.Buffs = []float64{1.1}
	if got := Direct(in, Roll{}, 1.0); got != 198 {
		t.Fatalf("expected 198, got %d", got)
	}
}

func TestTickAndAutoAttack(t *testing.T) {
	in := neutralInput(t)
	if got := Tick(in, Roll{}, 1.0); got != 137 {
		t.Fatalf("expected neutral tick of 137, got %d", got)
	}
	in.WeaponDelay = 3040 * time.Millisecond
	if got := AutoAttack(in, Roll{}, 1.0); got != 138 {
		t.Fatalf("expected auto-attack of 138, got %d", got)
	}
}

func TestHitChancesAreClamped(t *testing.T) {
	lv := level70(t)
	if got := CriticalChance(lv, lv.SubStat); got != 0.05 {
		t.Fatalf("expected base critical chance 0.05, got %v", got)
	}
	if got := DirectHitChance(lv, lv.SubStat); got != 0 {
		t.Fatalf("expected base direct chance 0, got %v", got)
	}
	if got := CriticalChance(lv, lv.SubStat+100000); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := DirectHitChance(lv, lv.SubStat-100000); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestDrawExtremes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if Draw(rng, 0) {
			t.Fatalf("p=0 must never succeed")
		}
		if !Draw(rng, 1) {
			t.Fatalf("p=1 must always succeed")
		}
		if j := Jitter(rng); j < 0.95 || j >= 1.05 {
			t.Fatalf("jitter out of range: %v", j)
		}
	}
}

func TestAttackAttribute(t *testing.T) {
	if AttackAttribute(stats.Bard, stats.AttackPower) != stats.Dexterity {
		t.Fatalf("bard attack power should use dexterity")
	}
	if AttackAttribute(stats.Warrior, stats.AttackPower) != stats.Strength {
		t.Fatalf("warrior attack power should use strength")
	}
	if AttackAttribute(stats.WhiteMage, stats.AttackMagicPotency) != stats.Mind {
		t.Fatalf("white mage magic should use mind")
	}
	if AttackAttribute(stats.BlackMage, stats.AttackMagicPotency) != stats.Intelligence {
		t.Fatalf("black mage magic should use intelligence")
	}
}

func TestHasteVariants(t *testing.T) {
	lv := level70(t)
	base := 2500 * time.Millisecond
	formulas := map[string]HasteFormula{"stormblood": Stormblood{}, "heavensward": Heavensward{}}

	for name, f := range formulas {
		if got := f.Scale(base, HasteInput{Level: lv, Speed: lv.SubStat}); got != base {
			t.Fatalf("%s: expected unhasted 2.5s, got %v", name, got)
		}
		if got := f.Scale(base, HasteInput{Level: lv, Speed: lv.SubStat + 1000}); got != 2350*time.Millisecond {
			t.Fatalf("%s: expected 2.35s with +1000 speed, got %v", name, got)
		}
		if got := f.Scale(base, HasteInput{Level: lv, Speed: lv.SubStat, Fixed: 1500 * time.Millisecond}); got != 1500*time.Millisecond {
			t.Fatalf("%s: expected fixed override, got %v", name, got)
		}
	}

	mods := HasteInput{Level: lv, Speed: lv.SubStat, Arrow: 15, Type1: 10, Haste: 20}
	if got := (Stormblood{}).Scale(base, mods); got != 1520*time.Millisecond {
		t.Fatalf("stormblood: expected 1.52s, got %v", got)
	}
	if got := (Heavensward{}).Scale(base, mods); got != 1500*time.Millisecond {
		t.Fatalf("heavensward: expected 1.50s, got %v", got)
	}
}
