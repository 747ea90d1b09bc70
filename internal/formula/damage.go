// Package formula implements the damage, hit-chance and haste math. Every
// function is pure; randomness is drawn by the caller and passed in.
package formula

import (
	"math"
	"math/rand"
	"time"

	"stormblood-bard-sim/internal/stats"
)

// DirectHitMultiplier is applied to direct hits.
const DirectHitMultiplier = 1.25

// Input carries everything one damage instance depends on.
type Input struct {
	Level stats.Level

	// JobModifier is the job's base value for the attack attribute and
	// AttackRating is the actor's current value of it.
	JobModifier  int
	AttackRating int

	Determination int
	Tenacity      int
	CriticalHit   int
	DirectHit     int
	// Speed is the haste attribute used for damage-over-time scaling.
	Speed int

	WeaponDamage int
	WeaponDelay  time.Duration

	Potency int
	Traits  []float64
	Buffs   []float64
}

// Roll is the cached outcome of the critical and direct-hit draws of one
// damage instance.
type Roll struct {
	Critical bool
	Direct   bool
}

// AttackAttribute picks the attribute that powers an action for job.
// Physical ranged and dexterity melee jobs use dexterity for attack power;
// healers use mind for attack magic potency.
func AttackAttribute(job stats.Job, poweredBy stats.Attribute) stats.Attribute {
	switch poweredBy {
	case stats.AttackPower:
		switch job {
		case stats.Bard, stats.Machinist, stats.Ninja, stats.Archer, stats.Rogue:
			return stats.Dexterity
		}
		return stats.Strength
	case stats.AttackMagicPotency:
		switch job {
		case stats.Astrologian, stats.Scholar, stats.WhiteMage, stats.Conjurer:
			return stats.Mind
		}
		return stats.Intelligence
	case stats.HealingMagicPotency:
		return stats.Mind
	}
	return poweredBy
}

func floor(v float64) float64 { return math.Floor(v) }

// WeaponFactor is f_wd.
func WeaponFactor(in Input) float64 {
	return floor(float64(in.Level.MainStat*in.JobModifier)/1000) + float64(in.WeaponDamage)
}

// AutoAttackFactor is f_aa, the weapon factor scaled by delay over three
// seconds.
func AutoAttackFactor(in Input) float64 {
	return floor(WeaponFactor(in) * in.WeaponDelay.Seconds() / 3)
}

// AttackFactor is f_atk.
func AttackFactor(in Input) float64 {
	return floor(125*float64(in.AttackRating-292)/292+100) / 100
}

// DeterminationFactor is f_det.
func DeterminationFactor(in Input) float64 {
	return floor(130*float64(in.Determination-in.Level.MainStat)/float64(in.Level.Divisor)+1000) / 1000
}

// TenacityFactor is f_tnc.
func TenacityFactor(in Input) float64 {
	return floor(100*float64(in.Tenacity-in.Level.SubStat)/float64(in.Level.Divisor)+1000) / 1000
}

// CriticalFactor is f_chr, the multiplier of a critical hit.
func CriticalFactor(in Input) float64 {
	return floor(200*float64(in.CriticalHit-in.Level.SubStat)/float64(in.Level.Divisor)+1400) / 1000
}

// SpeedFactor is f_ss, applied to damage-over-time ticks.
func SpeedFactor(in Input) float64 {
	return floor(130*float64(in.Speed-in.Level.SubStat)/float64(in.Level.Divisor)+1000) / 1000
}

// CriticalChance is the probability of a critical hit, clamped to [0, 1].
func CriticalChance(lv stats.Level, crit int) float64 {
	return clamp01(floor(200*float64(crit-lv.SubStat)/float64(lv.Divisor)+50) / 1000)
}

// DirectHitChance is the probability of a direct hit, clamped to [0, 1].
func DirectHitChance(lv stats.Level, dh int) float64 {
	return clamp01(floor(550*float64(dh-lv.SubStat)/float64(lv.Divisor)) / 1000)
}

func clamp01(p float64) float64 {
	if p < 0 || math.IsNaN(p) {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Draw reports a success with probability p. p <= 0 never succeeds and
// p >= 1 always does.
func Draw(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

// Jitter draws the uniform damage variance in [0.95, 1.05).
func Jitter(rng *rand.Rand) float64 {
	return 0.95 + rng.Float64()*0.1
}

// Direct computes a direct damage instance.
func Direct(in Input, roll Roll, jitter float64) int {
	return finish(in, scaled(in, WeaponFactor(in)), roll, jitter)
}

// Tick computes one damage-over-time tick.
func Tick(in Input, roll Roll, jitter float64) int {
	d := scaled(in, WeaponFactor(in))
	d = floor(d * SpeedFactor(in))
	return finish(in, d, roll, jitter)
}

// AutoAttack computes an auto-attack swing.
func AutoAttack(in Input, roll Roll, jitter float64) int {
	return finish(in, scaled(in, AutoAttackFactor(in)), roll, jitter)
}

func scaled(in Input, weapon float64) float64 {
	d := float64(in.Potency) / 100 * weapon * AttackFactor(in) * DeterminationFactor(in) * TenacityFactor(in)
	d = floor(d)
	for _, m := range in.Traits {
		d = floor(d * m)
	}
	return d
}

func finish(in Input, d float64, roll Roll, jitter float64) int {
	if roll.Critical {
		d = floor(d * CriticalFactor(in))
	}
	if roll.Direct {
		d = floor(d * DirectHitMultiplier)
	}
	d = floor(d * jitter)
	for _, m := range in.Buffs {
		d = floor(d * m)
	}
	if d < 0 {
		return 0
	}
	return int(d)
}
