package spells

import (
	"time"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/formula"
	"stormblood-bard-sim/internal/stats"
)

func (a *Action) hasteFormula() formula.HasteFormula {
	if a.Haste != nil {
		return a.Haste
	}
	return formula.Stormblood{}
}

func (a *Action) hasteInput(src *character.Actor, env Env) formula.HasteInput {
	var in formula.HasteInput
	if a.HasteMods != nil {
		in = a.HasteMods(src, env)
	}
	if lv, err := stats.ForLevel(src.Level); err == nil {
		in.Level = lv
	}
	in.Speed = src.Stat(a.HastedBy)
	return in
}

func (a *Action) scale(base time.Duration, src *character.Actor, env Env) time.Duration {
	if a.HastedBy == 0 || base <= 0 {
		return base
	}
	in := a.hasteInput(src, env)
	if in.Level.Divisor == 0 {
		return base
	}
	return a.hasteFormula().Scale(base, in)
}

// CastTime is the haste-adjusted cast time.
func (a *Action) CastTime(src *character.Actor, env Env) time.Duration {
	return a.scale(a.BaseCast, src, env)
}

// GCD is the haste-adjusted global cooldown the action triggers.
func (a *Action) GCD(src *character.Actor, env Env) time.Duration {
	base := a.BaseGCD
	if base == 0 {
		base = DefaultGCD
	}
	return a.scale(base, src, env)
}

// RecastTime is the action's own cooldown.
func (a *Action) RecastTime(src *character.Actor, env Env) time.Duration {
	if a.HasteRecast {
		return a.scale(a.BaseRecast, src, env)
	}
	return a.BaseRecast
}

// ExecuteTime is max(animation, cast time): when the action's effects land
// and when the actor may act again.
func (a *Action) ExecuteTime(src *character.Actor, env Env) time.Duration {
	cast := a.CastTime(src, env)
	if a.Animation > cast {
		return a.Animation
	}
	return cast
}

// PotencyAgainst returns the potency for the current state.
func (a *Action) PotencyAgainst(src *character.Actor, env Env) int {
	if a.PotencyFor != nil {
		return a.PotencyFor(src, env)
	}
	return a.Potency
}

// Scaled applies the action's haste to an arbitrary base duration, such as
// a weapon delay.
func (a *Action) Scaled(base time.Duration, src *character.Actor, env Env) time.Duration {
	return a.scale(base, src, env)
}
