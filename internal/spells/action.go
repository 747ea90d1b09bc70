// Package spells defines actions: their costs, timing and legality rules.
// Executing an action's side effects is the engine's job; this package only
// describes them.
package spells

import (
	"time"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/formula"
	"stormblood-bard-sim/internal/stats"
)

const (
	// DefaultGCD is the unhasted global cooldown.
	DefaultGCD = 2500 * time.Millisecond
	// DefaultAnimation is the animation lock of most weaponskills and
	// abilities.
	DefaultAnimation = 750 * time.Millisecond
)

// Env is the read-only view of the running simulation an action needs.
type Env interface {
	effects.Clock
	InExecute() bool
}

// Execution is handed to an action's OnExecute hook. Scheduling methods
// place their events at the action's effective execute time.
type Execution interface {
	Env
	Source() *character.Actor
	Target() *character.Actor
	Delay() time.Duration

	ApplyAura(bearer *character.Actor, a *effects.Aura)
	ApplyDot(target *character.Actor, a *effects.Aura)
	// RefreshDot re-applies a damage-over-time aura on behalf of the
	// action that owns it, snapshotting that action's tick potency.
	RefreshDot(target *character.Actor, a *effects.Aura, owner *Action)
	AddStack(bearer *character.Actor, a *effects.Aura)
	Consume(bearer *character.Actor, a *effects.Aura)

	// Chance draws from the run's generator.
	Chance(p float64) bool
}

// Cost is a resource spent when the action executes.
type Cost struct {
	Resource stats.Resource
	Amount   int
}

// Action is a flat description of something an actor can do. Variation
// between actions lives in the optional strategy fields rather than in
// subtypes.
type Action struct {
	Name string

	Potency   int
	PoweredBy stats.Attribute
	// HastedBy, when set, scales cast time and GCD by that attribute.
	HastedBy stats.Attribute
	Haste    formula.HasteFormula

	Cost       *Cost
	BaseCast   time.Duration
	BaseRecast time.Duration
	BaseGCD    time.Duration
	Animation  time.Duration
	OffGCD     bool
	// HasteRecast scales the recast as well; auto-attacks use it.
	HasteRecast bool
	AutoAttack  bool

	GuaranteedCrit bool

	// Strategy hooks. Nil means the static field above applies.
	PotencyFor       func(src *character.Actor, env Env) int
	TraitMultipliers func(src *character.Actor) []float64
	BuffMultipliers  func(src *character.Actor, env Env) []float64
	CritChance       func(src *character.Actor, env Env) (p float64, override bool)
	DirectChance     func(src *character.Actor, env Env) (p float64, override bool)
	HasteMods        func(src *character.Actor, env Env) formula.HasteInput
	Usable           func(src *character.Actor, env Env) bool
	OnExecute        func(x Execution)

	// TickPotency is the per-tick potency of the damage-over-time aura the
	// action applies, if any.
	TickPotency int

	SharesCooldownWith []*Action

	recast effects.Timer
}

// Reset clears the per-run cooldown state.
func (a *Action) Reset() {
	a.recast.Clear()
}

// CanRecastAt returns when the action comes off cooldown.
func (a *Action) CanRecastAt() time.Duration {
	return a.recast.ReadyAt()
}

// OnCooldown reports whether the action is still recasting at now.
func (a *Action) OnCooldown(now time.Duration) bool {
	return !a.recast.Ready(now)
}

// CooldownRemains returns how long until the action can be used again.
func (a *Action) CooldownRemains(now time.Duration) time.Duration {
	return a.recast.Remaining(now)
}

// StartRecast puts the action and every action it shares a cooldown with on
// cooldown until readyAt.
func (a *Action) StartRecast(readyAt time.Duration) {
	a.recast.ForceReady(readyAt)
	for _, other := range a.SharesCooldownWith {
		if other != nil && other != a {
			other.recast.ForceReady(readyAt)
		}
	}
}

// Check validates the action can be performed by src right now.
func (a *Action) Check(src *character.Actor, env Env) error {
	now := env.Now()
	if a.OnCooldown(now) {
		return &IllegalActionError{Action: a.Name, Reason: ReasonOnCooldown, Remaining: a.CooldownRemains(now)}
	}
	if a.Animation > 0 && !src.AnimationReady(now) {
		return &IllegalActionError{Action: a.Name, Reason: ReasonAnimationLocked, Remaining: src.AnimationLock.Remaining(now)}
	}
	if !a.OffGCD && !src.GCDReady(now) {
		return &IllegalActionError{Action: a.Name, Reason: ReasonGCDLocked, Remaining: src.GCDLock.Remaining(now)}
	}
	if a.Cost != nil && src.Resource(a.Cost.Resource).Current < a.Cost.Amount {
		return &IllegalActionError{Action: a.Name, Reason: ReasonInsufficientResource}
	}
	if a.Usable != nil && !a.Usable(src, env) {
		return &IllegalActionError{Action: a.Name, Reason: ReasonNotUsable}
	}
	return nil
}
