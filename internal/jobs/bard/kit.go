// Package bard is the bard job kit: its actions, auras, traits and a
// built-in priority list.
package bard

import (
	"math"
	"time"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/engine"
	"stormblood-bard-sim/internal/spells"
	"stormblood-bard-sim/internal/stats"
)

// Aura labels.
const (
	StraightShotLabel   = "Straight Shot"
	StraighterShotLabel = "Straighter Shot"
	RagingStrikesLabel  = "Raging Strikes"
	BarrageLabel        = "Barrage"
	VenomousBiteLabel   = "Venomous Bite"
	WindbiteLabel       = "Windbite"
)

const (
	// StraighterShotChance is the chance Heavy Shot readies Straighter Shot.
	StraighterShotChance = 0.2
	// StraightShotCritical scales the critical hit attribute while Straight
	// Shot is up.
	StraightShotCritical = 1.1
	// RagingStrikesMultiplier applies to all damage while Raging Strikes
	// is up.
	RagingStrikesMultiplier = 1.1
	// BarrageMultiplier applies to the next single-target weaponskill.
	BarrageMultiplier = 3.0

	weaponskillTP = 50
	biteTP        = 80
)

// Kit holds one bard's actions and the auras they own. Build a fresh kit
// per run.
type Kit struct {
	Loadout *engine.Loadout
	level   int

	HeavyShot      *spells.Action
	StraightShot   *spells.Action
	VenomousBite   *spells.Action
	Windbite       *spells.Action
	IronJaws       *spells.Action
	RefulgentArrow *spells.Action
	RagingStrikes  *spells.Action
	Barrage        *spells.Action
	Bloodletter    *spells.Action
	RainOfDeath    *spells.Action
	Sidewinder     *spells.Action
	MiserysEnd     *spells.Action
	Shot           *spells.Action

	StraightShotBuff  *effects.Aura
	StraighterShot    *effects.Aura
	RagingStrikesBuff *effects.Aura
	BarrageBuff       *effects.Aura
}

// New builds the kit for bard and installs the trait dexterity bonus on it.
func New(bard *character.Actor) *Kit {
	bard.Bonus = Bonus
	k := &Kit{Loadout: engine.NewLoadout(), level: bard.Level}
	k.buildAuras()
	k.buildActions()

	l := k.Loadout
	for _, a := range []*spells.Action{
		k.HeavyShot, k.StraightShot, k.VenomousBite, k.Windbite, k.IronJaws,
		k.RefulgentArrow, k.RagingStrikes, k.Barrage, k.Bloodletter,
		k.RainOfDeath, k.Sidewinder, k.MiserysEnd,
	} {
		l.AddAction(a)
	}
	for _, a := range []*effects.Aura{k.StraightShotBuff, k.StraighterShot, k.RagingStrikesBuff, k.BarrageBuff} {
		l.AddBuff(a)
	}
	l.AddDebuff(VenomousBiteLabel)
	l.AddDebuff(WindbiteLabel)
	l.AutoAttack = k.Shot
	return k
}

// Combatant wires the kit to bard. A nil decider uses the built-in
// priority list.
func (k *Kit) Combatant(bard *character.Actor, d engine.Decider) *engine.Combatant {
	if d == nil {
		d = k
	}
	return &engine.Combatant{Actor: bard, Decider: d, Loadout: k.Loadout}
}

func (k *Kit) buildAuras() {
	k.StraighterShot = effects.NewAura(StraighterShotLabel, 10*time.Second)

	k.StraightShotBuff = effects.NewAura(StraightShotLabel, 30*time.Second)
	var delta int
	k.StraightShotBuff.OnApply = func(_ *effects.Aura, b effects.Bearer, _ time.Duration) {
		crit := b.Stat(stats.CriticalHit)
		delta = int(math.Floor(float64(crit)*StraightShotCritical)) - crit
		b.AdjustStat(stats.CriticalHit, delta)
	}
	k.StraightShotBuff.OnExpire = func(_ *effects.Aura, b effects.Bearer, _ time.Duration) {
		b.AdjustStat(stats.CriticalHit, -delta)
		delta = 0
	}

	k.RagingStrikesBuff = effects.NewAura(RagingStrikesLabel, 20*time.Second)

	k.BarrageBuff = effects.NewAura(BarrageLabel, 10*time.Second)
	k.BarrageBuff.Refresh = effects.RefreshExtendToMax
	k.BarrageBuff.Extension = 10 * time.Second
}

func (k *Kit) buildActions() {
	k.HeavyShot = k.weaponskill("Heavy Shot", 150, weaponskillTP)
	k.HeavyShot.BuffMultipliers = k.multipliers(true)
	k.HeavyShot.OnExecute = func(x spells.Execution) {
		k.spendBarrage(x)
		if x.Chance(StraighterShotChance) {
			x.ApplyAura(x.Source(), k.StraighterShot)
		}
	}

	k.StraightShot = k.weaponskill("Straight Shot", 140, weaponskillTP)
	k.StraightShot.BuffMultipliers = k.multipliers(true)
	k.StraightShot.Usable = requires(2)
	k.StraightShot.CritChance = func(src *character.Actor, _ spells.Env) (float64, bool) {
		if src.Auras.Has(k.StraighterShot) {
			return 1, true
		}
		return 0, false
	}
	k.StraightShot.OnExecute = func(x spells.Execution) {
		k.spendBarrage(x)
		x.ApplyAura(x.Source(), k.StraightShotBuff)
		if x.Source().Auras.Has(k.StraighterShot) {
			x.Consume(x.Source(), k.StraighterShot)
		}
	}

	k.VenomousBite = k.bite(VenomousBiteLabel, 6, [2]int{100, 120}, [2]int{40, 45})
	k.Windbite = k.bite(WindbiteLabel, 30, [2]int{60, 120}, [2]int{50, 55})

	k.IronJaws = k.weaponskill("Iron Jaws", 100, biteTP)
	k.IronJaws.Usable = requires(56)
	k.IronJaws.OnExecute = func(x spells.Execution) {
		src, target := x.Source(), x.Target()
		for _, owner := range []*spells.Action{k.VenomousBite, k.Windbite} {
			if dot, ok := k.dotOn(src, target, owner.Name); ok {
				x.RefreshDot(target, dot, owner)
			}
		}
	}

	k.RefulgentArrow = k.weaponskill("Refulgent Arrow", 300, 0)
	k.RefulgentArrow.BuffMultipliers = k.multipliers(true)
	k.RefulgentArrow.Usable = func(src *character.Actor, _ spells.Env) bool {
		return src.Level >= 70 && src.Auras.Has(k.StraighterShot)
	}
	k.RefulgentArrow.OnExecute = func(x spells.Execution) {
		k.spendBarrage(x)
		x.Consume(x.Source(), k.StraighterShot)
	}

	k.RagingStrikes = k.ability("Raging Strikes", 0, 80*time.Second)
	k.RagingStrikes.Usable = requires(4)
	k.RagingStrikes.OnExecute = func(x spells.Execution) {
		x.ApplyAura(x.Source(), k.RagingStrikesBuff)
	}

	k.Barrage = k.ability("Barrage", 0, 80*time.Second)
	k.Barrage.Usable = requires(38)
	k.Barrage.OnExecute = func(x spells.Execution) {
		x.ApplyAura(x.Source(), k.BarrageBuff)
	}

	k.Bloodletter = k.ability("Bloodletter", 130, 15*time.Second)
	k.Bloodletter.Usable = requires(12)
	k.RainOfDeath = k.ability("Rain of Death", 100, 15*time.Second)
	k.RainOfDeath.Usable = requires(45)
	k.Bloodletter.SharesCooldownWith = []*spells.Action{k.RainOfDeath}
	k.RainOfDeath.SharesCooldownWith = []*spells.Action{k.Bloodletter}

	k.Sidewinder = k.ability("Sidewinder", 100, 60*time.Second)
	k.Sidewinder.Usable = requires(60)
	k.Sidewinder.PotencyFor = func(src *character.Actor, _ spells.Env) int {
		return sidewinderPotency(src.Level, k.dotsOn(src, src.Target))
	}

	k.MiserysEnd = k.ability("Misery's End", 190, 12*time.Second)
	k.MiserysEnd.Usable = func(src *character.Actor, env spells.Env) bool {
		return src.Level >= 10 && env.InExecute()
	}

	k.Shot = &spells.Action{
		Name:             "Shot",
		Potency:          100,
		PoweredBy:        stats.AttackPower,
		AutoAttack:       true,
		OffGCD:           true,
		TraitMultipliers: traitMultipliers,
		BuffMultipliers:  k.multipliers(false),
	}
}

func (k *Kit) weaponskill(name string, potency, tp int) *spells.Action {
	a := &spells.Action{
		Name:             name,
		Potency:          potency,
		PoweredBy:        stats.AttackPower,
		HastedBy:         stats.SkillSpeed,
		Animation:        spells.DefaultAnimation,
		TraitMultipliers: traitMultipliers,
		BuffMultipliers:  k.multipliers(false),
	}
	if tp > 0 {
		a.Cost = &spells.Cost{Resource: stats.TP, Amount: tp}
	}
	return a
}

func (k *Kit) ability(name string, potency int, recast time.Duration) *spells.Action {
	return &spells.Action{
		Name:             name,
		Potency:          potency,
		PoweredBy:        stats.AttackPower,
		Animation:        spells.DefaultAnimation,
		OffGCD:           true,
		BaseRecast:       recast,
		TraitMultipliers: traitMultipliers,
		BuffMultipliers:  k.multipliers(false),
	}
}

// bite builds a damage-over-time weaponskill. Potencies are indexed by
// whether Bite Mastery is learned.
func (k *Kit) bite(label string, level int, potency, tick [2]int) *spells.Action {
	m := mastery(k.level)
	a := k.weaponskill(label, potency[m], biteTP)
	a.Usable = requires(level)
	a.TickPotency = tick[m]
	a.OnExecute = func(x spells.Execution) {
		x.ApplyDot(x.Target(), k.dot(x.Source(), x.Target(), label))
	}
	return a
}

func mastery(level int) int {
	if Learned(TraitBiteMastery, level) {
		return 1
	}
	return 0
}

// DotDuration is how long the bites last at level.
func DotDuration(level int) time.Duration {
	if Learned(TraitBiteMastery, level) {
		return 30 * time.Second
	}
	return 15 * time.Second
}

// dot returns src's aura for label on target, creating it on first use.
func (k *Kit) dot(src, target *character.Actor, label string) *effects.Aura {
	return src.DataFor(target).Aura(label, func() *effects.Aura {
		a := effects.NewAura(label, DotDuration(k.level))
		a.TickInterval = engine.DotTickInterval
		return a
	})
}

// dotOn returns src's aura for label when it is present on target.
func (k *Kit) dotOn(src, target *character.Actor, label string) (*effects.Aura, bool) {
	if target == nil {
		return nil, false
	}
	a, ok := src.DataFor(target).Lookup(label)
	if !ok || !target.Auras.Has(a) {
		return nil, false
	}
	return a, true
}

func (k *Kit) dotsOn(src, target *character.Actor) int {
	n := 0
	for _, label := range []string{VenomousBiteLabel, WindbiteLabel} {
		if _, ok := k.dotOn(src, target, label); ok {
			n++
		}
	}
	return n
}

func sidewinderPotency(level, dots int) int {
	if !Learned(TraitEnhancedSidewinder, level) {
		return 100
	}
	switch dots {
	case 2:
		return 260
	case 1:
		return 175
	}
	return 100
}

func traitMultipliers(src *character.Actor) []float64 {
	return Traits(src.Level)
}

// multipliers returns the buff strategy of an action. Barrage only boosts
// single-hit weaponskills.
func (k *Kit) multipliers(barrage bool) func(*character.Actor, spells.Env) []float64 {
	return func(src *character.Actor, _ spells.Env) []float64 {
		var out []float64
		if src.Auras.Has(k.RagingStrikesBuff) {
			out = append(out, RagingStrikesMultiplier)
		}
		if barrage && src.Auras.Has(k.BarrageBuff) {
			out = append(out, BarrageMultiplier)
		}
		return out
	}
}

func (k *Kit) spendBarrage(x spells.Execution) {
	if x.Source().Auras.Has(k.BarrageBuff) {
		x.Consume(x.Source(), k.BarrageBuff)
	}
}

func requires(level int) func(*character.Actor, spells.Env) bool {
	return func(src *character.Actor, _ spells.Env) bool {
		return src.Level >= level
	}
}
