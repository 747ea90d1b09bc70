package engine

import (
	"go.uber.org/zap"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/formula"
	"stormblood-bard-sim/internal/report"
	"stormblood-bard-sim/internal/spells"
	"stormblood-bard-sim/internal/stats"
)

// Outcome is one damage instance. Potency and multipliers are captured when
// it is created; the critical and direct-hit draws happen once, the first
// time either is asked for, and are then cached.
type Outcome struct {
	Source *character.Actor
	Target *character.Actor
	Action *spells.Action
	Label  string

	Potency int
	Traits  []float64
	Buffs   []float64

	Dot        bool
	AutoAttack bool

	critP       float64
	critFixed   bool
	directP     float64
	directFixed bool

	rolled bool
	roll   formula.Roll
}

func (s *Simulation) newOutcome(src, target *character.Actor, a *spells.Action, potency int) *Outcome {
	o := &Outcome{
		Source:     src,
		Target:     target,
		Action:     a,
		Label:      a.Name,
		Potency:    potency,
		AutoAttack: a.AutoAttack,
	}
	if a.TraitMultipliers != nil {
		o.Traits = a.TraitMultipliers(src)
	}
	if a.BuffMultipliers != nil {
		o.Buffs = a.BuffMultipliers(src, s)
	}
	if a.GuaranteedCrit {
		o.critP, o.critFixed = 1, true
	} else if a.CritChance != nil {
		if p, override := a.CritChance(src, s); override {
			o.critP, o.critFixed = p, true
		}
	}
	if a.DirectChance != nil {
		if p, override := a.DirectChance(src, s); override {
			o.directP, o.directFixed = p, true
		}
	}
	return o
}

// snapshot fixes the chances at their current values. Damage-over-time
// ticks keep the chances of the moment they were applied.
func (o *Outcome) snapshot(s *Simulation) {
	o.critP, o.directP = o.chances(s)
	o.critFixed, o.directFixed = true, true
}

func (o *Outcome) chances(s *Simulation) (crit, direct float64) {
	lv, err := stats.ForLevel(o.Source.Level)
	if err != nil {
		return 0, 0
	}
	crit, direct = o.critP, o.directP
	if !o.critFixed {
		crit = formula.CriticalChance(lv, o.Source.Stat(stats.CriticalHit))
		if o.Action.CritChance != nil {
			bonus, _ := o.Action.CritChance(o.Source, s)
			crit += bonus
		}
	}
	if !o.directFixed {
		direct = formula.DirectHitChance(lv, o.Source.Stat(stats.DirectHit))
		if o.Action.DirectChance != nil {
			bonus, _ := o.Action.DirectChance(o.Source, s)
			direct += bonus
		}
	}
	return crit, direct
}

// Roll returns the cached draws, drawing them on first use.
func (o *Outcome) Roll(s *Simulation) formula.Roll {
	if o.rolled {
		return o.roll
	}
	crit, direct := o.chances(s)
	o.roll = formula.Roll{
		Critical: formula.Draw(s.rng, crit),
		Direct:   formula.Draw(s.rng, direct),
	}
	o.rolled = true
	return o.roll
}

// tick returns a fresh outcome with the same snapshot and no draws.
func (o *Outcome) tick() *Outcome {
	c := *o
	c.rolled = false
	c.roll = formula.Roll{}
	return &c
}

func (s *Simulation) input(o *Outcome) (formula.Input, error) {
	src := o.Source
	lv, err := stats.ForLevel(src.Level)
	if err != nil {
		return formula.Input{}, err
	}
	attr := formula.AttackAttribute(src.Job, o.Action.PoweredBy)
	in := formula.Input{
		Level:         lv,
		JobModifier:   stats.JobModifier(src.Job, attr),
		AttackRating:  src.Stat(attr),
		Determination: src.Stat(stats.Determination),
		Tenacity:      src.Stat(stats.Tenacity),
		CriticalHit:   src.Stat(stats.CriticalHit),
		DirectHit:     src.Stat(stats.DirectHit),
		Speed:         src.Stat(speedAttribute(o.Action)),
		Potency:       o.Potency,
		Traits:        o.Traits,
		Buffs:         o.Buffs,
	}
	weapon, err := src.Gear.Weapon()
	if err != nil {
		return formula.Input{}, err
	}
	in.WeaponDelay = weapon.Delay
	switch o.Action.PoweredBy {
	case stats.AttackMagicPotency, stats.HealingMagicPotency:
		in.WeaponDamage = weapon.MagicDamage
	default:
		in.WeaponDamage = weapon.PhysicalDamage
	}
	return in, nil
}

func speedAttribute(a *spells.Action) stats.Attribute {
	if a.HastedBy != 0 {
		return a.HastedBy
	}
	switch a.PoweredBy {
	case stats.AttackMagicPotency, stats.HealingMagicPotency:
		return stats.SpellSpeed
	}
	return stats.SkillSpeed
}

// resolve computes and records o.
func (s *Simulation) resolve(o *Outcome) int {
	in, err := s.input(o)
	if err != nil {
		s.log.Warn("damage input", zap.String("action", o.Label), zap.Error(err))
		return 0
	}
	roll := o.Roll(s)
	jitter := formula.Jitter(s.rng)
	var amount int
	switch {
	case o.Dot:
		amount = formula.Tick(in, roll, jitter)
	case o.AutoAttack:
		amount = formula.AutoAttack(in, roll, jitter)
	default:
		amount = formula.Direct(in, roll, jitter)
	}
	s.sink.Damage(report.Damage{
		Timestamp:  s.Now(),
		Source:     o.Source.Name(),
		Target:     o.Target.Name(),
		Action:     o.Label,
		Potency:    o.Potency,
		Critical:   roll.Critical,
		Direct:     roll.Direct,
		Dot:        o.Dot,
		AutoAttack: o.AutoAttack,
		Amount:     amount,
	})
	return amount
}

func (s *Simulation) damage(ev *Event) {
	s.resolve(ev.Outcome)
}
