package engine

import (
	"fmt"
	"time"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/spells"
	"stormblood-bard-sim/internal/stats"
)

// Kind discriminates the event union.
type Kind int

const (
	KindCombatStart Kind = iota + 1
	KindCombatEnd
	KindActorReady
	KindApplyAura
	KindExpireAura
	KindRefreshAura
	KindConsumeAura
	KindApplyAuraStack
	KindDamage
	KindDotTick
	KindResource
	KindServerTick
	KindSwing
)

var kindNames = map[Kind]string{
	KindCombatStart:    "CombatStart",
	KindCombatEnd:      "CombatEnd",
	KindActorReady:     "ActorReady",
	KindApplyAura:      "ApplyAura",
	KindExpireAura:     "ExpireAura",
	KindRefreshAura:    "RefreshAura",
	KindConsumeAura:    "ConsumeAura",
	KindApplyAuraStack: "ApplyAuraStack",
	KindDamage:         "Damage",
	KindDotTick:        "DotTick",
	KindResource:       "Resource",
	KindServerTick:     "ServerTick",
	KindSwing:          "Swing",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is the payload stored in the queue's arena. Only the fields that
// belong to Kind are meaningful.
type Event struct {
	Kind Kind

	// ActorReady, Swing.
	Combatant *Combatant

	Source *character.Actor
	Target *character.Actor

	// Aura events and DotTick.
	Aura *effects.Aura
	// RefreshAura: time left on the aura when the refresh was scheduled.
	Remains time.Duration

	// Damage, DotTick, Swing.
	Action  *spells.Action
	Outcome *Outcome

	// DotTick.
	TicksRemain int

	// Resource.
	Resource stats.Resource
	Amount   int
}

func (e *Event) String() string {
	switch e.Kind {
	case KindActorReady, KindSwing:
		if e.Combatant != nil {
			return fmt.Sprintf("<%s actor=%s>", e.Kind, e.Combatant.Actor.Name())
		}
	case KindApplyAura, KindExpireAura, KindRefreshAura, KindConsumeAura, KindApplyAuraStack:
		return fmt.Sprintf("<%s aura=%s target=%s>", e.Kind, e.Aura.Label, nameOf(e.Target))
	case KindDamage:
		return fmt.Sprintf("<%s source=%s target=%s action=%s>", e.Kind, nameOf(e.Source), nameOf(e.Target), e.Action.Name)
	case KindDotTick:
		return fmt.Sprintf("<%s source=%s target=%s aura=%s ticks=%d>", e.Kind, nameOf(e.Source), nameOf(e.Target), e.Aura.Label, e.TicksRemain)
	case KindResource:
		return fmt.Sprintf("<%s target=%s resource=%s amount=%d>", e.Kind, nameOf(e.Target), e.Resource, e.Amount)
	}
	return fmt.Sprintf("<%s>", e.Kind)
}

func nameOf(a *character.Actor) string {
	if a == nil {
		return "-"
	}
	return a.Name()
}
