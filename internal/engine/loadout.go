package engine

import (
	"sort"
	"strings"

	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/spells"
	"stormblood-bard-sim/internal/stats"
)

// Key normalises a display name such as "Misery's End" to the identifier
// used by rotation files ("miserys_end").
func Key(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r == '\'':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Loadout is everything a combatant brings to a fight: its actions, the
// auras it owns and the names rotations may refer to.
type Loadout struct {
	actions    map[string]*spells.Action
	actionList []*spells.Action
	buffs      map[string]*effects.Aura
	debuffs    map[string]string

	// AutoAttack, when set, swings on the weapon delay for the whole fight.
	AutoAttack *spells.Action
}

func NewLoadout() *Loadout {
	return &Loadout{
		actions: make(map[string]*spells.Action),
		buffs:   make(map[string]*effects.Aura),
		debuffs: make(map[string]string),
	}
}

// AddAction registers a by its keyed name.
func (l *Loadout) AddAction(a *spells.Action) *spells.Action {
	key := Key(a.Name)
	if _, dup := l.actions[key]; !dup {
		l.actionList = append(l.actionList, a)
	}
	l.actions[key] = a
	return a
}

// AddBuff registers an aura the combatant puts on itself.
func (l *Loadout) AddBuff(a *effects.Aura) *effects.Aura {
	l.buffs[Key(a.Label)] = a
	return a
}

// AddDebuff registers the label of an aura kept on targets.
func (l *Loadout) AddDebuff(label string) {
	l.debuffs[Key(label)] = label
}

func (l *Loadout) Action(name string) (*spells.Action, bool) {
	a, ok := l.actions[Key(name)]
	return a, ok
}

func (l *Loadout) Buff(name string) (*effects.Aura, bool) {
	a, ok := l.buffs[Key(name)]
	return a, ok
}

func (l *Loadout) DebuffLabel(name string) (string, bool) {
	label, ok := l.debuffs[Key(name)]
	return label, ok
}

// Actions returns the registered actions in registration order.
func (l *Loadout) Actions() []*spells.Action {
	return l.actionList
}

// BuffKeys lists the keyed names of the registered buffs, sorted.
func (l *Loadout) BuffKeys() []string {
	return sortedKeys(l.buffs)
}

// DebuffKeys lists the keyed names of the registered debuffs, sorted.
func (l *Loadout) DebuffKeys() []string {
	return sortedKeys(l.debuffs)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (l *Loadout) HasAction(name string) bool {
	_, ok := l.Action(name)
	return ok
}

func (l *Loadout) HasBuff(name string) bool {
	_, ok := l.Buff(name)
	return ok
}

func (l *Loadout) HasDebuff(name string) bool {
	_, ok := l.DebuffLabel(name)
	return ok
}

func (l *Loadout) HasResource(name string) bool {
	_, err := stats.ParseResource(name)
	return err == nil
}

func (l *Loadout) reset() {
	for _, a := range l.actionList {
		a.Reset()
	}
	if l.AutoAttack != nil {
		l.AutoAttack.Reset()
	}
	for _, a := range l.buffs {
		a.Reset()
	}
}
