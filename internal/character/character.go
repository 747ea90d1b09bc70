// Package character holds combat participants and their per-run state.
package character

import (
	"fmt"
	"time"

	"stormblood-bard-sim/internal/effects"
	"stormblood-bard-sim/internal/gear"
	"stormblood-bard-sim/internal/stats"
)

// Pool is a resource with a current and maximum amount.
type Pool struct {
	Current int
	Max     int
}

// TargetData is what a source actor remembers about one target, such as the
// damage-over-time auras it keeps there.
type TargetData struct {
	Target *Actor
	auras  map[string]*effects.Aura
}

// Aura returns the aura stored under label, building it on first use.
func (td *TargetData) Aura(label string, build func() *effects.Aura) *effects.Aura {
	if a, ok := td.auras[label]; ok {
		return a
	}
	a := build()
	td.auras[label] = a
	return a
}

// Lookup returns the aura stored under label without creating it.
func (td *TargetData) Lookup(label string) (*effects.Aura, bool) {
	a, ok := td.auras[label]
	return a, ok
}

// Actor represents a participant in an encounter.
type Actor struct {
	ID    int
	Label string
	Job   stats.Job
	Race  stats.Race
	Level int
	Gear  *gear.Set

	// Bonus adds job-specific statistics on top of level, clan and gear,
	// e.g. trait-granted main stat.
	Bonus func(level int) map[stats.Attribute]int

	attrs map[stats.Attribute]int
	pools map[stats.Resource]*Pool

	AnimationLock effects.Timer
	GCDLock       effects.Timer

	Auras  effects.Set
	Target *Actor

	targetData map[*Actor]*TargetData
}

// New creates an actor with the given identity and equipment. Statistics are
// computed by Arise.
func New(id int, label string, job stats.Job, race stats.Race, level int, set *gear.Set) *Actor {
	if set == nil {
		set = gear.NewSet()
	}
	return &Actor{
		ID:         id,
		Label:      label,
		Job:        job,
		Race:       race,
		Level:      level,
		Gear:       set,
		attrs:      make(map[stats.Attribute]int),
		pools:      make(map[stats.Resource]*Pool),
		targetData: make(map[*Actor]*TargetData),
	}
}

func (a *Actor) Name() string {
	return a.Label
}

func (a *Actor) String() string {
	return fmt.Sprintf("<%s %s>", a.Job, a.Label)
}

// Arise prepares the actor for combat: auras and target data are cleared,
// statistics and pools are recomputed and lockouts are released.
func (a *Actor) Arise() error {
	a.Auras.Clear()
	for k := range a.targetData {
		delete(a.targetData, k)
	}
	a.AnimationLock.Clear()
	a.GCDLock.Clear()

	if a.Job == stats.Enemy {
		a.attrs = make(map[stats.Attribute]int)
		a.pools = map[stats.Resource]*Pool{
			stats.HP: {Current: 1, Max: 1},
		}
		return nil
	}

	base, err := stats.Base(a.Job, a.Race, a.Level)
	if err != nil {
		return fmt.Errorf("arise %s: %w", a.Label, err)
	}
	for attr, v := range a.Gear.Bonuses() {
		base[attr] += v
	}
	if a.Bonus != nil {
		for attr, v := range a.Bonus(a.Level) {
			base[attr] += v
		}
	}
	a.attrs = base

	maxima, err := stats.Pools(a.Job, a.Level, a.attrs)
	if err != nil {
		return fmt.Errorf("arise %s: %w", a.Label, err)
	}
	a.pools = make(map[stats.Resource]*Pool, len(maxima))
	for res, v := range maxima {
		a.pools[res] = &Pool{Current: v, Max: v}
	}
	return nil
}

// Stat returns the current value of attr.
func (a *Actor) Stat(attr stats.Attribute) int {
	return a.attrs[attr]
}

// AdjustStat changes attr by delta.
func (a *Actor) AdjustStat(attr stats.Attribute, delta int) {
	a.attrs[attr] += delta
}

// SetStat overwrites attr. Intended for tests and fixed-stat targets.
func (a *Actor) SetStat(attr stats.Attribute, v int) {
	a.attrs[attr] = v
}

// Stats returns a copy of the current statistics.
func (a *Actor) Stats() map[stats.Attribute]int {
	out := make(map[stats.Attribute]int, len(a.attrs))
	for k, v := range a.attrs {
		out[k] = v
	}
	return out
}

// Resource returns the pool for res. Missing pools read as empty.
func (a *Actor) Resource(res stats.Resource) Pool {
	if p, ok := a.pools[res]; ok {
		return *p
	}
	return Pool{}
}

// SetPool replaces the pool for res.
func (a *Actor) SetPool(res stats.Resource, current, max int) {
	a.pools[res] = &Pool{Current: current, Max: max}
}

// AdjustResource adds amount to res, clamped to [0, max], and returns the
// new level.
func (a *Actor) AdjustResource(res stats.Resource, amount int) int {
	p, ok := a.pools[res]
	if !ok {
		return 0
	}
	p.Current += amount
	if p.Current > p.Max {
		p.Current = p.Max
	}
	if p.Current < 0 {
		p.Current = 0
	}
	return p.Current
}

// Resources lists the pools the actor has.
func (a *Actor) Resources() []stats.Resource {
	out := make([]stats.Resource, 0, len(a.pools))
	for _, res := range []stats.Resource{stats.HP, stats.MP, stats.TP, stats.Repertoire} {
		if _, ok := a.pools[res]; ok {
			out = append(out, res)
		}
	}
	return out
}

// GCDReady reports whether the global cooldown has elapsed.
func (a *Actor) GCDReady(now time.Duration) bool {
	return a.GCDLock.Ready(now)
}

// AnimationReady reports whether the animation lock has elapsed.
func (a *Actor) AnimationReady(now time.Duration) bool {
	return a.AnimationLock.Ready(now)
}

// NextUnlock returns the earliest lock release strictly after now.
func (a *Actor) NextUnlock(now time.Duration) (time.Duration, bool) {
	var best time.Duration
	found := false
	for _, at := range []time.Duration{a.AnimationLock.ReadyAt(), a.GCDLock.ReadyAt()} {
		if at > now && (!found || at < best) {
			best, found = at, true
		}
	}
	return best, found
}

// TargetData returns the state the actor keeps for its current target,
// creating it on first access.
func (a *Actor) TargetData() *TargetData {
	return a.DataFor(a.Target)
}

// DataFor returns the state kept for target, creating it on first access.
func (a *Actor) DataFor(target *Actor) *TargetData {
	if td, ok := a.targetData[target]; ok {
		return td
	}
	td := &TargetData{Target: target, auras: make(map[string]*effects.Aura)}
	a.targetData[target] = td
	return td
}
