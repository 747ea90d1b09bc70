package bard

import "stormblood-bard-sim/internal/stats"

// Trait identifiers.
const (
	TraitIncreasedAction1   = "increased_action_damage"
	TraitIncreasedAction2   = "increased_action_damage_ii"
	TraitIncreasedDex1      = "increased_dexterity"
	TraitIncreasedDex2      = "increased_dexterity_ii"
	TraitIncreasedDex3      = "increased_dexterity_iii"
	TraitBiteMastery        = "bite_mastery"
	TraitEnhancedSidewinder = "enhanced_sidewinder"
)

var traitLevel = map[string]int{
	TraitIncreasedDex1:      20,
	TraitIncreasedAction1:   20,
	TraitIncreasedDex2:      40,
	TraitIncreasedAction2:   40,
	TraitIncreasedDex3:      60,
	TraitBiteMastery:        64,
	TraitEnhancedSidewinder: 64,
}

var dexterityBonus = map[string]int{
	TraitIncreasedDex1: 8,
	TraitIncreasedDex2: 16,
	TraitIncreasedDex3: 24,
}

const (
	actionDamageI  = 1.1
	actionDamageII = 1.2
)

// Learned reports whether the trait is active at level.
func Learned(trait string, level int) bool {
	min, ok := traitLevel[trait]
	return ok && level >= min
}

// KnownTraits returns every trait with the level it is learned at.
func KnownTraits() map[string]int {
	out := make(map[string]int, len(traitLevel))
	for k, v := range traitLevel {
		out[k] = v
	}
	return out
}

// Bonus is the dexterity the increased-dexterity traits add at level.
func Bonus(level int) map[stats.Attribute]int {
	dex := 0
	for trait, v := range dexterityBonus {
		if Learned(trait, level) {
			dex += v
		}
	}
	if dex == 0 {
		return nil
	}
	return map[stats.Attribute]int{stats.Dexterity: dex}
}

// Traits returns the damage multipliers the increased-action-damage traits
// apply at level, in the order they are learned.
func Traits(level int) []float64 {
	var out []float64
	if Learned(TraitIncreasedAction1, level) {
		out = append(out, actionDamageI)
	}
	if Learned(TraitIncreasedAction2, level) {
		out = append(out, actionDamageII)
	}
	return out
}
