package bard

import (
	"time"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/engine"
)

// refreshWindow is how early buffs and damage-over-time auras are renewed.
const refreshWindow = 3 * time.Second

// Decide is the built-in priority list. Weaponskills come first; while the
// global cooldown runs they are illegal and the abilities below get woven.
func (k *Kit) Decide(s *engine.Simulation, bard *character.Actor) []engine.Choice {
	ironJaws := bard.Level >= 56
	biteDue := func(label string) func() bool {
		return func() bool {
			left := k.dotRemains(s, bard, label)
			if ironJaws {
				return left == 0
			}
			return left < refreshWindow
		}
	}

	return []engine.Choice{
		engine.Use(k.RefulgentArrow),
		engine.UseIf(k.StraightShot, func() bool {
			return bard.Auras.Has(k.StraighterShot) || k.StraightShotBuff.Remains(s) < refreshWindow
		}),
		engine.UseIf(k.IronJaws, func() bool {
			vb := k.dotRemains(s, bard, VenomousBiteLabel)
			wb := k.dotRemains(s, bard, WindbiteLabel)
			return vb > 0 && wb > 0 && min(vb, wb) < refreshWindow
		}),
		engine.UseIf(k.VenomousBite, biteDue(VenomousBiteLabel)),
		engine.UseIf(k.Windbite, biteDue(WindbiteLabel)),
		engine.Use(k.HeavyShot),

		engine.Use(k.RagingStrikes),
		engine.UseIf(k.Barrage, func() bool { return bard.Auras.Has(k.RagingStrikesBuff) }),
		engine.UseIf(k.Sidewinder, func() bool {
			return k.dotsOn(bard, bard.Target) == 2 || !Learned(TraitEnhancedSidewinder, bard.Level)
		}),
		engine.Use(k.MiserysEnd),
		engine.Use(k.Bloodletter),
	}
}

func (k *Kit) dotRemains(s *engine.Simulation, bard *character.Actor, label string) time.Duration {
	a, ok := k.dotOn(bard, bard.Target, label)
	if !ok {
		return 0
	}
	return a.Remains(s)
}
