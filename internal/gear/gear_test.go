package gear

import (
	"errors"
	"testing"
	"time"

	"stormblood-bard-sim/internal/stats"
)

func kujakuoKai() *Item {
	return &Item{
		Name:           "Kujakuo Kai",
		ItemLevel:      370,
		Slot:           Weapon,
		PhysicalDamage: 104,
		MagicDamage:    70,
		Delay:          3040 * time.Millisecond,
		AutoAttack:     105.38,
		Stats: map[stats.Attribute]int{
			stats.Dexterity:   347,
			stats.Vitality:    380,
			stats.CriticalHit: 218,
			stats.DirectHit:   311,
		},
	}
}

func TestEquipAppliesStatsAndMelds(t *testing.T) {
	bow := kujakuoKai()
	bow.Melds = []Materia{
		{Name: "Savage Aim VI", Attribute: stats.CriticalHit, Bonus: 40},
		{Name: "Savage Aim VI", Attribute: stats.CriticalHit, Bonus: 40},
	}
	set := NewSet()
	if err := set.Equip(Weapon, bow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := set.Bonuses()
	if got[stats.Dexterity] != 347 {
		t.Fatalf("expected 347 dexterity, got %d", got[stats.Dexterity])
	}
	if got[stats.CriticalHit] != 218+80 {
		t.Fatalf("expected melded critical hit, got %d", got[stats.CriticalHit])
	}
}

func TestEquipRejectsSlotMismatch(t *testing.T) {
	set := NewSet()
	err := set.Equip(Head, kujakuoKai())
	if !errors.Is(err, ErrSlotMismatch) {
		t.Fatalf("expected ErrSlotMismatch, got %v", err)
	}
	if _, ok := set.Item(Head); ok {
		t.Fatalf("expected mismatched item not to be equipped")
	}
}

func TestRingFitsEitherHand(t *testing.T) {
	ring := &Item{Name: "Ring", Slot: Ring}
	set := NewSet()
	if err := set.Equip(LeftRing, ring); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := set.Equip(RightRing, ring); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := set.Equip(Ring, ring); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected combined slot to be rejected, got %v", err)
	}
}

func TestWeaponMissing(t *testing.T) {
	if _, err := NewSet().Weapon(); !errors.Is(err, ErrNoWeapon) {
		t.Fatalf("expected ErrNoWeapon, got %v", err)
	}
}
