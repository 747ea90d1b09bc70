// Package gear models equipment, weapons and materia melds.
package gear

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"stormblood-bard-sim/internal/stats"
)

var (
	ErrSlotMismatch = errors.New("item does not fit slot")
	ErrUnknownSlot  = errors.New("unknown slot")
	ErrNoWeapon     = errors.New("no weapon equipped")
)

// Slot is a bit set of equipment positions. An item's slot may cover
// several positions (rings fit either hand).
type Slot uint32

const (
	Weapon Slot = 1 << iota
	Head
	Body
	Hands
	Waist
	Legs
	Feet
	OffHand
	Earrings
	Necklace
	Bracelet
	LeftRing
	RightRing

	Ring = LeftRing | RightRing
)

var slotNames = []struct {
	slot Slot
	name string
}{
	{Weapon, "weapon"},
	{Head, "head"},
	{Body, "body"},
	{Hands, "hands"},
	{Waist, "waist"},
	{Legs, "legs"},
	{Feet, "feet"},
	{OffHand, "off_hand"},
	{Earrings, "earrings"},
	{Necklace, "necklace"},
	{Bracelet, "bracelet"},
	{LeftRing, "left_ring"},
	{RightRing, "right_ring"},
	{Ring, "ring"},
}

func (s Slot) String() string {
	for _, sn := range slotNames {
		if sn.slot == s {
			return sn.name
		}
	}
	return fmt.Sprintf("slot(%#x)", uint32(s))
}

// ParseSlot accepts names like "head" or "left_ring".
func ParseSlot(name string) (Slot, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, sn := range slotNames {
		if sn.name == key {
			return sn.slot, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSlot, name)
}

// Materia adds a flat bonus to one attribute.
type Materia struct {
	Name      string
	Attribute stats.Attribute
	Bonus     int
}

// Item is a piece of equipment.
type Item struct {
	Name      string
	ItemLevel int
	Slot      Slot
	Stats     map[stats.Attribute]int
	Melds     []Materia

	// Weapon-only fields.
	PhysicalDamage int
	MagicDamage    int
	Delay          time.Duration
	AutoAttack     float64
}

// Set maps equipped positions to items.
type Set struct {
	items map[Slot]*Item
}

func NewSet() *Set {
	return &Set{items: make(map[Slot]*Item)}
}

// Equip places item in slot. The slot must be a single position that the
// item fits.
func (s *Set) Equip(slot Slot, item *Item) error {
	if item == nil {
		return fmt.Errorf("equip %s: nil item", slot)
	}
	if slot == 0 || slot&(slot-1) != 0 {
		return fmt.Errorf("equip %s into %s: %w", item.Name, slot, ErrUnknownSlot)
	}
	if slot&item.Slot == 0 {
		return fmt.Errorf("equip %s (%s) into %s: %w", item.Name, item.Slot, slot, ErrSlotMismatch)
	}
	s.items[slot] = item
	return nil
}

// Item returns the item in slot, if any.
func (s *Set) Item(slot Slot) (*Item, bool) {
	if s == nil {
		return nil, false
	}
	it, ok := s.items[slot]
	return it, ok
}

// Weapon returns the equipped main-hand weapon.
func (s *Set) Weapon() (*Item, error) {
	if it, ok := s.Item(Weapon); ok {
		return it, nil
	}
	return nil, ErrNoWeapon
}

// Slots returns the occupied slots in bit order.
func (s *Set) Slots() []Slot {
	if s == nil {
		return nil
	}
	out := make([]Slot, 0, len(s.items))
	for slot := range s.items {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Bonuses sums the stats of all equipped items and their melds.
func (s *Set) Bonuses() map[stats.Attribute]int {
	out := make(map[stats.Attribute]int)
	if s == nil {
		return out
	}
	for _, it := range s.items {
		for attr, v := range it.Stats {
			out[attr] += v
		}
		for _, m := range it.Melds {
			out[m.Attribute] += m.Bonus
		}
	}
	return out
}
