package apl

import (
	"fmt"
	"strings"
)

// Catalog answers which names a rotation may refer to. A combatant's
// loadout implements it.
type Catalog interface {
	HasAction(name string) bool
	HasBuff(name string) bool
	HasDebuff(name string) bool
	HasResource(name string) bool
}

// normalizeName turns "Misery's End" into "miserys_end".
func normalizeName(name string) string {
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

type validator struct {
	catalog Catalog
}

func (v validator) check(kind, name string, known func(string) bool) (string, error) {
	n := normalizeName(name)
	if n == "" {
		return n, fmt.Errorf("%s name missing", kind)
	}
	if v.catalog != nil && !known(n) {
		return "", fmt.Errorf("unknown %s '%s'", kind, name)
	}
	return n, nil
}

func (v validator) action(name string) (string, error) {
	return v.check("action", name, func(n string) bool { return v.catalog.HasAction(n) })
}

func (v validator) buff(name string) (string, error) {
	return v.check("buff", name, func(n string) bool { return v.catalog.HasBuff(n) })
}

func (v validator) debuff(name string) (string, error) {
	return v.check("debuff", name, func(n string) bool { return v.catalog.HasDebuff(n) })
}

func (v validator) resource(name string) (string, error) {
	return v.check("resource", name, func(n string) bool { return v.catalog.HasResource(n) })
}

// cooldown names map to actions
func (v validator) cooldown(name string) (string, error) {
	return v.action(name)
}
