// Package stats defines attributes, jobs, clans and the level tables used to
// derive an actor's base statistics.
package stats

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrUnknownJob       = errors.New("unknown job")
	ErrUnknownRace      = errors.New("unknown race")
	ErrUnknownResource  = errors.New("unknown resource")
)

// Attribute is a primary or secondary statistic.
type Attribute int

const (
	Strength Attribute = iota + 1
	Dexterity
	Vitality
	Intelligence
	Mind
	CriticalHit
	Determination
	DirectHit
	Defense
	MagicDefense
	AttackPower
	SkillSpeed
	AttackMagicPotency
	HealingMagicPotency
	SpellSpeed
	Tenacity
	Piety
)

var attributeNames = map[Attribute]string{
	Strength:            "strength",
	Dexterity:           "dexterity",
	Vitality:            "vitality",
	Intelligence:        "intelligence",
	Mind:                "mind",
	CriticalHit:         "critical_hit",
	Determination:       "determination",
	DirectHit:           "direct_hit",
	Defense:             "defense",
	MagicDefense:        "magic_defense",
	AttackPower:         "attack_power",
	SkillSpeed:          "skill_speed",
	AttackMagicPotency:  "attack_magic_potency",
	HealingMagicPotency: "healing_magic_potency",
	SpellSpeed:          "spell_speed",
	Tenacity:            "tenacity",
	Piety:               "piety",
}

func (a Attribute) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("attribute(%d)", int(a))
}

// MainAttributes are the five attributes scaled by job and clan.
var MainAttributes = []Attribute{Strength, Dexterity, Vitality, Intelligence, Mind}

// ParseAttribute accepts the snake_case name of an attribute. A few common
// abbreviations are accepted as well.
func ParseAttribute(s string) (Attribute, error) {
	key := normalize(s)
	switch key {
	case "str":
		return Strength, nil
	case "dex":
		return Dexterity, nil
	case "vit":
		return Vitality, nil
	case "int":
		return Intelligence, nil
	case "mnd":
		return Mind, nil
	case "crit":
		return CriticalHit, nil
	case "det":
		return Determination, nil
	case "dh":
		return DirectHit, nil
	case "sks":
		return SkillSpeed, nil
	case "sps":
		return SpellSpeed, nil
	case "tnc":
		return Tenacity, nil
	case "pie":
		return Piety, nil
	}
	for attr, name := range attributeNames {
		if name == key {
			return attr, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, s)
}

func (a Attribute) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Attribute) UnmarshalText(text []byte) error {
	parsed, err := ParseAttribute(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Job is a class or job specialization.
type Job int

const (
	Gladiator Job = iota + 1
	Pugilist
	Marauder
	Lancer
	Archer
	Conjurer
	Thaumaturge
	Arcanist
	Rogue
	Paladin
	Monk
	Warrior
	Dragoon
	Bard
	WhiteMage
	BlackMage
	Summoner
	Scholar
	Ninja
	Machinist
	DarkKnight
	Astrologian
	Samurai
	RedMage
	Enemy
)

var jobNames = map[Job]string{
	Gladiator:   "gladiator",
	Pugilist:    "pugilist",
	Marauder:    "marauder",
	Lancer:      "lancer",
	Archer:      "archer",
	Conjurer:    "conjurer",
	Thaumaturge: "thaumaturge",
	Arcanist:    "arcanist",
	Rogue:       "rogue",
	Paladin:     "paladin",
	Monk:        "monk",
	Warrior:     "warrior",
	Dragoon:     "dragoon",
	Bard:        "bard",
	WhiteMage:   "white_mage",
	BlackMage:   "black_mage",
	Summoner:    "summoner",
	Scholar:     "scholar",
	Ninja:       "ninja",
	Machinist:   "machinist",
	DarkKnight:  "dark_knight",
	Astrologian: "astrologian",
	Samurai:     "samurai",
	RedMage:     "red_mage",
	Enemy:       "enemy",
}

func (j Job) String() string {
	if name, ok := jobNames[j]; ok {
		return name
	}
	return fmt.Sprintf("job(%d)", int(j))
}

func ParseJob(s string) (Job, error) {
	key := normalize(s)
	for job, name := range jobNames {
		if name == key {
			return job, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownJob, s)
}

// Role is a job archetype.
type Role int

const (
	RoleDPS Role = iota + 1
	RoleHealer
	RoleTank
)

// Role returns the job's archetype.
func (j Job) Role() Role {
	switch j {
	case Gladiator, Marauder, Paladin, Warrior, DarkKnight:
		return RoleTank
	case Conjurer, WhiteMage, Scholar, Astrologian:
		return RoleHealer
	default:
		return RoleDPS
	}
}

// Race is a clan. Only clans carry attribute bonuses.
type Race int

const (
	Wildwood Race = iota + 1
	Duskwight
	Midlander
	Highlander
	Plainsfolk
	Dunesfolk
	SeekerOfTheSun
	KeeperOfTheMoon
	SeaWolf
	Hellsguard
	Raen
	Xaela
	EnemyRace
)

var raceNames = map[Race]string{
	Wildwood:        "wildwood",
	Duskwight:       "duskwight",
	Midlander:       "midlander",
	Highlander:      "highlander",
	Plainsfolk:      "plainsfolk",
	Dunesfolk:       "dunesfolk",
	SeekerOfTheSun:  "seeker_of_the_sun",
	KeeperOfTheMoon: "keeper_of_the_moon",
	SeaWolf:         "sea_wolf",
	Hellsguard:      "hellsguard",
	Raen:            "raen",
	Xaela:           "xaela",
	EnemyRace:       "enemy",
}

func (r Race) String() string {
	if name, ok := raceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("race(%d)", int(r))
}

func ParseRace(s string) (Race, error) {
	key := normalize(s)
	for race, name := range raceNames {
		if name == key {
			return race, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRace, s)
}

// Resource is a pool an actor draws from.
type Resource int

const (
	HP Resource = iota + 1
	MP
	TP
	Repertoire
)

var resourceNames = map[Resource]string{
	HP:         "hp",
	MP:         "mp",
	TP:         "tp",
	Repertoire: "repertoire",
}

func (r Resource) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("resource(%d)", int(r))
}

func ParseResource(s string) (Resource, error) {
	key := normalize(s)
	for res, name := range resourceNames {
		if name == key {
			return res, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}
