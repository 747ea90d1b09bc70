package stats

import (
	"errors"
	"fmt"
	"math"
)

// MaxLevel is the highest level the tables cover.
const MaxLevel = 70

var ErrLevelOutOfRange = errors.New("level out of range")

var mainStatPerLevel = [...]int{
	0, 20, 21, 22, 24, 26, 27, 29, 31, 33, 35, 36, 38, 41, 44, 46, 49, 52, 54, 57, 60, 63, 67, 71, 74, 78, 81, 85,
	89, 92, 97, 101, 106, 110, 115, 119, 124, 128, 134, 139, 144, 150, 155, 161, 166, 171, 177, 183, 189, 196, 202, 204,
	205, 207, 209, 210, 212, 214, 215, 217, 218, 224, 228, 236, 244, 252, 260, 268, 276, 284, 292,
}

var subStatPerLevel = [...]int{
	0, 56, 57, 60, 62, 65, 68, 70, 73, 76, 78, 82, 85, 89, 93, 96, 100, 104, 109, 113, 116, 122, 127, 133, 138, 144,
	150, 155, 162, 168, 173, 181, 188, 194, 202, 209, 215, 223, 229, 236, 244, 253, 263, 272, 283, 292, 302, 311, 322,
	331, 341, 342, 344, 345, 346, 347, 349, 350, 351, 352, 354, 355, 356, 357, 358, 359, 360, 361, 362, 363, 364,
}

var divisorPerLevel = [...]int{
	0, 56, 57, 60, 62, 65, 68, 70, 73, 76, 78, 82, 85, 89, 93, 96, 100, 104, 109, 113, 116, 122, 127, 133, 138, 144,
	150, 155, 162, 168, 173, 181, 188, 194, 202, 209, 215, 223, 229, 236, 244, 253, 263, 272, 283, 292, 302, 311, 322,
	331, 341, 393, 444, 496, 548, 600, 651, 703, 755, 806, 858, 941, 1032, 1133, 1243, 1364, 1497, 1643, 1802, 1978,
	2170,
}

var pietyPerLevel = [...]int{
	0, 50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100, 105, 110, 115, 120, 125, 130, 135, 140, 145, 150, 155, 160, 165,
	170, 175, 180, 185, 190, 195, 200, 205, 210, 215, 220, 225, 230, 235, 240, 245, 250, 255, 260, 265, 270, 275, 280,
	285, 290, 300, 315, 330, 360, 390, 420, 450, 480, 510, 540, 620, 650, 680, 710, 740, 770, 800, 830, 860, 890, 890,
}

// Level bundles the per-level constants the formulas divide by.
type Level struct {
	Level    int
	MainStat int
	SubStat  int
	Divisor  int
	Piety    int
}

// ForLevel returns the constants for level.
func ForLevel(level int) (Level, error) {
	if level < 1 || level > MaxLevel {
		return Level{}, fmt.Errorf("%w: %d", ErrLevelOutOfRange, level)
	}
	return Level{
		Level:    level,
		MainStat: mainStatPerLevel[level],
		SubStat:  subStatPerLevel[level],
		Divisor:  divisorPerLevel[level],
		Piety:    pietyPerLevel[level],
	}, nil
}

type mainStats [5]int // str, dex, vit, int, mnd

func (m mainStats) get(a Attribute) int {
	switch a {
	case Strength:
		return m[0]
	case Dexterity:
		return m[1]
	case Vitality:
		return m[2]
	case Intelligence:
		return m[3]
	case Mind:
		return m[4]
	}
	return 0
}

var jobBaseStats = map[Job]mainStats{
	Gladiator:   {95, 90, 100, 50, 95},
	Pugilist:    {100, 100, 95, 45, 85},
	Marauder:    {100, 90, 100, 30, 50},
	Lancer:      {105, 95, 100, 40, 60},
	Archer:      {85, 105, 95, 80, 75},
	Conjurer:    {50, 100, 95, 100, 105},
	Thaumaturge: {40, 95, 95, 105, 70},
	Paladin:     {100, 95, 110, 60, 100},
	Monk:        {110, 105, 100, 50, 90},
	Warrior:     {105, 95, 110, 40, 55},
	Dragoon:     {115, 100, 105, 45, 65},
	Bard:        {90, 115, 100, 85, 80},
	WhiteMage:   {55, 105, 100, 105, 115},
	BlackMage:   {45, 100, 100, 115, 75},
	Arcanist:    {85, 95, 95, 105, 75},
	Summoner:    {90, 100, 100, 115, 80},
	Scholar:     {90, 100, 100, 105, 115},
	Rogue:       {80, 100, 95, 60, 70},
	Ninja:       {85, 110, 100, 65, 75},
	Machinist:   {85, 115, 100, 80, 85},
	DarkKnight:  {105, 95, 110, 60, 40},
	Astrologian: {50, 100, 100, 105, 115},
	Samurai:     {112, 108, 100, 60, 50},
	RedMage:     {55, 105, 100, 115, 110},
}

var raceBonuses = map[Race]mainStats{
	Wildwood:        {0, 3, -1, 2, -1},
	Duskwight:       {0, 0, -1, 3, 1},
	Midlander:       {2, -1, 0, 3, -1},
	Highlander:      {3, 0, 2, -2, 0},
	Plainsfolk:      {-1, 3, -1, 2, 0},
	Dunesfolk:       {-1, 1, -2, 2, 3},
	SeekerOfTheSun:  {2, 3, 0, -1, -1},
	KeeperOfTheMoon: {-1, 2, -2, 1, 3},
	SeaWolf:         {2, -1, 3, -2, 1},
	Hellsguard:      {0, -3, 3, 0, 2},
	Raen:            {-1, -2, -1, 0, 3},
	Xaela:           {3, 0, 2, 0, -2},
}

// hp, mp percentages
var jobBaseResources = map[Job][2]int{
	Gladiator:   {110, 49},
	Pugilist:    {105, 34},
	Marauder:    {115, 28},
	Lancer:      {110, 39},
	Archer:      {100, 69},
	Conjurer:    {100, 117},
	Thaumaturge: {100, 123},
	Paladin:     {120, 59},
	Monk:        {110, 43},
	Warrior:     {125, 38},
	Dragoon:     {115, 49},
	Bard:        {105, 79},
	WhiteMage:   {105, 124},
	BlackMage:   {105, 129},
	Arcanist:    {100, 110},
	Summoner:    {105, 111},
	Scholar:     {105, 119},
	Rogue:       {103, 38},
	Ninja:       {108, 48},
	Machinist:   {105, 79},
	DarkKnight:  {120, 79},
	Astrologian: {105, 124},
	Samurai:     {109, 40},
	RedMage:     {105, 120},
}

// JobModifier returns the job's base value for a main attribute. The damage
// formula scales weapon damage by it.
func JobModifier(job Job, a Attribute) int {
	return jobBaseStats[job].get(a)
}

// Base computes an actor's naked statistics from level, job and clan.
func Base(job Job, race Race, level int) (map[Attribute]int, error) {
	lv, err := ForLevel(level)
	if err != nil {
		return nil, err
	}
	out := map[Attribute]int{
		CriticalHit:   lv.SubStat,
		Determination: lv.MainStat,
		DirectHit:     lv.SubStat,
		SkillSpeed:    lv.SubStat,
		SpellSpeed:    lv.SubStat,
		Tenacity:      lv.SubStat,
		Piety:         lv.MainStat,
	}
	jobStats := jobBaseStats[job]
	raceStats := raceBonuses[race]
	for _, attr := range MainAttributes {
		out[attr] = lv.MainStat*jobStats.get(attr)/100 + raceStats.get(attr)
	}
	if job.Role() == RoleHealer {
		out[Piety] += lv.Piety
	}
	return out, nil
}

// Pools computes the maximum HP, MP and TP for the given statistics.
func Pools(job Job, level int, attrs map[Attribute]int) (map[Resource]int, error) {
	lv, err := ForLevel(level)
	if err != nil {
		return nil, err
	}
	res := jobBaseResources[job]
	hp := 3600*res[0]/100 + int(math.Floor(float64(attrs[Vitality]-lv.MainStat)*21.5))
	if hp < 1 {
		hp = 1
	}
	mp := int(math.Floor(float64(res[1]) / 100 * (6000*float64(attrs[Piety]-lv.MainStat)/float64(lv.Divisor) + 12000)))
	if mp < 0 {
		mp = 0
	}
	return map[Resource]int{
		HP: hp,
		MP: mp,
		TP: 1000,
	}, nil
}
