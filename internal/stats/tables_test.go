package stats

import (
	"errors"
	"testing"
)

func TestForLevelBounds(t *testing.T) {
	lv, err := ForLevel(70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lv.MainStat != 292 || lv.SubStat != 364 || lv.Divisor != 2170 {
		t.Fatalf("unexpected level 70 constants: %+v", lv)
	}
	for _, bad := range []int{0, 71, -3} {
		if _, err := ForLevel(bad); !errors.Is(err, ErrLevelOutOfRange) {
			t.Fatalf("expected ErrLevelOutOfRange for %d, got %v", bad, err)
		}
	}
}

func TestBaseBardStats(t *testing.T) {
	got, err := Base(Bard, SeekerOfTheSun, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// floor(292 * 115 / 100) + 3
	if got[Dexterity] != 338 {
		t.Fatalf("expected 338 dexterity, got %d", got[Dexterity])
	}
	if got[CriticalHit] != 364 || got[Determination] != 292 {
		t.Fatalf("unexpected substats: %v", got)
	}
	if got[Piety] != 292 {
		t.Fatalf("expected no healer piety bonus for bard, got %d", got[Piety])
	}
}

func TestBaseHealerPiety(t *testing.T) {
	got, err := Base(WhiteMage, Midlander, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[Piety] != 292+890 {
		t.Fatalf("expected healer piety bonus, got %d", got[Piety])
	}
}

func TestParseAttribute(t *testing.T) {
	cases := map[string]Attribute{
		"dexterity":    Dexterity,
		"Critical Hit": CriticalHit,
		"direct-hit":   DirectHit,
		"sks":          SkillSpeed,
	}
	for in, want := range cases {
		got, err := ParseAttribute(in)
		if err != nil || got != want {
			t.Fatalf("ParseAttribute(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseAttribute("luck"); !errors.Is(err, ErrUnknownAttribute) {
		t.Fatalf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestPoolsTP(t *testing.T) {
	attrs, _ := Base(Bard, Raen, 70)
	pools, err := Pools(Bard, 70, attrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pools[TP] != 1000 {
		t.Fatalf("expected 1000 TP, got %d", pools[TP])
	}
	if pools[MP] <= 0 || pools[HP] <= 0 {
		t.Fatalf("expected positive pools, got %v", pools)
	}
}
