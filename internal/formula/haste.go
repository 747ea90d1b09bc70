package formula

import (
	"math"
	"time"

	"stormblood-bard-sim/internal/stats"
)

// HasteInput collects the speed attribute and the haste modifiers in play
// when an action's timing is computed.
type HasteInput struct {
	Level stats.Level
	Speed int

	Arrow   int
	Haste   int
	FeyWind int
	Type1   int
	Type2   int

	RiddleOfFire bool
	AstralUmbral bool

	// Fixed, when positive, replaces the computed value outright.
	Fixed time.Duration
}

// HasteFormula scales a base cast or recast time. Results are quantized to
// hundredths of a second.
type HasteFormula interface {
	Scale(base time.Duration, in HasteInput) time.Duration
}

// Stormblood applies the modifier chain with per-step flooring of the
// arrow/type-1/haste product.
type Stormblood struct{}

// Heavensward floors the arrow and type-1 product before applying haste.
type Heavensward struct{}

func speedMultiplier(base time.Duration, in HasteInput) float64 {
	m := 1000 - math.Floor(130*float64(in.Speed-in.Level.SubStat)/float64(in.Level.Divisor))
	return math.Floor(m * base.Seconds())
}

func modifiers(in HasteInput) (rof, au float64) {
	rof, au = 100, 100
	if in.RiddleOfFire {
		rof = 115
	}
	if in.AstralUmbral {
		au = 50
	}
	return rof, au
}

func centiseconds(c float64) time.Duration {
	if c < 0 {
		c = 0
	}
	return time.Duration(c) * 10 * time.Millisecond
}

func (Stormblood) Scale(base time.Duration, in HasteInput) time.Duration {
	if in.Fixed > 0 {
		return in.Fixed
	}
	if base <= 0 {
		return 0
	}
	gcdM := speedMultiplier(base, in)
	rof, au := modifiers(in)

	a := math.Floor(float64(100-in.Arrow)) * (float64(100-in.Type1) / 100)
	a = math.Floor(a * (float64(100-in.Haste) / 100))
	a = math.Floor(a - float64(in.FeyWind))
	b := float64(100-in.Type2) / 100

	c := math.Ceil(a * b)
	c = math.Floor(c * gcdM / 100)
	c = math.Floor(c * rof / 1000)
	c = math.Floor(c * au / 100)
	return centiseconds(c)
}

func (Heavensward) Scale(base time.Duration, in HasteInput) time.Duration {
	if in.Fixed > 0 {
		return in.Fixed
	}
	if base <= 0 {
		return 0
	}
	gcdM := speedMultiplier(base, in)
	rof, au := modifiers(in)

	a := math.Floor(math.Floor(math.Floor(float64((100-in.Arrow)*(100-in.Type1))/100)*float64(100-in.Haste)/100) - float64(in.FeyWind))
	b := float64(in.Type2-100) / -100

	c := math.Floor(math.Floor(math.Floor(math.Ceil(a*b)*gcdM/100)*rof/1000) * au / 100)
	return centiseconds(c)
}
