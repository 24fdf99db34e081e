package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Scale is a clamped linear map from theta to a reported score.
type Scale struct {
	Center float64
	Slope  float64
	Min    float64
	Max    float64
}

// Map returns round(Center + Slope*theta) clamped to [Min, Max].
func (s Scale) Map(theta float64) int {
	v := math.Round(s.Center + s.Slope*theta)
	if v < s.Min {
		v = s.Min
	}
	if v > s.Max {
		v = s.Max
	}
	return int(v)
}

// Tier is a named EIQ band starting at MinEIQ (inclusive).
type Tier struct {
	Name   string
	MinEIQ int
}

// Config holds every score-mapping constant.
type Config struct {
	IQ  Scale
	EIQ Scale

	// Placement thresholds on the EIQ scale.
	ImmersionFrom int
	MasteryFrom   int

	// StrengthMargin is how far a section theta must sit above (or below)
	// the item-weighted mean of the section thetas to count as a strength
	// (or improvement area).
	StrengthMargin float64

	Tiers []Tier
}

// DefaultConfig returns IQ 100±15 in [40,160], EIQ 575±137.5 in [300,850],
// placement at 600/750 and a 0.5 strength margin.
func DefaultConfig() Config {
	return Config{
		IQ:             Scale{Center: 100, Slope: 15, Min: 40, Max: 160},
		EIQ:            Scale{Center: 575, Slope: 137.5, Min: 300, Max: 850},
		ImmersionFrom:  600,
		MasteryFrom:    750,
		StrengthMargin: 0.5,
		Tiers:          DefaultTiers(),
	}
}

// DefaultTiers returns the titan tiers over the EIQ scale.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Emerging Scholar", MinEIQ: 300},
		{Name: "Rising Scholar", MinEIQ: 550},
		{Name: "Academic Achiever", MinEIQ: 600},
		{Name: "Intellectual Leader", MinEIQ: 650},
		{Name: "Cognitive Elite", MinEIQ: 700},
		{Name: "Educational Titan", MinEIQ: 750},
		{Name: "Genius Tier", MinEIQ: 800},
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	for name, s := range map[string]Scale{"iq": c.IQ, "eiq": c.EIQ} {
		if s.Min >= s.Max {
			return fmt.Errorf("%s scale: min %v must be below max %v", name, s.Min, s.Max)
		}
		if s.Slope <= 0 {
			return fmt.Errorf("%s scale: slope must be > 0, got %v", name, s.Slope)
		}
	}
	if c.ImmersionFrom >= c.MasteryFrom {
		return fmt.Errorf("immersion threshold %d must be below mastery threshold %d", c.ImmersionFrom, c.MasteryFrom)
	}
	if c.StrengthMargin <= 0 {
		return fmt.Errorf("strength margin must be > 0, got %v", c.StrengthMargin)
	}
	if !sort.SliceIsSorted(c.Tiers, func(i, j int) bool { return c.Tiers[i].MinEIQ < c.Tiers[j].MinEIQ }) {
		return fmt.Errorf("tiers must be ordered by ascending MinEIQ")
	}
	return nil
}
