// Package irt implements the three-parameter logistic item response model
// and ability estimation used to score adaptive assessments.
package irt

import (
	"math"
)

// Ability bounds. Estimates are clamped to this range.
const (
	MinTheta = -4.0
	MaxTheta = 4.0
)

// Params is a 3PL item calibration.
type Params struct {
	A float64 // discrimination, > 0
	B float64 // difficulty
	C float64 // guessing, in [0,1)
}

// Probability returns P(correct | theta) under the 3PL model.
func Probability(theta float64, p Params) float64 {
	return p.C + (1-p.C)/(1+math.Exp(-p.A*(theta-p.B)))
}

// Information returns the item information used for selection,
// a^2 * P(1-P) / (1-c).
func Information(theta float64, p Params) float64 {
	prob := Probability(theta, p)
	return p.A * p.A * prob * (1 - prob) / (1 - p.C)
}

// Clamp limits theta to [MinTheta, MaxTheta] and maps NaN to 0.
func Clamp(theta float64) float64 {
	switch {
	case math.IsNaN(theta):
		return 0
	case theta < MinTheta:
		return MinTheta
	case theta > MaxTheta:
		return MaxTheta
	default:
		return theta
	}
}
