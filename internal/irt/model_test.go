package irt

import (
	"math"
	"testing"
)

func TestProbability(t *testing.T) {
	tests := []struct {
		name  string
		theta float64
		p     Params
		want  float64
	}{
		{"at difficulty, no guessing", 0, Params{A: 1, B: 0}, 0.5},
		{"at difficulty, guessing", 1, Params{A: 1.5, B: 1, C: 0.2}, 0.6},
		{"far above", 40, Params{A: 1, B: 0, C: 0.25}, 1},
		{"far below", -40, Params{A: 1, B: 0, C: 0.25}, 0.25},
	}
	for _, tt := range tests {
		got := Probability(tt.theta, tt.p)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: Probability = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInformation_PeaksNearDifficulty(t *testing.T) {
	p := Params{A: 1.2, B: 0.5}
	at := Information(0.5, p)
	for _, theta := range []float64{-2, -0.5, 1.5, 3} {
		if Information(theta, p) >= at {
			t.Errorf("Information(%v) >= Information(b) = %v", theta, at)
		}
	}
	if want := 1.2 * 1.2 * 0.25; math.Abs(at-want) > 1e-9 {
		t.Errorf("Information(b) = %v, want %v", at, want)
	}
}

func TestInformation_GuessingScales(t *testing.T) {
	p := Params{A: 1, B: 0, C: 0.2}
	prob := Probability(0, p)
	want := prob * (1 - prob) / 0.8
	if got := Information(0, p); math.Abs(got-want) > 1e-12 {
		t.Errorf("Information = %v, want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-10, MinTheta},
		{10, MaxTheta},
		{1.25, 1.25},
		{math.NaN(), 0},
		{math.Inf(1), MaxTheta},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
