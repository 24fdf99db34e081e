package irt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(a, b, c float64, correct bool) Observation {
	return Observation{Params: Params{A: a, B: b, C: c}, Correct: correct}
}

func TestEstimate_NoObservationsReturnsPrior(t *testing.T) {
	for name, e := range map[string]Estimator{"map": DefaultEstimator(), "ml": MLEstimator()} {
		est := e.Estimate(nil)
		if est.Theta != 0 || est.StandardError != 1 {
			t.Errorf("%s: got theta=%v se=%v, want 0 and 1", name, est.Theta, est.StandardError)
		}
		if !est.Reliable() {
			t.Errorf("%s: prior estimate should be reliable", name)
		}
	}
}

func TestEstimate_FourCorrectOneIncorrect(t *testing.T) {
	responses := []Observation{
		obs(1, -1, 0.2, true),
		obs(1, 0, 0.2, true),
		obs(1, 0.5, 0.2, true),
		obs(1, 1, 0.2, true),
		obs(1, 1.5, 0.2, false),
	}

	est := DefaultEstimator().Estimate(responses)
	require.True(t, est.Converged)
	assert.GreaterOrEqual(t, est.Theta, 0.3)
	assert.LessOrEqual(t, est.Theta, 1.0)
	assert.Less(t, est.StandardError, 1.0)

	// Without the prior the likelihood alone pulls further from the centre.
	ml := MLEstimator().Estimate(responses)
	assert.Greater(t, ml.Theta, est.Theta)
}

func TestEstimate_SignProperty(t *testing.T) {
	e := DefaultEstimator()
	history := []Observation{
		obs(1.2, -0.5, 0.1, true),
		obs(1.2, 0.5, 0.1, false),
		obs(1.2, 0.0, 0.1, true),
	}
	before := e.Estimate(history)

	near := before.Theta
	up := e.Estimate(append(append([]Observation{}, history...), obs(1.2, near, 0.1, true)))
	down := e.Estimate(append(append([]Observation{}, history...), obs(1.2, near, 0.1, false)))

	if up.Theta <= before.Theta {
		t.Errorf("correct response: theta %v -> %v, want increase", before.Theta, up.Theta)
	}
	if down.Theta >= before.Theta {
		t.Errorf("incorrect response: theta %v -> %v, want decrease", before.Theta, down.Theta)
	}
}

func TestEstimate_ClampsExtremePatterns(t *testing.T) {
	var allRight, allWrong []Observation
	for i := 0; i < 30; i++ {
		allRight = append(allRight, obs(2, 3, 0, true))
		allWrong = append(allWrong, obs(2, -3, 0, false))
	}

	e := MLEstimator()
	e.MaxIterations = 50

	hi := e.Estimate(allRight)
	lo := e.Estimate(allWrong)
	if hi.Theta != MaxTheta {
		t.Errorf("all correct theta = %v, want %v", hi.Theta, MaxTheta)
	}
	if lo.Theta != MinTheta {
		t.Errorf("all incorrect theta = %v, want %v", lo.Theta, MinTheta)
	}
	for _, est := range []Estimate{hi, lo} {
		if math.IsNaN(est.StandardError) || math.IsInf(est.StandardError, 0) {
			t.Errorf("standard error not finite: %v", est.StandardError)
		}
	}
}

func TestEstimate_NonConvergenceIsFlagged(t *testing.T) {
	e := DefaultEstimator()
	e.MaxIterations = 1

	est := e.Estimate([]Observation{
		obs(2, 2, 0, true),
		obs(2, 2.5, 0, true),
		obs(2, 3, 0, true),
	})
	require.NotNil(t, est.Warning)
	assert.False(t, est.Converged)
	assert.False(t, est.Reliable())
	assert.Equal(t, 1, est.Warning.Iterations)
	assert.Equal(t, ReasonIterationCap, est.Warning.Reason)
	assert.Contains(t, est.Warning.Error(), "did not converge")
	assert.False(t, math.IsNaN(est.Theta))
}

func TestEstimate_ZeroInformationStopsEarly(t *testing.T) {
	// Zero discrimination carries no information and there is no prior.
	est := MLEstimator().Estimate([]Observation{obs(0, 0, 0, true)})
	require.NotNil(t, est.Warning)
	assert.Equal(t, 1, est.Iterations)
	assert.Equal(t, 1, est.Warning.Iterations)
	assert.Equal(t, ReasonNoInformation, est.Warning.Reason)
	assert.Contains(t, est.Warning.Error(), ReasonNoInformation)
	assert.Equal(t, 0.0, est.Theta)
	assert.Equal(t, MaxStandardError, est.StandardError)
}

func TestEstimate_MoreItemsShrinkStandardError(t *testing.T) {
	e := DefaultEstimator()
	var history []Observation
	prev := e.Estimate(nil).StandardError
	for i := 0; i < 10; i++ {
		history = append(history, obs(1.5, 0, 0.1, i%2 == 0))
		se := e.Estimate(history).StandardError
		if se >= prev {
			t.Fatalf("after %d items SE = %v, want < %v", i+1, se, prev)
		}
		prev = se
	}
}
