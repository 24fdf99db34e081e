package irt

import (
	"fmt"
	"math"
)

// MaxStandardError caps the reported SE when the observations carry
// (numerically) no information.
const MaxStandardError = 10.0

// Observation is one scored response to a calibrated item.
type Observation struct {
	Params  Params
	Correct bool
}

// Prior is a normal prior on ability used for modal (MAP) estimation.
type Prior struct {
	Mean float64
	SD   float64
}

// Estimator configures Newton-Raphson (Fisher scoring) ability estimation.
type Estimator struct {
	MaxIterations int
	Tolerance     float64
	// Prior enables Bayesian modal estimation. Nil means maximum likelihood.
	Prior *Prior
}

// DefaultEstimator returns a modal estimator with a standard normal prior,
// 10 iterations and a 0.01 convergence tolerance.
func DefaultEstimator() Estimator {
	return Estimator{
		MaxIterations: 10,
		Tolerance:     0.01,
		Prior:         &Prior{Mean: 0, SD: 1},
	}
}

// MLEstimator returns a pure maximum-likelihood estimator.
func MLEstimator() Estimator {
	e := DefaultEstimator()
	e.Prior = nil
	return e
}

// Estimate is the result of ability estimation.
type Estimate struct {
	Theta         float64
	StandardError float64
	Iterations    int
	Converged     bool
	// Warning is set when iteration stopped before convergence. The
	// estimate is still usable but its SE should be treated as unreliable.
	Warning *NumericalInstabilityWarning
}

// Reliable reports whether the estimate converged.
func (e Estimate) Reliable() bool { return e.Warning == nil }

// Why estimation stopped short of convergence.
const (
	ReasonIterationCap  = "iteration cap reached"
	ReasonNoInformation = "no test information"
	ReasonNonFinite     = "non-finite score"
)

// NumericalInstabilityWarning reports that estimation did not converge.
type NumericalInstabilityWarning struct {
	Reason     string
	Iterations int
	LastStep   float64
	Theta      float64
}

func (w *NumericalInstabilityWarning) Error() string {
	return fmt.Sprintf("ability estimate did not converge after %d iterations: %s (last step %.4f, theta %.3f)",
		w.Iterations, w.Reason, w.LastStep, w.Theta)
}

// priorEstimate is returned when there are no observations. Sessions
// always start at the centre of the scale; prior means other than 0 are
// rejected by the session config.
func (e Estimator) priorEstimate() Estimate {
	return Estimate{Theta: 0, StandardError: 1, Converged: true}
}

// Estimate computes theta and its standard error from obs, starting at 0.
func (e Estimator) Estimate(obs []Observation) Estimate {
	return e.EstimateFrom(0, obs)
}

// EstimateFrom computes theta and its standard error from obs, starting the
// iteration at start. It has no side effects.
func (e Estimator) EstimateFrom(start float64, obs []Observation) Estimate {
	if len(obs) == 0 {
		return e.priorEstimate()
	}

	maxIter := e.MaxIterations
	if maxIter <= 0 {
		maxIter = 10
	}
	tol := e.Tolerance
	if tol <= 0 {
		tol = 0.01
	}

	theta := Clamp(start)
	var step float64
	iterations, reason := 0, ReasonIterationCap
	for i := 1; i <= maxIter; i++ {
		iterations = i
		num, info := e.scoring(theta, obs)
		if info <= 0 {
			reason = ReasonNoInformation
			break
		}
		if math.IsNaN(num) || math.IsInf(num, 0) {
			reason = ReasonNonFinite
			break
		}
		step = num / info
		next := Clamp(theta + step)
		step = next - theta
		theta = next

		if math.Abs(step) < tol {
			return Estimate{
				Theta:         theta,
				StandardError: e.standardError(theta, obs),
				Iterations:    i,
				Converged:     true,
			}
		}
	}

	return Estimate{
		Theta:         theta,
		StandardError: e.standardError(theta, obs),
		Iterations:    iterations,
		Warning: &NumericalInstabilityWarning{
			Reason:     reason,
			Iterations: iterations,
			LastStep:   step,
			Theta:      theta,
		},
	}
}

// scoring returns the score numerator sum((u-P)a) and the Fisher
// information sum(a^2 W), both including the prior terms when set.
func (e Estimator) scoring(theta float64, obs []Observation) (num, info float64) {
	for _, o := range obs {
		p := Probability(theta, o.Params)
		u := 0.0
		if o.Correct {
			u = 1
		}
		num += (u - p) * o.Params.A
		info += o.Params.A * o.Params.A * p * (1 - p)
	}
	if e.Prior != nil && e.Prior.SD > 0 {
		v := e.Prior.SD * e.Prior.SD
		num -= (theta - e.Prior.Mean) / v
		info += 1 / v
	}
	return num, info
}

func (e Estimator) standardError(theta float64, obs []Observation) float64 {
	_, info := e.scoring(theta, obs)
	if info <= 0 {
		return MaxStandardError
	}
	if se := 1 / math.Sqrt(info); se < MaxStandardError {
		return se
	}
	return MaxStandardError
}
