package session

import (
	"fmt"
	"time"

	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/irt"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/scoring"
	"github.com/abhisek/adaptiq/internal/stopping"
)

// Config holds the engine constants.
type Config struct {
	Rules     stopping.Rules
	Estimator irt.Estimator
	Scoring   scoring.Config
	// SignalThreshold is the theta change below which the adaptation
	// signal is "steady".
	SignalThreshold float64
}

func DefaultConfig() Config {
	return Config{
		Rules:           stopping.DefaultRules(),
		Estimator:       irt.DefaultEstimator(),
		Scoring:         scoring.DefaultConfig(),
		SignalThreshold: 0.05,
	}
}

func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("stopping rules: %w", err)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Estimator.MaxIterations < 1 || c.Estimator.Tolerance <= 0 {
		return fmt.Errorf("estimator needs max iterations >= 1 and tolerance > 0")
	}
	if p := c.Estimator.Prior; p != nil && p.SD <= 0 {
		return fmt.Errorf("prior SD must be > 0, got %v", p.SD)
	}
	if p := c.Estimator.Prior; p != nil && p.Mean != 0 {
		return fmt.Errorf("prior mean must be 0 so sessions start at the centre, got %v", p.Mean)
	}
	if c.SignalThreshold < 0 {
		return fmt.Errorf("signal threshold must be >= 0, got %v", c.SignalThreshold)
	}
	return nil
}

// Options wires the service's collaborators. Banks is required; the rest
// default to in-memory or no-op implementations.
type Options struct {
	Banks    *itembank.Registry
	Store    Store
	Exposure ExposureTracker
	Events   EventRecorder
	IDs      IDGenerator
	Clock    Clock
	Logger   *logger.Logger
	Hints    hints.Generator
}

func (o *Options) setDefaults() {
	if o.Store == nil {
		o.Store = NewMemoryStore()
	}
	if o.Exposure == nil {
		o.Exposure = NewMemoryExposure(DefaultExposureWindow)
	}
	if o.Events == nil {
		o.Events = nopEvents{}
	}
	if o.IDs == nil {
		o.IDs = UUIDGenerator{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Hints == nil {
		o.Hints = hints.NewRuleGenerator()
	}
}
