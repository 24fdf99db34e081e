// Package stopping decides when a section or a whole assessment session
// should stop administering items. Everything here is pure: callers pass in
// the counts, standard errors and elapsed time they observed.
package stopping

import (
	"fmt"
	"time"
)

// Rules configures termination.
type Rules struct {
	ConvergenceSE      float64       // section converges when SE drops below this
	MinItemsPerSection int           // ...and at least this many items were answered
	MaxItemsPerSection int           // hard per-section cap
	MaxQuestions       int           // global cap; 0 disables
	TimeBudget         time.Duration // wall-clock budget; 0 disables
}

// DefaultRules returns SE < 0.3 with at least 5 items, 15 items per section,
// no global question cap and no time budget.
func DefaultRules() Rules {
	return Rules{
		ConvergenceSE:      0.3,
		MinItemsPerSection: 5,
		MaxItemsPerSection: 15,
	}
}

// Validate checks the rules are internally consistent.
func (r Rules) Validate() error {
	if r.ConvergenceSE <= 0 {
		return fmt.Errorf("convergence SE must be > 0, got %v", r.ConvergenceSE)
	}
	if r.MinItemsPerSection < 0 {
		return fmt.Errorf("min items per section must be >= 0, got %d", r.MinItemsPerSection)
	}
	if r.MaxItemsPerSection < 1 {
		return fmt.Errorf("max items per section must be >= 1, got %d", r.MaxItemsPerSection)
	}
	if r.MinItemsPerSection > r.MaxItemsPerSection {
		return fmt.Errorf("min items per section (%d) exceeds max (%d)", r.MinItemsPerSection, r.MaxItemsPerSection)
	}
	if r.MaxQuestions < 0 {
		return fmt.Errorf("max questions must be >= 0, got %d", r.MaxQuestions)
	}
	if r.TimeBudget < 0 {
		return fmt.Errorf("time budget must be >= 0, got %s", r.TimeBudget)
	}
	return nil
}

// Reason explains why a section or session stopped.
type Reason string

const (
	Continue      Reason = ""
	Converged     Reason = "converged"
	MaxItems      Reason = "max_items"
	Exhausted     Reason = "exhausted"
	AllSections   Reason = "all_sections_stopped"
	MaxQuestions  Reason = "max_questions"
	TimeExhausted Reason = "time_budget"
)

// Stopped reports whether the reason represents termination.
func (r Reason) Stopped() bool { return r != Continue }

// Section is the observed state of one section.
type Section struct {
	Administered  int
	StandardError float64
	Exhausted     bool // no candidate items remain
}

// EvaluateSection applies the per-section rules. Convergence is checked
// first, then the item cap, then exhaustion.
func (r Rules) EvaluateSection(s Section) Reason {
	switch {
	case s.Administered >= r.MinItemsPerSection && s.Administered > 0 && s.StandardError < r.ConvergenceSE:
		return Converged
	case s.Administered >= r.MaxItemsPerSection:
		return MaxItems
	case s.Exhausted:
		return Exhausted
	default:
		return Continue
	}
}

// Session is the observed state of a whole session.
type Session struct {
	Sections     []Section
	Administered int
	Elapsed      time.Duration
}

// EvaluateSession applies the session rules. The global caps win over
// section state so that a budget overrun is reported as such.
func (r Rules) EvaluateSession(s Session) Reason {
	if r.TimeBudget > 0 && s.Elapsed >= r.TimeBudget {
		return TimeExhausted
	}
	if r.MaxQuestions > 0 && s.Administered >= r.MaxQuestions {
		return MaxQuestions
	}
	for _, sec := range s.Sections {
		if !r.EvaluateSection(sec).Stopped() {
			return Continue
		}
	}
	return AllSections
}
