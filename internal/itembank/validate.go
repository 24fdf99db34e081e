package itembank

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidBank is wrapped by every ingestion failure.
var ErrInvalidBank = errors.New("invalid item bank")

// validateItems performs all calibration and structural checks on items.
// Returns a combined error describing every problem found, or nil if valid.
func validateItems(items []Item) error {
	var errs []string

	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it.ID == "" {
			errs = append(errs, fmt.Sprintf("item #%d has empty id", i))
			continue
		}
		if seen[it.ID] {
			errs = append(errs, fmt.Sprintf("duplicate item ID: %q", it.ID))
		}
		seen[it.ID] = true

		if it.Section == "" {
			errs = append(errs, fmt.Sprintf("item %q has empty section", it.ID))
		}
		errs = append(errs, validateParams(it.ID, it.Params)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidBank, strings.Join(errs, "\n  "))
	}
	return nil
}

func validateParams(id string, p Params) []string {
	var errs []string
	if math.IsNaN(p.Discrimination) || math.IsInf(p.Discrimination, 0) || p.Discrimination <= 0 {
		errs = append(errs, fmt.Sprintf("item %q: discrimination must be > 0, got %v", id, p.Discrimination))
	}
	if math.IsNaN(p.Difficulty) || math.IsInf(p.Difficulty, 0) {
		errs = append(errs, fmt.Sprintf("item %q: difficulty must be finite, got %v", id, p.Difficulty))
	}
	if math.IsNaN(p.Guessing) || p.Guessing < 0 || p.Guessing >= 1 {
		errs = append(errs, fmt.Sprintf("item %q: guessing must be in [0,1), got %v", id, p.Guessing))
	}
	return errs
}

func validateVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: version %q is not a semantic version (want vMAJOR.MINOR.PATCH)", ErrInvalidBank, v)
	}
	return nil
}
