package hints

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
)

// Rule thresholds.
const (
	StrugglingAttempts   = 3
	StrugglingTheta      = -1.0
	TimePressureMs       = 180_000
	EncouragementAttempt = 4
)

var encouragements = []string{
	"You're putting in real effort. Learning happens through practice and persistence.",
	"Each attempt brings you closer to understanding. Keep thinking it through.",
	"Challenging problems help you grow. You have the skills to work this out.",
	"Take a breath. You've solved problems like this before, so trust what you know.",
}

type strategy struct {
	name  string
	match func(Request) bool
	build func(Request, string) Hint
}

// strategies are evaluated in order; the first match wins.
var strategies = []strategy{
	{
		name: "struggling",
		match: func(r Request) bool {
			return r.AttemptCount >= StrugglingAttempts && r.Theta < StrugglingTheta
		},
		build: func(r Request, base string) Hint {
			return Hint{
				Type:                 TypeConceptual,
				Content:              "Let's break this down step by step. " + base + " It's fine to take your time on a hard one.",
				Confidence:           0.9,
				Reasoning:            "several attempts at low ability; foundational support",
				SuggestedNextStep:    "Focus on the core concept before calculating anything",
				DifficultyAdjustment: AdjustSimplify,
			}
		},
	},
	{
		name:  "time_pressure",
		match: func(r Request) bool { return r.TimeSpentMs > TimePressureMs },
		build: func(Request, string) Hint {
			return Hint{
				Type:                 TypeStrategic,
				Content:              "You've been on this one a while. Pick out the key information and rule out answers that are clearly wrong.",
				Confidence:           0.8,
				Reasoning:            "long time on item; time management",
				SuggestedNextStep:    "Use elimination to narrow the options",
				DifficultyAdjustment: AdjustMaintain,
			}
		},
	},
	{
		name:  "conceptual_gap",
		match: func(r Request) bool { return r.AttemptCount == 2 },
		build: func(r Request, base string) Hint {
			return Hint{
				Type:                 TypeConceptual,
				Content:              "Think about the underlying idea. " + base + " Which principle applies to this kind of problem?",
				Confidence:           0.85,
				Reasoning:            "second attempt; likely a conceptual gap",
				SuggestedNextStep:    "Name the principle or formula that applies",
				DifficultyAdjustment: AdjustMaintain,
			}
		},
	},
	{
		name:  "strategic_guidance",
		match: func(r Request) bool { return r.AttemptCount == 1 },
		build: func(Request, string) Hint {
			return Hint{
				Type:                 TypeStrategic,
				Content:              "Take a moment to work out what the question is really asking. What do you know, and what do you need to find?",
				Confidence:           0.75,
				Reasoning:            "first request; orient before solving",
				SuggestedNextStep:    "List the givens and the unknown",
				DifficultyAdjustment: AdjustMaintain,
			}
		},
	},
	{
		name:  "encouragement",
		match: func(r Request) bool { return r.AttemptCount >= EncouragementAttempt },
		build: func(r Request, _ string) Hint {
			return Hint{
				Type:                 TypeEncouragement,
				Content:              encouragements[pick(r.Item.ID, r.AttemptCount, len(encouragements))],
				Confidence:           1.0,
				Reasoning:            "repeated attempts; motivation",
				SuggestedNextStep:    "Reset, then come back to the problem fresh",
				DifficultyAdjustment: AdjustMaintain,
			}
		},
	},
}

var defaultStrategy = strategy{
	name: "procedural",
	build: func(r Request, base string) Hint {
		return Hint{
			Type:                 TypeProcedural,
			Content:              base,
			Confidence:           0.7,
			Reasoning:            "standard hint for the item",
			SuggestedNextStep:    "Apply the suggested approach",
			DifficultyAdjustment: AdjustMaintain,
		}
	},
}

// pick is a deterministic stand-in for a random choice so the same
// situation always yields the same encouragement.
func pick(itemID string, attempt, n int) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s/%d", itemID, attempt)
	return int(h.Sum32() % uint32(n))
}

// AuthoredHint chooses among the item's authored hints by how far the
// item sits above the learner: more than one logit above gets the first
// (gentlest) hint, above at all gets the second, otherwise the third.
// A previous wrong answer is acknowledged.
func AuthoredHint(r Request) string {
	hints := r.Item.Hints
	var base string
	if len(hints) == 0 {
		base = "Re-read the question carefully and check each step of your reasoning."
	} else {
		gap := r.Item.Params.Difficulty - r.Theta
		idx := 2
		switch {
		case gap > 1:
			idx = 0
		case gap > 0:
			idx = 1
		}
		base = hints[min(idx, len(hints)-1)]
	}
	if n := len(r.PreviousIncorrectAnswers); n > 0 {
		last := strings.TrimSpace(r.PreviousIncorrectAnswers[n-1])
		base += fmt.Sprintf(" I notice you tried %q before; consider why that might not be right.", last)
	}
	return base
}

// RuleGenerator produces hints without any external service.
type RuleGenerator struct {
	NewID func() string
}

func NewRuleGenerator() *RuleGenerator {
	return &RuleGenerator{NewID: uuid.NewString}
}

// Generate always succeeds and reports SourceFallback.
func (g *RuleGenerator) Generate(_ context.Context, r Request) Result {
	s := defaultStrategy
	for _, cand := range strategies {
		if cand.match(r) {
			s = cand
			break
		}
	}
	h := s.build(r, AuthoredHint(r))
	h.ID = g.id()
	return Result{Hint: h, Source: SourceFallback, Strategy: s.name}
}

func (g *RuleGenerator) id() string {
	if g.NewID == nil {
		return uuid.NewString()
	}
	return g.NewID()
}

// Suggestions turns the hint types a learner needed during a session
// into study advice.
func Suggestions(used []Type) []string {
	counts := make(map[Type]int)
	for _, t := range used {
		counts[t]++
	}
	var out []string
	if counts[TypeConceptual] > 3 {
		out = append(out,
			"Focus on building foundational understanding of key concepts",
			"Review prerequisite material before attempting advanced problems")
	}
	if counts[TypeStrategic] > 2 {
		out = append(out,
			"Practice systematic problem-solving strategies",
			"Break complex problems into manageable steps")
	}
	if counts[TypeEncouragement] > 1 {
		out = append(out,
			"Take short breaks between challenging problems",
			"Build confidence with easier problems before advancing")
	}
	if len(out) == 0 {
		out = []string{
			"Continue practicing to build proficiency",
			"Explore related topics to deepen understanding",
		}
	}
	return out
}
