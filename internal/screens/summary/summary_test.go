package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/behavior"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/scoring"
)

func testResult() scoring.ScoreResult {
	return scoring.ScoreResult{
		Theta:          0.62,
		StandardError:  0.28,
		Reliable:       true,
		IQ:             109,
		EIQ:            662,
		Percentile:     73,
		PercentileBand: "Average",
		Placement:      scoring.PlacementImmersion,
		TitanTier:      "Intellectual Leader",
		SectionScores: map[itembank.Section]scoring.SectionScore{
			itembank.SectionCoreMath:         {Theta: 1.1, StandardError: 0.4, EIQ: 712, Items: 8, Correct: 6},
			itembank.SectionAppliedReasoning: {Theta: 0.1, StandardError: 0.4, EIQ: 610, Items: 7, Correct: 4},
		},
		Strengths:        []string{string(itembank.SectionCoreMath)},
		ImprovementAreas: []string{string(itembank.SectionAppliedReasoning)},
		ItemsAnswered:    15,
		ItemsCorrect:     10,
		Behavior: behavior.Profile{
			Confidence: 0.8,
			Flags:      map[behavior.Category]int{behavior.CategorySpeedRush: 2},
			Responses:  15,
		},
	}
}

func TestSummaryView(t *testing.T) {
	s := New(testResult(), []string{"Continue practicing to build proficiency"})
	view := s.View(100, 40)

	for _, want := range []string{
		"Assessment complete",
		"EIQ 662",
		"IQ 109",
		"73rd percentile",
		"Intellectual Leader",
		"Immersion",
		"10/15 correct",
		"Core Math",
		"speed-rush ×2",
		"Continue practicing",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "provisional") {
		t.Error("reliable result shows the provisional warning")
	}
}

func TestSummaryUnreliable(t *testing.T) {
	r := testResult()
	r.Reliable = false
	view := New(r, nil).View(100, 40)
	if !strings.Contains(view, "provisional") {
		t.Error("unreliable result does not warn")
	}
	if strings.Contains(view, "Next steps") {
		t.Error("empty suggestions still render a heading")
	}
}

func TestSummaryEnterPops(t *testing.T) {
	s := New(testResult(), nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on enter")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("enter produced %T, want router.PopScreenMsg", cmd())
	}
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{1: "st", 2: "nd", 3: "rd", 4: "th", 11: "th", 12: "th", 13: "th", 21: "st", 73: "rd", 99: "th"}
	for n, want := range tests {
		if got := ordinal(n); got != want {
			t.Errorf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}
