// Package hints produces tutoring hints and question descriptions. A
// configured LLM provider is tried first; deterministic rule-based
// output is the fallback, and results say which path produced them.
package hints

import (
	"github.com/abhisek/adaptiq/internal/itembank"
)

// Type classifies the kind of help a hint offers.
type Type string

const (
	TypeConceptual    Type = "conceptual"
	TypeProcedural    Type = "procedural"
	TypeStrategic     Type = "strategic"
	TypeEncouragement Type = "encouragement"
)

// Adjustment is a suggestion for the difficulty of subsequent items.
// It is advisory only; item selection never reads it.
type Adjustment string

const (
	AdjustSimplify Adjustment = "simplify"
	AdjustMaintain Adjustment = "maintain"
)

// Source tells the caller whether the content was generated or is the
// deterministic fallback.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Request describes the learner's situation on the current item.
type Request struct {
	Item                     itembank.Item
	AttemptCount             int
	TimeSpentMs              int64
	Theta                    float64
	PreviousIncorrectAnswers []string
}

type Hint struct {
	ID                   string     `json:"id"`
	Type                 Type       `json:"hint_type"`
	Content              string     `json:"content"`
	Confidence           float64    `json:"confidence"`
	Reasoning            string     `json:"reasoning"`
	SuggestedNextStep    string     `json:"suggested_next_step,omitempty"`
	DifficultyAdjustment Adjustment `json:"difficulty_adjustment"`
}

// Result wraps a hint with its provenance. Cause is set when generation
// was attempted and failed.
type Result struct {
	Hint     Hint   `json:"hint"`
	Source   Source `json:"source"`
	Strategy string `json:"strategy"`
	Cause    error  `json:"-"`
}

// Description is a short learner-facing framing of a question.
type Description struct {
	ItemID string `json:"item_id"`
	Text   string `json:"text"`
	Source Source `json:"source"`
	Cause  error  `json:"-"`
}
