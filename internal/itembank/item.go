package itembank

import (
	"strings"
)

// Section identifies a top-level assessment section.
type Section string

const (
	SectionCoreMath         Section = "core_math"
	SectionAppliedReasoning Section = "applied_reasoning"
	SectionAIConceptual     Section = "ai_conceptual"
)

// AllSections returns the built-in sections in display order.
func AllSections() []Section {
	return []Section{
		SectionCoreMath,
		SectionAppliedReasoning,
		SectionAIConceptual,
	}
}

// SectionDisplayName returns a human-readable name for a section.
func SectionDisplayName(s Section) string {
	switch s {
	case SectionCoreMath:
		return "Core Math"
	case SectionAppliedReasoning:
		return "Applied Reasoning"
	case SectionAIConceptual:
		return "AI Concepts"
	default:
		return string(s)
	}
}

// Params holds the 3PL calibration of an item.
type Params struct {
	Discrimination float64 `yaml:"a" json:"a"`
	Difficulty     float64 `yaml:"b" json:"b"`
	Guessing       float64 `yaml:"c" json:"c"`
}

// Content is the presentable part of an item. The engine only reads Answer.
type Content struct {
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
	Answer  string   `yaml:"answer" json:"answer"`
}

// Item is an immutable calibrated test item.
type Item struct {
	ID         string   `yaml:"id" json:"id"`
	Section    Section  `yaml:"section" json:"section"`
	Domain     string   `yaml:"domain,omitempty" json:"domain,omitempty"`
	GradeLevel int      `yaml:"grade_level,omitempty" json:"grade_level,omitempty"`
	Params     Params   `yaml:"params" json:"params"`
	Content    Content  `yaml:"content" json:"content"`
	Hints      []string `yaml:"hints,omitempty" json:"hints,omitempty"`
}

// Score reports whether answer matches the item's keyed answer after
// normalisation (case, surrounding and repeated whitespace).
func (it Item) Score(answer string) bool {
	return NormalizeAnswer(answer) == NormalizeAnswer(it.Content.Answer)
}

// NormalizeAnswer lower-cases s, trims it and collapses internal whitespace runs.
func NormalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
