package hints

import "github.com/abhisek/adaptiq/internal/llm"

// HintSchema is the structured output requested for generated hints.
var HintSchema = &llm.Schema{
	Name:        "tutoring-hint",
	Description: "A single hint that helps without revealing the answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint_type": map[string]any{
				"type": "string",
				"enum": []string{"conceptual", "procedural", "strategic", "encouragement"},
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The hint text, 1-3 sentences, never stating the answer",
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Why this hint fits the learner's situation",
			},
			"suggested_next_step": map[string]any{"type": "string"},
			"difficulty_adjustment": map[string]any{
				"type": "string",
				"enum": []string{"simplify", "maintain"},
			},
		},
		"required":             []string{"hint_type", "content", "confidence", "reasoning", "suggested_next_step", "difficulty_adjustment"},
		"additionalProperties": false,
	},
}

// DescriptionSchema is the structured output for question descriptions.
var DescriptionSchema = &llm.Schema{
	Name:        "question-description",
	Description: "A short framing of what a question tests",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":        "string",
				"description": "One or two sentences on what the question assesses, without hinting at the answer",
			},
		},
		"required":             []string{"description"},
		"additionalProperties": false,
	},
}
