package hints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/llm"
)

// Generator produces a hint for the learner's current situation. It
// never fails; problems surface as a fallback Result with Cause set.
type Generator interface {
	Generate(ctx context.Context, r Request) Result
}

// LLMGenerator asks an LLM provider for hints and descriptions and
// falls back to the rules when the provider is absent or fails.
type LLMGenerator struct {
	provider llm.Provider
	fallback *RuleGenerator
	cfg      Config
}

// NewLLMGenerator returns a generator over provider. A nil provider is
// allowed and yields rule-based output only.
func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, fallback: NewRuleGenerator(), cfg: cfg}
}

type hintOutput struct {
	HintType             string  `json:"hint_type"`
	Content              string  `json:"content"`
	Confidence           float64 `json:"confidence"`
	Reasoning            string  `json:"reasoning"`
	SuggestedNextStep    string  `json:"suggested_next_step"`
	DifficultyAdjustment string  `json:"difficulty_adjustment"`
}

func (g *LLMGenerator) Generate(ctx context.Context, r Request) Result {
	if g.provider == nil {
		return g.fallback.Generate(ctx, r)
	}

	h, err := g.generate(ctx, r)
	if err != nil {
		res := g.fallback.Generate(ctx, r)
		res.Cause = err
		return res
	}
	return Result{Hint: h, Source: SourceGenerated, Strategy: "llm"}
}

func (g *LLMGenerator) generate(ctx context.Context, r Request) (Hint, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeHint)
	req := llm.UserPrompt(hintSystemPrompt, hintUserMessage(r), HintSchema, g.cfg.MaxTokens)
	req.Temperature = g.cfg.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return Hint{}, fmt.Errorf("hint generation: %w", err)
	}

	var out hintOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Hint{}, fmt.Errorf("parse hint response: %w", err)
	}
	if leaksAnswer(out.Content, r.Item) {
		return Hint{}, errors.New("generated hint reveals the answer")
	}

	return Hint{
		ID:                   g.fallback.id(),
		Type:                 Type(out.HintType),
		Content:              out.Content,
		Confidence:           out.Confidence,
		Reasoning:            out.Reasoning,
		SuggestedNextStep:    out.SuggestedNextStep,
		DifficultyAdjustment: Adjustment(out.DifficultyAdjustment),
	}, nil
}

// leaksAnswer is a cheap guard against hints that quote a free-text
// answer. Multiple-choice answers are single option labels and would
// match too often, so they are skipped.
func leaksAnswer(content string, it itembank.Item) bool {
	ans := itembank.NormalizeAnswer(it.Content.Answer)
	if len(ans) < 3 || len(it.Content.Options) > 0 {
		return false
	}
	return strings.Contains(itembank.NormalizeAnswer(content), ans)
}

// Describe returns a short description of what the item assesses.
func (g *LLMGenerator) Describe(ctx context.Context, it itembank.Item) Description {
	fallback := Description{ItemID: it.ID, Text: fallbackDescription(it), Source: SourceFallback}
	if g.provider == nil {
		return fallback
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeDescription)
	resp, err := g.provider.Generate(ctx, llm.UserPrompt(describeSystemPrompt, describeUserMessage(it), DescriptionSchema, g.cfg.DescriptionMaxTokens))
	if err != nil {
		fallback.Cause = fmt.Errorf("description generation: %w", err)
		return fallback
	}
	var out struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		fallback.Cause = fmt.Errorf("parse description response: %w", err)
		return fallback
	}
	if strings.TrimSpace(out.Description) == "" {
		fallback.Cause = errors.New("empty description")
		return fallback
	}
	return Description{ItemID: it.ID, Text: out.Description, Source: SourceGenerated}
}

func fallbackDescription(it itembank.Item) string {
	section := itembank.SectionDisplayName(it.Section)
	if it.Domain == "" {
		return fmt.Sprintf("A %s question.", section)
	}
	return fmt.Sprintf("A %s question on %s.", section, strings.ReplaceAll(it.Domain, "_", " "))
}
