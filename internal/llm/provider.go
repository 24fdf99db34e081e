package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON from a prompt. Adaptiq uses it for
// tutoring hints and question descriptions; both have deterministic
// fallbacks, so callers treat every error as recoverable.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn prompt with an optional response schema.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for JSON matching the
	// definition. The response is validated before it is returned.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt is shorthand for a request carrying one user message.
func UserPrompt(system, content string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: content}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}

// Schema is a named JSON Schema definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response carries the generated content. StopReason is normalized to
// "end" or "max_tokens".
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Purpose labels a request for the request log.
type Purpose string

const (
	PurposeHint        Purpose = "hint"
	PurposeDescription Purpose = "description"
	PurposeCheck       Purpose = "check"
)

type purposeKey struct{}

// WithPurpose tags ctx so recorded requests can be grouped by caller.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose stored in ctx, or "unknown".
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return "unknown"
}
