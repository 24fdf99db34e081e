package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiConfig(t *testing.T) {
	schema := &Schema{Name: "hint", Definition: map[string]any{"type": "object"}}
	cfg := geminiConfig(Request{System: "be brief", MaxTokens: 64, Temperature: 0.3, Schema: schema})

	assert.Equal(t, int32(64), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.3, *cfg.Temperature, 1e-6)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Equal(t, schema.Definition, cfg.ResponseJsonSchema)

	plain := geminiConfig(Request{MaxTokens: 10})
	assert.Nil(t, plain.Temperature)
	assert.Nil(t, plain.SystemInstruction)
	assert.Nil(t, plain.ResponseJsonSchema)
}

func TestGeminiContentsRoles(t *testing.T) {
	got := geminiContents([]Message{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "a"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, genai.RoleUser, got[0].Role)
	assert.Equal(t, genai.RoleModel, got[1].Role)
	assert.Equal(t, "a", got[1].Parts[0].Text)
}

func geminiResult(text string, reason genai.FinishReason) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: reason,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 5,
			TotalTokenCount:      17,
		},
	}
}

func TestGeminiResponse(t *testing.T) {
	resp, err := geminiResponse("gemini-2.0-flash", nil, geminiResult(`{"ok":true}`, genai.FinishReasonStop))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 5, TotalTokens: 17}, resp.Usage)

	_, err = geminiResponse("m", nil, geminiResult(`{"ok":`, genai.FinishReasonMaxTokens))
	var maxTok *ErrMaxTokensExceeded
	assert.True(t, errors.As(err, &maxTok))

	_, err = geminiResponse("m", nil, geminiResult("", genai.FinishReasonSafety))
	var filtered *ErrContentFiltered
	assert.True(t, errors.As(err, &filtered))
}
