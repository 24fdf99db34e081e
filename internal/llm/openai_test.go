package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer answers every chat completion with the given status and
// body, and captures the decoded request.
func chatServer(t *testing.T, status int, body map[string]any, seen *map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func completion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	var seen map[string]any
	url := chatServer(t, http.StatusOK, completion(`{"name":"hint","level":2}`, "stop"), &seen)
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), UserPrompt("You are a tutor.", "Give a hint.", testSchema(), 256))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"hint","level":2}`, string(resp.Content))
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)

	msgs, _ := seen["messages"].([]any)
	require.Len(t, msgs, 2, "system + user")
	format, _ := seen["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limit",
			status: http.StatusTooManyRequests,
			body:   map[string]any{"error": map[string]any{"type": "tokens", "message": "slow down", "code": "rate_limit_exceeded"}},
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				assert.True(t, errors.As(err, &rl), "got %T", err)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   map[string]any{"error": map[string]any{"type": "server_error", "message": "boom"}},
			check: func(t *testing.T, err error) {
				var un *ErrProviderUnavailable
				assert.True(t, errors.As(err, &un), "got %T", err)
			},
		},
		{
			name:   "truncated",
			status: http.StatusOK,
			body:   completion(`{"name":`, "length"),
			check: func(t *testing.T, err error) {
				var mt *ErrMaxTokensExceeded
				assert.True(t, errors.As(err, &mt), "got %T", err)
			},
		},
		{
			name:   "schema mismatch",
			status: http.StatusOK,
			body:   completion(`{"level":"high"}`, "stop"),
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				assert.True(t, errors.As(err, &inv), "got %T", err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := chatServer(t, tt.status, tt.body, nil)
			p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: url})
			require.NoError(t, err)
			_, err = p.Generate(context.Background(), UserPrompt("", "x", testSchema(), 16))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenRouterProvider(t *testing.T) {
	var seen map[string]any
	url := chatServer(t, http.StatusOK, completion(`{"name":"n","level":1}`, "stop"), &seen)
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "meta/llama", BaseURL: url})
	require.NoError(t, err)
	assert.Equal(t, "meta/llama", p.ModelID())

	_, err = p.Generate(context.Background(), UserPrompt("", "x", testSchema(), 16))
	require.NoError(t, err)
	format := seen["response_format"].(map[string]any)
	schema := format["json_schema"].(map[string]any)
	assert.NotEqual(t, true, schema["strict"], "strict mode is off for routed models")

	_, err = NewOpenRouterProvider(OpenRouterConfig{})
	assert.Error(t, err)
}

func TestResolveModel(t *testing.T) {
	if got := resolveModel("claude-haiku", anthropicModels); got != "claude-haiku-4-5-20251001" {
		t.Errorf("resolveModel(alias) = %q", got)
	}
	if got := resolveModel("my-model", openaiModels); got != "my-model" {
		t.Errorf("resolveModel(passthrough) = %q, want my-model", got)
	}
}
