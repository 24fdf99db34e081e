package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone       = "none"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the hint/description provider. The
// zero Provider ("" or "none") disables generation; callers then use
// authored hints only.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig has generation disabled and small models preselected.
// Hints are short, so the timeout is tighter than a chat client would use.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderNone,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 15 * time.Second,
	}
}

// ConfigFromEnv reads ADAPTIQ_LLM_* variables on top of DefaultConfig.
// When ADAPTIQ_LLM_PROVIDER is unset, well-known vendor keys
// (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY)
// are probed in that order.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Anthropic.APIKey, "ADAPTIQ_ANTHROPIC_API_KEY")
	set(&cfg.Anthropic.Model, "ADAPTIQ_ANTHROPIC_MODEL")
	set(&cfg.OpenAI.APIKey, "ADAPTIQ_OPENAI_API_KEY")
	set(&cfg.OpenAI.Model, "ADAPTIQ_OPENAI_MODEL")
	set(&cfg.OpenAI.BaseURL, "ADAPTIQ_OPENAI_BASE_URL")
	set(&cfg.Gemini.APIKey, "ADAPTIQ_GEMINI_API_KEY")
	set(&cfg.Gemini.Model, "ADAPTIQ_GEMINI_MODEL")
	set(&cfg.OpenRouter.APIKey, "ADAPTIQ_OPENROUTER_API_KEY")
	set(&cfg.OpenRouter.Model, "ADAPTIQ_OPENROUTER_MODEL")

	if d, err := time.ParseDuration(os.Getenv("ADAPTIQ_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}

	if p := os.Getenv("ADAPTIQ_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
		return cfg
	}

	probes := []struct {
		env, provider string
		dst           *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			if *p.dst == "" {
				*p.dst = k
			}
			break
		}
	}
	return cfg
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	missing := func(env string) error {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	switch c.Provider {
	case "", ProviderNone, ProviderMock:
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return missing("ADAPTIQ_ANTHROPIC_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return missing("ADAPTIQ_OPENAI_API_KEY")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return missing("ADAPTIQ_GEMINI_API_KEY")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return missing("ADAPTIQ_OPENROUTER_API_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	return nil
}
