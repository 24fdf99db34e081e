package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/adaptiq/internal/logger"
)

// NewProvider builds the configured provider wrapped as
// retry -> recording -> vendor SDK. It returns (nil, nil) when
// generation is disabled.
func NewProvider(ctx context.Context, cfg Config, rec RequestRecorder, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "", ProviderNone:
		return nil, nil
	case ProviderMock:
		return NewMockProvider(), nil
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithRecording(base, cfg.Provider, rec, log)
	p = WithRetry(p, cfg.Retry)
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return p, nil
}
