package hints

// Config tunes generation requests.
type Config struct {
	MaxTokens            int
	Temperature          float64
	DescriptionMaxTokens int
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:            256,
		Temperature:          0.4,
		DescriptionMaxTokens: 128,
	}
}
