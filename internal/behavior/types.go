package behavior

// Category labels a response pattern that weakens trust in the answer.
type Category string

const (
	CategorySpeedRush     Category = "speed-rush"
	CategorySlow          Category = "slow"
	CategoryHintReliance  Category = "hint-reliance"
	CategoryCareless      Category = "careless"
	CategoryOverconfident Category = "overconfident"
)

// Input is one response with the context the classifiers need.
type Input struct {
	Correct        bool
	ResponseTimeMs int64
	HintUsed       bool
	// ExpectedP is the model probability of a correct answer at the final
	// ability estimate.
	ExpectedP float64
	// SelfConfidence is the test-taker's own 0-1 rating, when given.
	SelfConfidence *float64
}

// Profile summarises behavioural signals across a session. It never feeds
// back into the ability estimate.
type Profile struct {
	Confidence float64          `json:"confidence"` // 0.0-1.0, 1 means no concerns
	Flags      map[Category]int `json:"flags,omitempty"`
	Responses  int              `json:"responses"`
	HintRate   float64          `json:"hint_rate"`
	MedianMs   int64            `json:"median_response_ms"`
}
