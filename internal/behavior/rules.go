package behavior

// SpeedRushThresholdMs is the response time (exclusive) under which a wrong
// answer counts as rushed.
const SpeedRushThresholdMs = 2000

// SlowThresholdMs is the response time (exclusive) above which a response
// counts as slow.
const SlowThresholdMs = 180000

// CarelessProbability is the model probability (exclusive) above which a
// miss is treated as a slip.
const CarelessProbability = 0.80

// OverconfidentRating is the self-rating (inclusive) at which a miss
// counts as overconfidence.
const OverconfidentRating = 0.8

// SpeedRushClassifier flags wrong answers submitted too quickly.
type SpeedRushClassifier struct{}

func (c *SpeedRushClassifier) Name() string { return "speed-rush" }

func (c *SpeedRushClassifier) Classify(in *Input) (Category, float64) {
	if !in.Correct && in.ResponseTimeMs < SpeedRushThresholdMs {
		return CategorySpeedRush, 0.9
	}
	return "", 0
}

// CarelessClassifier flags misses on items the test-taker should very likely
// have answered correctly.
type CarelessClassifier struct{}

func (c *CarelessClassifier) Name() string { return "careless" }

func (c *CarelessClassifier) Classify(in *Input) (Category, float64) {
	if !in.Correct && in.ExpectedP > CarelessProbability {
		return CategoryCareless, 0.6
	}
	return "", 0
}

// OverconfidentClassifier flags misses the test-taker rated as certain.
type OverconfidentClassifier struct{}

func (c *OverconfidentClassifier) Name() string { return "overconfident" }

func (c *OverconfidentClassifier) Classify(in *Input) (Category, float64) {
	if !in.Correct && in.SelfConfidence != nil && *in.SelfConfidence >= OverconfidentRating {
		return CategoryOverconfident, 0.5
	}
	return "", 0
}

// HintRelianceClassifier flags correct answers given after a hint.
type HintRelianceClassifier struct{}

func (c *HintRelianceClassifier) Name() string { return "hint-reliance" }

func (c *HintRelianceClassifier) Classify(in *Input) (Category, float64) {
	if in.HintUsed && in.Correct {
		return CategoryHintReliance, 0.4
	}
	return "", 0
}

// SlowClassifier flags responses that took longer than the slow threshold.
type SlowClassifier struct{}

func (c *SlowClassifier) Name() string { return "slow" }

func (c *SlowClassifier) Classify(in *Input) (Category, float64) {
	if in.ResponseTimeMs > SlowThresholdMs {
		return CategorySlow, 0.3
	}
	return "", 0
}
