package behavior

// Classifier is a rule over a single response.
// Returns a category and a weight (0.0-1.0), or ("", 0) if the rule doesn't apply.
type Classifier interface {
	Name() string
	Classify(in *Input) (Category, float64)
}

// DefaultClassifiers returns classifiers in priority order.
// Speed-rush comes first because a fast wrong answer says more about effort
// than about a slip.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		&SpeedRushClassifier{},
		&CarelessClassifier{},
		&OverconfidentClassifier{},
		&HintRelianceClassifier{},
		&SlowClassifier{},
	}
}

// RunClassifiers executes classifiers in order and returns the first match.
func RunClassifiers(classifiers []Classifier, in *Input) (Category, float64) {
	for _, c := range classifiers {
		if cat, w := c.Classify(in); cat != "" {
			return cat, w
		}
	}
	return "", 0
}
