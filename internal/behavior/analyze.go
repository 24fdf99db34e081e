// Package behavior derives a secondary confidence metric from auxiliary
// response signals such as timing, hint usage and self-rated confidence.
package behavior

import (
	"slices"
)

// Analyze runs the default classifiers over inputs.
func Analyze(inputs []Input) Profile {
	return AnalyzeWith(DefaultClassifiers(), inputs)
}

// AnalyzeWith runs classifiers over inputs. Each response contributes at most
// one flag; confidence is one minus the mean flag weight.
func AnalyzeWith(classifiers []Classifier, inputs []Input) Profile {
	p := Profile{Confidence: 1, Responses: len(inputs)}
	if len(inputs) == 0 {
		return p
	}

	var penalty float64
	hints := 0
	times := make([]int64, 0, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		if in.HintUsed {
			hints++
		}
		times = append(times, in.ResponseTimeMs)

		cat, w := RunClassifiers(classifiers, in)
		if cat == "" {
			continue
		}
		if p.Flags == nil {
			p.Flags = make(map[Category]int)
		}
		p.Flags[cat]++
		penalty += w
	}

	n := float64(len(inputs))
	p.Confidence = clamp01(1 - penalty/n)
	p.HintRate = float64(hints) / n

	slices.Sort(times)
	p.MedianMs = times[len(times)/2]
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
