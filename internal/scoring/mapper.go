// Package scoring converts ability estimates into reported scores.
package scoring

import (
	"math"

	"github.com/abhisek/adaptiq/internal/behavior"
	"github.com/abhisek/adaptiq/internal/irt"
	"github.com/abhisek/adaptiq/internal/itembank"
)

// Placement is the coarse routing tier derived from EIQ.
type Placement string

const (
	PlacementFoundation Placement = "foundation"
	PlacementImmersion  Placement = "immersion"
	PlacementMastery    Placement = "mastery"
)

// Response is the scoring view of one administered item.
type Response struct {
	Section        itembank.Section
	Params         irt.Params
	Correct        bool
	ResponseTimeMs int64
	HintUsed       bool
	SelfConfidence *float64
}

// Input is everything the mapper needs from a finished session.
type Input struct {
	Theta         float64
	StandardError float64
	Reliable      bool
	Sections      []itembank.Section
	Responses     []Response
}

// SectionScore is the score mapping applied to one section's own estimate.
type SectionScore struct {
	Theta         float64 `json:"theta"`
	StandardError float64 `json:"standard_error"`
	IQ            int     `json:"iq_score"`
	EIQ           int     `json:"eiq_score"`
	Percentile    int     `json:"percentile"`
	Items         int     `json:"items"`
	Correct       int     `json:"correct"`
}

// ScoreResult is computed once per completed session and never changes.
type ScoreResult struct {
	Theta            float64                           `json:"theta"`
	StandardError    float64                           `json:"standard_error"`
	Reliable         bool                              `json:"reliable"`
	IQ               int                               `json:"iq_score"`
	EIQ              int                               `json:"eiq_score"`
	Percentile       int                               `json:"percentile"`
	PercentileBand   string                            `json:"percentile_band"`
	Placement        Placement                         `json:"placement_level"`
	TitanTier        string                            `json:"titan_tier"`
	SectionScores    map[itembank.Section]SectionScore `json:"section_scores"`
	Strengths        []string                          `json:"strengths"`
	ImprovementAreas []string                          `json:"improvement_areas"`
	ItemsAnswered    int                               `json:"items_answered"`
	ItemsCorrect     int                               `json:"items_correct"`
	Behavior         behavior.Profile                  `json:"behavior"`
}

// Mapper turns estimates into scores. It is safe for concurrent use.
type Mapper struct {
	cfg       Config
	estimator irt.Estimator
}

// NewMapper creates a mapper. The estimator is used for per-section thetas.
func NewMapper(cfg Config, estimator irt.Estimator) *Mapper {
	return &Mapper{cfg: cfg, estimator: estimator}
}

// Config returns the mapper's configuration.
func (m *Mapper) Config() Config { return m.cfg }

// Map produces the score result. Auxiliary signals only feed Behavior.
func (m *Mapper) Map(in Input) ScoreResult {
	theta := irt.Clamp(in.Theta)
	eiq := m.cfg.EIQ.Map(theta)
	pct := Percentile(theta)

	res := ScoreResult{
		Theta:            theta,
		StandardError:    in.StandardError,
		Reliable:         in.Reliable,
		IQ:               m.cfg.IQ.Map(theta),
		EIQ:              eiq,
		Percentile:       pct,
		PercentileBand:   PercentileBand(pct),
		Placement:        m.Placement(eiq),
		TitanTier:        m.Tier(eiq),
		SectionScores:    make(map[itembank.Section]SectionScore, len(in.Sections)),
		Strengths:        []string{},
		ImprovementAreas: []string{},
	}

	bySection := make(map[itembank.Section][]irt.Observation)
	correctBySection := make(map[itembank.Section]int)
	inputs := make([]behavior.Input, 0, len(in.Responses))
	for _, r := range in.Responses {
		bySection[r.Section] = append(bySection[r.Section], irt.Observation{Params: r.Params, Correct: r.Correct})
		res.ItemsAnswered++
		if r.Correct {
			res.ItemsCorrect++
			correctBySection[r.Section]++
		}
		inputs = append(inputs, behavior.Input{
			Correct:        r.Correct,
			ResponseTimeMs: r.ResponseTimeMs,
			HintUsed:       r.HintUsed,
			ExpectedP:      irt.Probability(theta, r.Params),
			SelfConfidence: r.SelfConfidence,
		})
	}
	res.Behavior = behavior.Analyze(inputs)

	estimates := make(map[itembank.Section]irt.Estimate, len(in.Sections))
	var weighted float64
	var answered int
	for _, sec := range in.Sections {
		obs := bySection[sec]
		est := m.estimator.Estimate(obs)
		estimates[sec] = est
		res.SectionScores[sec] = SectionScore{
			Theta:         est.Theta,
			StandardError: est.StandardError,
			IQ:            m.cfg.IQ.Map(est.Theta),
			EIQ:           m.cfg.EIQ.Map(est.Theta),
			Percentile:    Percentile(est.Theta),
			Items:         len(obs),
			Correct:       correctBySection[sec],
		}
		weighted += est.Theta * float64(len(obs))
		answered += len(obs)
	}
	if answered == 0 {
		return res
	}

	// Section thetas are shrunk toward the prior harder than the overall
	// theta, so they are compared with their own item-weighted mean.
	reference := weighted / float64(answered)
	for _, sec := range in.Sections {
		if len(bySection[sec]) == 0 {
			continue
		}
		switch diff := estimates[sec].Theta - reference; {
		case diff >= m.cfg.StrengthMargin:
			res.Strengths = append(res.Strengths, string(sec))
		case diff <= -m.cfg.StrengthMargin:
			res.ImprovementAreas = append(res.ImprovementAreas, string(sec))
		}
	}

	return res
}

// Placement maps an EIQ score to a placement level.
func (m *Mapper) Placement(eiq int) Placement {
	switch {
	case eiq < m.cfg.ImmersionFrom:
		return PlacementFoundation
	case eiq < m.cfg.MasteryFrom:
		return PlacementImmersion
	default:
		return PlacementMastery
	}
}

// Tier returns the name of the highest tier whose threshold eiq reaches.
func (m *Mapper) Tier(eiq int) string {
	name := ""
	for _, t := range m.cfg.Tiers {
		if eiq >= t.MinEIQ {
			name = t.Name
		}
	}
	return name
}

// Percentile returns round(Phi(theta)*100) using the standard normal CDF.
func Percentile(theta float64) int {
	phi := 0.5 * (1 + math.Erf(theta/math.Sqrt2))
	return int(math.Round(phi * 100))
}

// PercentileBand describes a percentile in words.
func PercentileBand(p int) string {
	switch {
	case p >= 90:
		return "Exceptional"
	case p >= 75:
		return "Above Average"
	case p >= 50:
		return "Average"
	case p >= 25:
		return "Below Average"
	default:
		return "Needs Improvement"
	}
}
