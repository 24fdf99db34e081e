package itembank

// domainSections maps content domains used by authoring tools to sections.
var domainSections = map[string]Section{
	"mathematical_reasoning": SectionCoreMath,
	"algebra_foundations":    SectionCoreMath,
	"calculus_basics":        SectionCoreMath,
	"differential_equations": SectionCoreMath,

	"logical_reasoning":      SectionAppliedReasoning,
	"spatial_reasoning":      SectionAppliedReasoning,
	"verbal_reasoning":       SectionAppliedReasoning,
	"quantitative_reasoning": SectionAppliedReasoning,
	"systems_thinking":       SectionAppliedReasoning,

	"emotional_awareness": SectionAIConceptual,
	"social_skills":       SectionAIConceptual,
	"ml_theory":           SectionAIConceptual,
	"ai_ethics":           SectionAIConceptual,
}

// SectionForDomain maps a content domain to its section. Unknown domains
// fall back to applied reasoning.
func SectionForDomain(domain string) Section {
	if s, ok := domainSections[domain]; ok {
		return s
	}
	return SectionAppliedReasoning
}
