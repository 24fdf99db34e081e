package stopping

import (
	"testing"
	"time"
)

func TestEvaluateSection(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name string
		in   Section
		want Reason
	}{
		{"fresh section", Section{StandardError: 1}, Continue},
		{"low SE but too few items", Section{Administered: 4, StandardError: 0.2}, Continue},
		{"converged", Section{Administered: 5, StandardError: 0.29}, Converged},
		{"SE at threshold is not converged", Section{Administered: 8, StandardError: 0.3}, Continue},
		{"item cap", Section{Administered: 15, StandardError: 0.5}, MaxItems},
		{"exhausted before minimum", Section{Administered: 2, StandardError: 0.7, Exhausted: true}, Exhausted},
		{"converged wins over exhausted", Section{Administered: 6, StandardError: 0.25, Exhausted: true}, Converged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.EvaluateSection(tt.in); got != tt.want {
				t.Errorf("EvaluateSection = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluateSession(t *testing.T) {
	r := DefaultRules()
	r.MaxQuestions = 20
	r.TimeBudget = 30 * time.Minute

	open := Section{Administered: 3, StandardError: 0.6}
	done := Section{Administered: 15, StandardError: 0.4}

	tests := []struct {
		name string
		in   Session
		want Reason
	}{
		{"one open section", Session{Sections: []Section{done, open}, Administered: 18}, Continue},
		{"cap reported over section state", Session{Sections: []Section{done, done}, Administered: 20}, MaxQuestions},
		{"all stopped under cap", Session{Sections: []Section{done, {Exhausted: true, StandardError: 1}}, Administered: 15}, AllSections},
		{"global cap", Session{Sections: []Section{open}, Administered: 20}, MaxQuestions},
		{"time budget", Session{Sections: []Section{open}, Administered: 3, Elapsed: 31 * time.Minute}, TimeExhausted},
		{"no sections", Session{}, AllSections},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.EvaluateSession(tt.in); got != tt.want {
				t.Errorf("EvaluateSession = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluateSession_DisabledCaps(t *testing.T) {
	r := DefaultRules()
	s := Session{Sections: []Section{{Administered: 1, StandardError: 0.9}}, Administered: 1000, Elapsed: 100 * time.Hour}
	if got := r.EvaluateSession(s); got != Continue {
		t.Errorf("EvaluateSession = %q, want continue when caps are disabled", got)
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}
	bad := []Rules{
		{ConvergenceSE: 0, MinItemsPerSection: 1, MaxItemsPerSection: 2},
		{ConvergenceSE: 0.3, MinItemsPerSection: 5, MaxItemsPerSection: 4},
		{ConvergenceSE: 0.3, MinItemsPerSection: 1, MaxItemsPerSection: 0},
		{ConvergenceSE: 0.3, MinItemsPerSection: 1, MaxItemsPerSection: 2, TimeBudget: -time.Second},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("rules[%d] validated, want error", i)
		}
	}
}
