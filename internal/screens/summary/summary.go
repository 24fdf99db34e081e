package summary

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/behavior"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/scoring"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// SummaryScreen shows the score report of a completed assessment.
type SummaryScreen struct {
	result      scoring.ScoreResult
	suggestions []string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

func New(result scoring.ScoreResult, suggestions []string) *SummaryScreen {
	return &SummaryScreen{result: result, suggestions: suggestions}
}

func (s *SummaryScreen) Init() tea.Cmd { return nil }

func (s *SummaryScreen) Title() string { return "Results" }

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result
	var b strings.Builder

	b.WriteString(layout.Centered(theme.Title.Render("Assessment complete"), width))
	b.WriteString("\n\n")

	headline := fmt.Sprintf("EIQ %d    IQ %d    %d%s percentile (%s)",
		r.EIQ, r.IQ, r.Percentile, ordinal(r.Percentile), r.PercentileBand)
	b.WriteString(layout.Centered(theme.Value.Render(headline), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Label.Render(
		fmt.Sprintf("%s · %s", r.TitanTier, placementName(r.Placement))), width))
	b.WriteString("\n")

	est := fmt.Sprintf("θ = %.2f ± %.2f    %d/%d correct", r.Theta, r.StandardError, r.ItemsCorrect, r.ItemsAnswered)
	b.WriteString(layout.Centered(theme.Label.Render(est), width))
	b.WriteString("\n")
	if !r.Reliable {
		b.WriteString(layout.Centered(theme.Warning.Render("The estimate did not converge; treat this score as provisional."), width))
		b.WriteString("\n")
	}

	if len(r.SectionScores) > 0 {
		b.WriteString(heading("Sections", width))
		for _, sec := range sectionOrder(r.SectionScores) {
			sc := r.SectionScores[sec]
			line := fmt.Sprintf("%-20s  EIQ %3d   θ %5.2f ± %.2f   %d/%d",
				itembank.SectionDisplayName(sec), sc.EIQ, sc.Theta, sc.StandardError, sc.Correct, sc.Items)
			style := theme.Body
			switch {
			case slices.Contains(r.Strengths, string(sec)):
				style = theme.Correct
			case slices.Contains(r.ImprovementAreas, string(sec)):
				style = theme.Warning
			}
			b.WriteString(layout.Centered(style.Render(line), width))
			b.WriteString("\n")
		}
	}

	if flags := behaviorLine(r.Behavior); flags != "" {
		b.WriteString(heading("Response patterns", width))
		b.WriteString(layout.Centered(theme.Label.Render(flags), width))
		b.WriteString("\n")
	}

	if len(s.suggestions) > 0 {
		b.WriteString(heading("Next steps", width))
		for _, sug := range s.suggestions {
			b.WriteString(layout.Centered(theme.Body.Render("• "+sug), width))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func heading(title string, width int) string {
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(max(width-8, 0), 60)))
	return "\n" + layout.Centered(theme.Label.Render(title), width) + "\n" +
		layout.Centered(divider, width) + "\n"
}

func sectionOrder(m map[itembank.Section]scoring.SectionScore) []itembank.Section {
	var out []itembank.Section
	for _, sec := range itembank.AllSections() {
		if _, ok := m[sec]; ok {
			out = append(out, sec)
		}
	}
	var custom []itembank.Section
	for sec := range m {
		if !slices.Contains(out, sec) {
			custom = append(custom, sec)
		}
	}
	slices.Sort(custom)
	return append(out, custom...)
}

func behaviorLine(p behavior.Profile) string {
	if len(p.Flags) == 0 {
		return ""
	}
	cats := make([]string, 0, len(p.Flags))
	for c := range p.Flags {
		cats = append(cats, string(c))
	}
	slices.Sort(cats)
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, fmt.Sprintf("%s ×%d", c, p.Flags[behavior.Category(c)]))
	}
	return fmt.Sprintf("confidence %.0f%%   %s", p.Confidence*100, strings.Join(parts, "   "))
}

func placementName(p scoring.Placement) string {
	s := strings.ReplaceAll(string(p), "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
