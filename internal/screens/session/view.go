package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/itembank"
	sess "github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

func (s *SessionScreen) renderQuestion(width, height int) string {
	var b strings.Builder

	b.WriteString(s.renderProgress(width))
	b.WriteString("\n")

	cardWidth := min(width-8, 90)
	n := 1
	if s.progress != nil {
		n = s.progress.QuestionsCompleted + 1
		if s.feedback != nil {
			n--
		}
	}
	var card strings.Builder
	card.WriteString(theme.Label.Render(fmt.Sprintf("Question %d · %s", n, itembank.SectionDisplayName(s.item.Section))))
	card.WriteString("\n\n")
	card.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(cardWidth - 6).Render(s.item.Content.Prompt))
	card.WriteString("\n\n")
	if s.useMC {
		card.WriteString(s.mc.View())
	} else {
		card.WriteString(s.input.View())
		card.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Card.Width(cardWidth).Render(card.String())))
	b.WriteString("\n")

	switch {
	case s.hintLoading:
		b.WriteString(layout.Centered(theme.Hint.Render("Thinking of a hint..."), width))
		b.WriteString("\n")
	case s.hint != nil:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.HintCard.Width(cardWidth).Render("Hint: "+s.hint.Content)))
		b.WriteString("\n")
	}

	if s.feedback != nil {
		b.WriteString("\n")
		b.WriteString(layout.Centered(renderFeedback(*s.feedback), width))
		b.WriteString("\n")
	}

	return b.String()
}

func renderFeedback(r sess.SubmitResult) string {
	verdict := theme.Incorrect.Render("Not quite.")
	if r.Correct {
		verdict = theme.Correct.Render("Correct!")
	}
	est := theme.Label.Render(fmt.Sprintf("   θ %.2f ± %.2f", r.Theta, r.StandardError))
	line := verdict + est
	switch {
	case r.SessionStopped:
		line += "\n" + theme.Label.Render("That was the last question. Press any key for your results.")
	case r.SectionStopped:
		line += "\n" + theme.Label.Render("Section finished.")
	}
	return line
}

// renderProgress draws one bar per section showing how close its estimate
// is to the convergence target.
func (s *SessionScreen) renderProgress(width int) string {
	if s.progress == nil {
		return ""
	}
	target := s.svc.Config().Rules.ConvergenceSE
	barWidth := min(width-8, 90)
	var b strings.Builder
	for _, sp := range s.progress.Sections {
		note := fmt.Sprintf("%d items", sp.Administered)
		pct := components.ConvergencePercent(sp.StandardError, target)
		if sp.Administered == 0 {
			pct = 0
		}
		if sp.Stopped() {
			note += " · done"
			pct = 1
		}
		bar := components.NewProgressBar(itembank.SectionDisplayName(sp.Section), pct, note, barWidth)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(theme.Value.Render("Abandon this assessment?"), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Label.Render("Abandoned assessments are not scored."), width))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Error).Render("[Y] Yes, abandon"), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Primary).Render("[N] No, keep going"), width))
	return b.String()
}

func renderLoading(width int) string {
	return layout.Centered(theme.Hint.Render("\n\n\nPreparing your assessment..."), width)
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\nError: %s\n\nPress any key to go back.", errMsg))
}
