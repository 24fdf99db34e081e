package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// ProgressBar displays a horizontal bar with an optional trailing note.
type ProgressBar struct {
	Label   string
	Percent float64
	Note    string
	Width   int
}

func NewProgressBar(label string, percent float64, note string, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, Note: note, Width: width}
}

// ConvergencePercent maps a standard error onto [0, 1]: 0 at the prior SD
// of 1, 1 at or below target.
func ConvergencePercent(se, target float64) float64 {
	if target <= 0 || target >= 1 {
		return 0
	}
	p := (1 - se) / (1 - target)
	return min(max(p, 0), 1)
}

func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("%-20s", p.Label)) + "  "
	}
	note := ""
	if p.Note != "" {
		note = "  " + p.Note
	}

	barWidth := max(p.Width-lipgloss.Width(result)-lipgloss.Width(note), 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	result += lipgloss.NewStyle().
		Background(theme.Secondary).
		Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", barWidth-filled))

	if note != "" {
		result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(note)
	}
	return result
}
