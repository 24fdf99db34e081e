// Package layout draws the frame shared by every screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// Smallest terminal the assessment renders in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key: action" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal too small\n\nadaptiq needs at least %d x %d\n(currently %d x %d)",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

// bar is the bordered strip used for both header and footer.
func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader puts the product name on the left, the screen title in the
// middle and status (usually the user id) on the right.
func RenderHeader(title, status string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  adaptiq")
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	// Border and padding take four columns.
	inner := max(width-4, 0)
	gapL := max((inner-lipgloss.Width(mid))/2-lipgloss.Width(brand), 1)
	gapR := max(inner-lipgloss.Width(brand)-gapL-lipgloss.Width(mid)-lipgloss.Width(right), 1)

	return bar(width).Render(brand + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right)
}

func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return bar(width).Render("  " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, padding the content to
// fill the space between them.
func RenderFrame(header, content, footer string, width, height int) string {
	body := lipgloss.NewStyle().
		Width(width).
		Height(max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Centered renders s horizontally centred in width.
func Centered(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(s)
}
