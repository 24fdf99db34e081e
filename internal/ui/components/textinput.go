package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for free-response answers.
type TextInput struct {
	Model     textinput.Model
	submitted bool
	verdict   *bool
}

// NewTextInput creates a focused input.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti}
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.submitted {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	view := t.Model.View()
	if t.verdict != nil {
		if *t.verdict {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Submit freezes the input.
func (t *TextInput) Submit() {
	t.submitted = true
	t.Model.Blur()
}

// Mark shows whether the submitted answer was correct.
func (t *TextInput) Mark(correct bool) {
	t.verdict = &correct
}
