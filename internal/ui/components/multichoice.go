package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. It does not know the keyed
// answer; after submission it can mark the chosen option right or wrong.
type MultiChoice struct {
	Options   []string
	Selected  int
	Submitted bool
	// Verdict is set by Mark after the answer was scored.
	Verdict *bool
}

func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options}
}

// Update handles keyboard navigation. Enter and the option letter keys
// submit.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
	default:
		if len(key) == 1 {
			if i := int(key[0] - 'a'); i >= 0 && i < len(m.Options) {
				m.Selected = i
				m.Submitted = true
			}
		}
	}

	return m, nil
}

// Chosen returns the selected option text.
func (m MultiChoice) Chosen() string {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return ""
	}
	return m.Options[m.Selected]
}

// Mark records whether the chosen option was correct.
func (m *MultiChoice) Mark(correct bool) {
	m.Verdict = &correct
}

func (m MultiChoice) View() string {
	var s string
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%c)  %s", prefix, 'A'+i, opt)

		switch {
		case m.Submitted && i == m.Selected && m.Verdict != nil && *m.Verdict:
			s += theme.Correct.Render(line) + "\n"
		case m.Submitted && i == m.Selected && m.Verdict != nil:
			s += theme.Incorrect.Render(line) + "\n"
		case m.Submitted:
			style := lipgloss.NewStyle().Foreground(theme.TextDim)
			if i == m.Selected {
				style = theme.Selected
			}
			s += style.Render(line) + "\n"
		case i == m.Selected:
			s += theme.Selected.Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}
	return s
}
