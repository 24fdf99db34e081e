package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// MenuItem is one row of a Menu.
type MenuItem struct {
	Label    string
	Value    string
	Checked  bool
	Disabled bool
}

// Menu is a vertical list. With Multi set, space toggles the highlighted
// row and enter confirms the checked set; otherwise enter picks the
// highlighted row.
type Menu struct {
	Items    []MenuItem
	Selected int
	Multi    bool
}

// MenuChosenMsg is emitted when the user confirms the menu.
type MenuChosenMsg struct {
	Values []string
}

func NewMenu(items []MenuItem, multi bool) Menu {
	m := Menu{Items: items, Multi: multi}
	for i, item := range items {
		if !item.Disabled {
			m.Selected = i
			break
		}
	}
	return m
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "space", " ":
		if m.Multi && m.valid() {
			m.Items[m.Selected].Checked = !m.Items[m.Selected].Checked
		}
	case "enter":
		values := m.Values()
		if len(values) == 0 {
			return m, nil
		}
		return m, func() tea.Msg { return MenuChosenMsg{Values: values} }
	}

	return m, nil
}

func (m Menu) valid() bool {
	return m.Selected >= 0 && m.Selected < len(m.Items) && !m.Items[m.Selected].Disabled
}

// Values returns what enter would confirm right now.
func (m Menu) Values() []string {
	if !m.Multi {
		if !m.valid() {
			return nil
		}
		return []string{m.Items[m.Selected].Value}
	}
	var out []string
	for _, it := range m.Items {
		if it.Checked && !it.Disabled {
			out = append(out, it.Value)
		}
	}
	return out
}

func (m Menu) View() string {
	var s string
	for i, item := range m.Items {
		label := item.Label
		if m.Multi {
			box := "[ ] "
			if item.Checked {
				box = "[x] "
			}
			label = box + label
		}
		switch {
		case item.Disabled:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render("    "+label) + "\n"
		case i == m.Selected:
			s += theme.Selected.Render("  ▸ "+label) + "\n"
		default:
			s += theme.Unselected.Render("    "+label) + "\n"
		}
	}
	return s
}
