package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	sessionscreen "github.com/abhisek/adaptiq/internal/screens/session"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// HomeScreen lets the user pick the sections to be assessed on.
type HomeScreen struct {
	svc    *session.Service
	bank   *itembank.Bank
	userID string
	menu   components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New builds the picker. preselected sections start checked; when empty,
// every section is.
func New(svc *session.Service, bank *itembank.Bank, userID string, preselected []itembank.Section) *HomeScreen {
	want := make(map[itembank.Section]bool, len(preselected))
	for _, s := range preselected {
		want[s] = true
	}
	var items []components.MenuItem
	for _, sec := range bank.Sections() {
		items = append(items, components.MenuItem{
			Label:   fmt.Sprintf("%-20s %3d items", itembank.SectionDisplayName(sec), bank.SectionSize(sec)),
			Value:   string(sec),
			Checked: len(want) == 0 || want[sec],
		})
	}
	return &HomeScreen{
		svc:    svc,
		bank:   bank,
		userID: userID,
		menu:   components.NewMenu(items, true),
	}
}

func (h *HomeScreen) Init() tea.Cmd { return nil }

func (h *HomeScreen) Title() string { return "New assessment" }

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space", Description: "Toggle"},
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.MenuChosenMsg:
		sections := make([]itembank.Section, len(msg.Values))
		for i, v := range msg.Values {
			sections[i] = itembank.Section(v)
		}
		next := sessionscreen.New(h.svc, h.userID, sections)
		return h, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	case tea.KeyMsg:
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Title.Render("Adaptive assessment"), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Subtitle.Render(
		fmt.Sprintf("Item bank %s · %d items", h.bank.Version(), h.bank.Len())), width))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Label.Render("Choose the sections to be assessed on"), width))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(h.menu.View(), width))
	if len(h.menu.Values()) == 0 {
		b.WriteString("\n")
		b.WriteString(layout.Centered(theme.Warning.Render("Select at least one section."), width))
	}
	return b.String()
}
