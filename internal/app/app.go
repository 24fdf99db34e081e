package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/screens/home"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/layout"
)

// Options wires the terminal UI to the engine.
type Options struct {
	Service  *session.Service
	Bank     *itembank.Bank
	UserID   string
	Sections []itembank.Section
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	userID string
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(home.New(opts.Service, opts.Bank, opts.UserID, opts.Sections)),
		userID: opts.UserID,
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok {
				return m, h.HandleEscape()
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the whole frame, or nothing until the terminal size is
// known.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}
	header := layout.RenderHeader(title, m.userID+"  ", m.width)

	var hints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	if hints == nil {
		hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
