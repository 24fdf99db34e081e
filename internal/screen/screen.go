package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/ui/layout"
)

// Screen is one page of the terminal UI.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the screen content, excluding header and footer.
	View(width, height int) string
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that handle Esc themselves
// instead of letting the app pop them, for example to confirm before
// abandoning an assessment.
type EscapeHandler interface {
	HandleEscape() tea.Cmd
}
