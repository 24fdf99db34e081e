package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/router"
	sessionscreen "github.com/abhisek/adaptiq/internal/screens/session"
	"github.com/abhisek/adaptiq/internal/session"
)

func testModel(t *testing.T) (AppModel, *session.Service) {
	t.Helper()
	bank, err := itembank.Seed()
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	svc, err := session.NewService(session.DefaultConfig(), session.Options{Banks: itembank.NewRegistry(bank)})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return newAppModel(Options{Service: svc, Bank: bank, UserID: "learner"}), svc
}

func TestViewWaitsForSize(t *testing.T) {
	m, _ := testModel(t)
	if got := m.render(); got != "" {
		t.Errorf("view before a size message = %q, want empty", got)
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(updated.(AppModel).render(), "too small") {
		t.Error("expected the minimum size message")
	}

	updated, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := updated.(AppModel).render()
	for _, want := range []string{"adaptiq", "New assessment", "learner", "Space"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := testModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("ctrl+c produced %T, want tea.QuitMsg", cmd())
	}
}

func TestEscapeOnHomeDoesNothing(t *testing.T) {
	m, _ := testModel(t)
	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("esc on the bottom screen should be ignored")
	}
}

func TestEscapeDelegatesToScreen(t *testing.T) {
	m, svc := testModel(t)
	m.router.Push(sessionscreen.New(svc, "learner", []itembank.Section{itembank.SectionCoreMath}))

	// The session has not started yet, so the screen asks to be popped.
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command from the session screen")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("esc produced %T, want router.PopScreenMsg", cmd())
	}
}
