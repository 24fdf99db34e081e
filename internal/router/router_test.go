package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

type ping struct{}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name      string
		ops       func(r *Router)
		wantDepth int
		wantTop   string
	}{
		{
			name:      "push",
			ops:       func(r *Router) { r.Push(&stubScreen{title: "question"}) },
			wantDepth: 2,
			wantTop:   "question",
		},
		{
			name: "pop",
			ops: func(r *Router) {
				r.Push(&stubScreen{title: "question"})
				r.Pop()
			},
			wantDepth: 1,
			wantTop:   "start",
		},
		{
			name:      "pop at bottom is a no-op",
			ops:       func(r *Router) { r.Pop() },
			wantDepth: 1,
			wantTop:   "start",
		},
		{
			name: "replace keeps depth",
			ops: func(r *Router) {
				r.Push(&stubScreen{title: "question"})
				r.Replace(&stubScreen{title: "results"})
			},
			wantDepth: 2,
			wantTop:   "results",
		},
		{
			name: "pop after replace returns below",
			ops: func(r *Router) {
				r.Push(&stubScreen{title: "question"})
				r.Replace(&stubScreen{title: "results"})
				r.Pop()
			},
			wantDepth: 1,
			wantTop:   "start",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&stubScreen{title: "start"})
			tt.ops(r)
			if r.Depth() != tt.wantDepth {
				t.Errorf("Depth() = %d, want %d", r.Depth(), tt.wantDepth)
			}
			if got := r.Active().Title(); got != tt.wantTop {
				t.Errorf("Active().Title() = %q, want %q", got, tt.wantTop)
			}
			if got := r.View(80, 24); got != tt.wantTop {
				t.Errorf("View() = %q, want %q", got, tt.wantTop)
			}
		})
	}
}

func TestNavigationMessagesRunInit(t *testing.T) {
	r := New(&stubScreen{title: "start"})

	q := &stubScreen{title: "question"}
	r.Update(PushScreenMsg{Screen: q})
	if !q.initRan {
		t.Error("PushScreenMsg did not run Init")
	}

	res := &stubScreen{title: "results"}
	r.Update(ReplaceScreenMsg{Screen: res})
	if !res.initRan {
		t.Error("ReplaceScreenMsg did not run Init")
	}

	r.Update(PopScreenMsg{})
	if r.Depth() != 1 {
		t.Errorf("Depth() = %d after PopScreenMsg, want 1", r.Depth())
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	bottom := &stubScreen{title: "start"}
	r := New(bottom)
	top := &stubScreen{title: "question"}
	r.Push(top)

	r.Update(ping{})

	if len(top.got) != 1 {
		t.Errorf("active screen got %d messages, want 1", len(top.got))
	}
	if len(bottom.got) != 0 {
		t.Errorf("inactive screen got %d messages, want 0", len(bottom.got))
	}
}

func TestReplaceOnEmptyStackPushes(t *testing.T) {
	r := &Router{}
	r.Replace(&stubScreen{title: "start"})
	if r.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", r.Depth())
	}
}
