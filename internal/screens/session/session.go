package session

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/screens/summary"
	sess "github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
)

// SessionScreen runs one adaptive assessment.
type SessionScreen struct {
	svc      *sess.Service
	userID   string
	sections []itembank.Section
	now      func() time.Time

	sessionID string
	item      *itembank.Item
	shownAt   time.Time
	useMC     bool
	mc        components.MultiChoice
	input     components.TextInput

	hint        *hints.Hint
	hintLoading bool
	feedback    *sess.SubmitResult
	progress    *sess.Progress

	busy        bool
	quitConfirm bool
	errMsg      string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.EscapeHandler = (*SessionScreen)(nil)

func New(svc *sess.Service, userID string, sections []itembank.Section) *SessionScreen {
	return &SessionScreen{
		svc:      svc,
		userID:   userID,
		sections: sections,
		now:      time.Now,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	s.busy = true
	return s.startCmd()
}

func (s *SessionScreen) Title() string {
	return "Assessment"
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Abandon"},
			{Key: "N", Description: "Keep going"},
		}
	case s.feedback != nil:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.item == nil:
		return nil
	case s.useMC:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "Tab", Description: "Hint"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Answer"},
		{Key: "Tab", Description: "Hint"},
		{Key: "Esc", Description: "Quit"},
	}
}

// HandleEscape asks for confirmation before abandoning a running session.
func (s *SessionScreen) HandleEscape() tea.Cmd {
	if s.sessionID == "" || s.errMsg != "" {
		return popCmd
	}
	if s.quitConfirm {
		s.quitConfirm = false
		return nil
	}
	s.quitConfirm = true
	return nil
}

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.quitConfirm:
		return renderQuitConfirm(width)
	case s.item == nil:
		return renderLoading(width)
	}
	return s.renderQuestion(width, height)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)
	case questionMsg:
		return s.handleQuestion(msg)
	case submittedMsg:
		return s.handleSubmitted(msg)
	case hintMsg:
		s.hintLoading = false
		if msg.Err == nil {
			h := msg.Result.Hint
			s.hint = &h
		}
		return s, nil
	case completedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		next := summary.New(msg.Result, msg.Suggestions)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	case abandonedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, popCmd
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.item != nil && !s.useMC && s.feedback == nil && !s.busy {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.busy = false
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.sessionID = msg.SessionID
	return s, s.nextCmd()
}

func (s *SessionScreen) handleQuestion(msg questionMsg) (screen.Screen, tea.Cmd) {
	if errors.Is(msg.Err, sess.ErrExhausted) {
		return s, s.completeCmd()
	}
	s.busy = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	it := msg.Item
	s.item = &it
	s.shownAt = s.now()
	s.hint = nil
	s.feedback = nil
	s.useMC = len(it.Content.Options) > 0
	if s.useMC {
		s.mc = components.NewMultiChoice(it.Content.Options)
	} else {
		s.input = components.NewTextInput("Type your answer...", 80)
	}
	return s, nil
}

func (s *SessionScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	res := msg.Result
	s.feedback = &res
	p := msg.Progress
	s.progress = &p
	if s.useMC {
		s.mc.Mark(res.Correct)
	} else {
		s.input.Mark(res.Correct)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, popCmd
	}
	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.quitConfirm = false
			s.busy = true
			return s, s.abandonCmd()
		case "n", "N":
			s.quitConfirm = false
		}
		return s, nil
	}
	if s.busy || s.item == nil {
		return s, nil
	}
	if s.feedback != nil {
		stopped := s.feedback.SessionStopped
		s.feedback = nil
		s.busy = true
		if stopped {
			return s, s.completeCmd()
		}
		return s, s.nextCmd()
	}
	if key == "tab" {
		if s.hint != nil || s.hintLoading {
			return s, nil
		}
		s.hintLoading = true
		return s, s.hintCmd()
	}

	if s.useMC {
		var cmd tea.Cmd
		s.mc, cmd = s.mc.Update(msg)
		if s.mc.Submitted {
			s.busy = true
			return s, s.submitCmd(s.mc.Chosen())
		}
		return s, cmd
	}

	if key == "enter" {
		if s.input.Value() == "" {
			return s, nil
		}
		s.input.Submit()
		s.busy = true
		return s, s.submitCmd(s.input.Value())
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func popCmd() tea.Msg { return router.PopScreenMsg{} }

func (s *SessionScreen) startCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := s.svc.StartSession(context.Background(), s.userID, s.sections)
		if err != nil {
			return startedMsg{Err: err}
		}
		return startedMsg{SessionID: st.ID}
	}
}

func (s *SessionScreen) nextCmd() tea.Cmd {
	id := s.sessionID
	return func() tea.Msg {
		it, err := s.svc.NextQuestion(context.Background(), id)
		return questionMsg{Item: it, Err: err}
	}
}

func (s *SessionScreen) submitCmd(answer string) tea.Cmd {
	id := s.sessionID
	req := sess.SubmitRequest{
		ItemID:         s.item.ID,
		Answer:         answer,
		ResponseTimeMs: s.now().Sub(s.shownAt).Milliseconds(),
	}
	return func() tea.Msg {
		ctx := context.Background()
		res, err := s.svc.SubmitResponse(ctx, id, req)
		if err != nil {
			return submittedMsg{Err: err}
		}
		p, err := s.svc.Progress(ctx, id)
		return submittedMsg{Result: res, Progress: p, Err: err}
	}
}

func (s *SessionScreen) hintCmd() tea.Cmd {
	id := s.sessionID
	req := sess.HintRequest{
		ItemID:      s.item.ID,
		TimeSpentMs: s.now().Sub(s.shownAt).Milliseconds(),
	}
	return func() tea.Msg {
		res, err := s.svc.Hint(context.Background(), id, req)
		return hintMsg{Result: res, Err: err}
	}
}

func (s *SessionScreen) completeCmd() tea.Cmd {
	id := s.sessionID
	return func() tea.Msg {
		ctx := context.Background()
		res, err := s.svc.Complete(ctx, id)
		if err != nil {
			return completedMsg{Err: err}
		}
		var used []hints.Type
		if st, err := s.svc.Get(ctx, id); err == nil {
			used = st.HintTypes()
		}
		return completedMsg{Result: res, Suggestions: hints.Suggestions(used)}
	}
}

func (s *SessionScreen) abandonCmd() tea.Cmd {
	id := s.sessionID
	return func() tea.Msg {
		return abandonedMsg{Err: s.svc.Abandon(context.Background(), id)}
	}
}
