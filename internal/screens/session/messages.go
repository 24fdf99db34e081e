package session

import (
	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/scoring"
	sess "github.com/abhisek/adaptiq/internal/session"
)

// startedMsg is sent once the session has been created.
type startedMsg struct {
	SessionID string
	Err       error
}

// questionMsg carries the next item, or the error that ended selection.
type questionMsg struct {
	Item itembank.Item
	Err  error
}

// submittedMsg carries the scored response and refreshed progress.
type submittedMsg struct {
	Result   sess.SubmitResult
	Progress sess.Progress
	Err      error
}

type hintMsg struct {
	Result hints.Result
	Err    error
}

type completedMsg struct {
	Result      scoring.ScoreResult
	Suggestions []string
	Err         error
}

type abandonedMsg struct {
	Err error
}
