// Package session runs adaptive assessment sessions. A Service owns the
// session state machine (active, then completed or abandoned), picks
// items, re-estimates ability after every response, applies the
// stopping rules and produces the final score.
package session

import (
	"slices"
	"time"

	"github.com/abhisek/adaptiq/internal/behavior"
	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/scoring"
	"github.com/abhisek/adaptiq/internal/stopping"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool { return s != StatusActive }

// ForcedStop is recorded when a session is completed before any stopping
// rule fired.
const ForcedStop stopping.Reason = "forced"

// Signal tells the client which way the last response moved the estimate.
type Signal string

const (
	SignalHarder Signal = "harder"
	SignalEasier Signal = "easier"
	SignalSteady Signal = "steady"
)

// SectionProgress is the running state of one section.
type SectionProgress struct {
	Section       itembank.Section `json:"section"`
	Administered  int              `json:"administered"`
	Correct       int              `json:"correct"`
	Theta         float64          `json:"theta"`
	StandardError float64          `json:"standard_error"`
	Exhausted     bool             `json:"exhausted"`
	StopReason    stopping.Reason  `json:"stop_reason,omitempty"`
}

// Stopped reports whether the section will receive no more items.
func (p *SectionProgress) Stopped() bool { return p.StopReason.Stopped() }

// Response is one scored answer. Responses are append-only.
type Response struct {
	ItemID          string           `json:"item_id"`
	Section         itembank.Section `json:"section"`
	Params          itembank.Params  `json:"params"`
	Answer          string           `json:"answer"`
	Correct         bool             `json:"correct"`
	ResponseTimeMs  int64            `json:"response_time_ms"`
	HintUsed        bool             `json:"hint_used"`
	ConfidenceLevel *float64         `json:"confidence_level,omitempty"`
	ThetaAfter      float64          `json:"theta_after"`
	AnsweredAt      time.Time        `json:"answered_at"`
}

// HintRecord notes a hint served for an item.
type HintRecord struct {
	ItemID string       `json:"item_id"`
	Type   hints.Type   `json:"type"`
	Source hints.Source `json:"source"`
	At     time.Time    `json:"at"`
}

// Session is the persisted state of one assessment attempt.
type Session struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Sections    []itembank.Section `json:"sections"`
	BankVersion string             `json:"bank_version"`

	Theta         float64 `json:"theta"`
	StandardError float64 `json:"standard_error"`
	Reliable      bool    `json:"reliable"`

	Responses []Response                            `json:"responses"`
	Progress  map[itembank.Section]*SectionProgress `json:"progress"`

	PendingItemID    string       `json:"pending_item_id,omitempty"`
	PendingIssuedAt  time.Time    `json:"pending_issued_at,omitzero"`
	PendingHintCount int          `json:"pending_hint_count,omitempty"`
	Hints            []HintRecord `json:"hints,omitempty"`

	Status      Status          `json:"status"`
	StopReason  stopping.Reason `json:"stop_reason,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	AbandonedAt *time.Time      `json:"abandoned_at,omitempty"`

	Result *scoring.ScoreResult `json:"result,omitempty"`
}

// Answered reports whether itemID already has a response.
func (s *Session) Answered(itemID string) bool {
	return slices.ContainsFunc(s.Responses, func(r Response) bool { return r.ItemID == itemID })
}

// administered returns every item the session has seen, including the
// pending one.
func (s *Session) administered() map[string]bool {
	seen := make(map[string]bool, len(s.Responses)+1)
	for _, r := range s.Responses {
		seen[r.ItemID] = true
	}
	if s.PendingItemID != "" {
		seen[s.PendingItemID] = true
	}
	return seen
}

// HintTypes lists the types of hints served, in order.
func (s *Session) HintTypes() []hints.Type {
	out := make([]hints.Type, len(s.Hints))
	for i, h := range s.Hints {
		out[i] = h.Type
	}
	return out
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Sections = slices.Clone(s.Sections)
	c.Responses = make([]Response, len(s.Responses))
	for i, r := range s.Responses {
		if r.ConfidenceLevel != nil {
			v := *r.ConfidenceLevel
			r.ConfidenceLevel = &v
		}
		c.Responses[i] = r
	}
	c.Hints = slices.Clone(s.Hints)
	c.Progress = make(map[itembank.Section]*SectionProgress, len(s.Progress))
	for k, v := range s.Progress {
		p := *v
		c.Progress[k] = &p
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	if s.AbandonedAt != nil {
		t := *s.AbandonedAt
		c.AbandonedAt = &t
	}
	if s.Result != nil {
		r := cloneResult(*s.Result)
		c.Result = &r
	}
	return &c
}

func cloneResult(r scoring.ScoreResult) scoring.ScoreResult {
	out := r
	out.SectionScores = make(map[itembank.Section]scoring.SectionScore, len(r.SectionScores))
	for k, v := range r.SectionScores {
		out.SectionScores[k] = v
	}
	out.Strengths = slices.Clone(r.Strengths)
	out.ImprovementAreas = slices.Clone(r.ImprovementAreas)
	if r.Behavior.Flags != nil {
		out.Behavior.Flags = make(map[behavior.Category]int, len(r.Behavior.Flags))
		for k, v := range r.Behavior.Flags {
			out.Behavior.Flags[k] = v
		}
	}
	return out
}

// SubmitRequest is one answer to the pending item.
type SubmitRequest struct {
	ItemID          string   `json:"item_id"`
	Answer          string   `json:"answer"`
	ResponseTimeMs  int64    `json:"response_time_ms"`
	HintUsed        bool     `json:"hint_used"`
	ConfidenceLevel *float64 `json:"confidence_level,omitempty"`
}

// SubmitResult reports the updated estimate after a response.
type SubmitResult struct {
	ItemID            string          `json:"item_id"`
	Correct           bool            `json:"correct"`
	Theta             float64         `json:"theta"`
	StandardError     float64         `json:"standard_error"`
	Signal            Signal          `json:"adaptation_signal"`
	Reliable          bool            `json:"reliable"`
	SectionStopped    bool            `json:"section_stopped"`
	SectionStop       stopping.Reason `json:"section_stop_reason,omitempty"`
	SessionStopped    bool            `json:"session_stopped"`
	StopReason        stopping.Reason `json:"stop_reason,omitempty"`
	QuestionsAnswered int             `json:"questions_answered"`
}

// HintRequest asks for help on the pending item.
type HintRequest struct {
	ItemID                   string   `json:"item_id"`
	TimeSpentMs              int64    `json:"time_spent_ms"`
	PreviousIncorrectAnswers []string `json:"previous_incorrect_answers,omitempty"`
}

// Progress is a read-only view of a session.
type Progress struct {
	SessionID          string            `json:"session_id"`
	Status             Status            `json:"status"`
	Theta              float64           `json:"theta"`
	StandardError      float64           `json:"standard_error"`
	Reliable           bool              `json:"reliable"`
	QuestionsCompleted int               `json:"questions_completed"`
	Sections           []SectionProgress `json:"sections"`
	StopReason         stopping.Reason   `json:"stop_reason,omitempty"`
	PendingItemID      string            `json:"pending_item_id,omitempty"`
	Elapsed            time.Duration     `json:"elapsed_ns"`
}
