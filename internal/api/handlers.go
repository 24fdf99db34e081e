package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/scoring"
	"github.com/abhisek/adaptiq/internal/session"
)

type startRequest struct {
	Sections []itembank.Section `json:"sections"`
}

type sessionView struct {
	SessionID   string             `json:"session_id"`
	Status      session.Status     `json:"status"`
	Sections    []itembank.Section `json:"sections"`
	BankVersion string             `json:"bank_version"`
	Theta       float64            `json:"theta"`
	StartedAt   string             `json:"started_at"`
}

// questionView is an item without its keyed answer or calibration.
type questionView struct {
	ItemID     string           `json:"item_id"`
	Section    itembank.Section `json:"section"`
	Domain     string           `json:"domain,omitempty"`
	GradeLevel int              `json:"grade_level,omitempty"`
	Prompt     string           `json:"prompt"`
	Options    []string         `json:"options,omitempty"`
}

type completeView struct {
	Score       scoring.ScoreResult `json:"score"`
	Suggestions []string            `json:"study_suggestions"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "validation", "invalid body: "+err.Error())
		return
	}
	sess, err := s.svc.StartSession(r.Context(), UserFrom(r.Context()), req.Sections)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, sessionView{
		SessionID:   sess.ID,
		Status:      sess.Status,
		Sections:    sess.Sections,
		BankVersion: sess.BankVersion,
		Theta:       sess.Theta,
		StartedAt:   sess.StartedAt.UTC().Format(time.RFC3339),
	})
}

// owned resolves the {id} path parameter and checks the caller owns the
// session. Sessions of other users look like missing ones.
func (s *Server) owned(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return "", false
	}
	if sess.UserID != UserFrom(r.Context()) {
		s.writeServiceError(w, r, &session.SessionNotFoundError{SessionID: id})
		return "", false
	}
	return id, true
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := s.owned(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Progress(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	id, ok := s.owned(w, r)
	if !ok {
		return
	}
	it, err := s.svc.NextQuestion(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, questionView{
		ItemID:     it.ID,
		Section:    it.Section,
		Domain:     it.Domain,
		GradeLevel: it.GradeLevel,
		Prompt:     it.Content.Prompt,
		Options:    it.Content.Options,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.owned(w, r)
	if !ok {
		return
	}
	var req session.SubmitRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "validation", "invalid body: "+err.Error())
		return
	}
	res, err := s.svc.SubmitResponse(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	id, ok := s.owned(w, r)
	if !ok {
		return
	}
	var req session.HintRequest
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		Error(w, http.StatusBadRequest, "validation", "invalid body: "+err.Error())
		return
	}
	res, err := s.svc.Hint(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := s.owned(w, r)
	if !ok {
		return
	}
	d, err := s.svc.Describe(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, d)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.owned(w, r)
	if !ok {
		return
	}
	res, err := s.svc.Complete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	sess, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, completeView{
		Score:       res,
		Suggestions: hints.Suggestions(sess.HintTypes()),
	})
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	id, ok := s.owned(w, r)
	if !ok {
		return
	}
	if err := s.svc.Abandon(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bankView struct {
	Version  string                   `json:"version"`
	Items    int                      `json:"items"`
	Sections map[itembank.Section]int `json:"sections"`
}

func (s *Server) handleBank(w http.ResponseWriter, r *http.Request) {
	b := s.banks.Current()
	v := bankView{
		Version:  b.Version(),
		Items:    b.Len(),
		Sections: make(map[itembank.Section]int),
	}
	for _, sec := range b.Sections() {
		v.Sections[sec] = b.SectionSize(sec)
	}
	JSON(w, http.StatusOK, v)
}
