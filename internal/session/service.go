package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/adaptiq/internal/irt"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/scoring"
	"github.com/abhisek/adaptiq/internal/selection"
	"github.com/abhisek/adaptiq/internal/stopping"
)

// Service is safe for concurrent use. Operations on one session are
// serialised; different sessions proceed in parallel.
type Service struct {
	cfg    Config
	opts   Options
	mapper *scoring.Mapper
	locks  *keyedMutex
	log    *logger.Logger
}

func NewService(cfg Config, opts Options) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Banks == nil {
		return nil, errors.New("session: item bank registry is required")
	}
	opts.setDefaults()
	return &Service{
		cfg:    cfg,
		opts:   opts,
		mapper: scoring.NewMapper(cfg.Scoring, cfg.Estimator),
		locks:  newKeyedMutex(),
		log:    opts.Logger,
	}, nil
}

// Config returns the engine configuration.
func (s *Service) Config() Config { return s.cfg }

// StartSession creates an active session over the given sections, pinned
// to the current bank version.
func (s *Service) StartSession(ctx context.Context, userID string, sections []itembank.Section) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	bank := s.opts.Banks.Current()
	if err := validateSections(bank, sections); err != nil {
		return nil, err
	}

	now := s.opts.Clock()
	sess := &Session{
		ID:            s.opts.IDs.NewID(),
		UserID:        userID,
		Sections:      slices.Clone(sections),
		BankVersion:   bank.Version(),
		Theta:         0,
		StandardError: 1,
		Reliable:      true,
		Progress:      make(map[itembank.Section]*SectionProgress, len(sections)),
		Status:        StatusActive,
		StartedAt:     now,
		UpdatedAt:     now,
	}
	for _, sec := range sections {
		sess.Progress[sec] = &SectionProgress{Section: sec, StandardError: 1}
	}

	if err := s.opts.Store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.recordSession(ctx, sess, "started")
	s.log.Info("session started", "session_id", sess.ID, "user_id", userID, "sections", sections, "bank_version", sess.BankVersion)
	return sess.Clone(), nil
}

func validateSections(bank *itembank.Bank, sections []itembank.Section) error {
	if len(sections) == 0 {
		return &InvalidSectionsError{Sections: sections, Reason: "at least one section is required"}
	}
	seen := make(map[itembank.Section]bool, len(sections))
	for _, sec := range sections {
		if seen[sec] {
			return &InvalidSectionsError{Sections: sections, Reason: fmt.Sprintf("duplicate section %q", sec)}
		}
		seen[sec] = true
		if !bank.HasSection(sec) {
			return &InvalidSectionsError{Sections: sections, Reason: fmt.Sprintf("unknown section %q", sec)}
		}
	}
	return nil
}

// Get returns a snapshot of the session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.load(ctx, id)
}

// NextQuestion returns the pending item, or selects one from the
// least-progressed section that has not stopped. Sections without
// candidates are marked exhausted and skipped. When nothing can be
// served the session's stop reason is set and SectionsExhaustedError
// returned.
func (s *Service) NextQuestion(ctx context.Context, id string) (itembank.Item, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return itembank.Item{}, err
	}
	if sess.Status != StatusActive {
		return itembank.Item{}, &SessionNotActiveError{SessionID: id, Status: sess.Status}
	}
	bank, err := s.bankFor(sess)
	if err != nil {
		return itembank.Item{}, err
	}
	if sess.PendingItemID != "" {
		return bank.GetItem(sess.PendingItemID)
	}

	now := s.opts.Clock()
	if reason := s.evaluateSession(sess, now); reason.Stopped() {
		return itembank.Item{}, s.stop(ctx, sess, reason, now)
	}

	recent, err := s.opts.Exposure.Recent(ctx, sess.UserID)
	if err != nil {
		s.log.Warn("load exposure window", "session_id", id, "error", err)
		recent = nil
	}

	seen := sess.administered()
	for {
		sp := nextSection(sess)
		if sp == nil {
			break
		}
		candidates := bank.GetCandidateItems(sp.Section, seen)
		if len(candidates) == 0 {
			sp.Exhausted = true
			sp.StopReason = s.cfg.Rules.EvaluateSection(sectionState(sp))
			s.log.Debug("section exhausted", "session_id", id, "section", sp.Section, "reason", sp.StopReason)
			continue
		}

		item, err := selection.SelectNext(sess.Theta, candidates, recent)
		if err != nil {
			return itembank.Item{}, err
		}
		sess.PendingItemID = item.ID
		sess.PendingIssuedAt = now
		sess.PendingHintCount = 0
		sess.UpdatedAt = now
		if err := s.opts.Store.SaveSession(ctx, sess); err != nil {
			return itembank.Item{}, fmt.Errorf("save session: %w", err)
		}
		if err := s.opts.Exposure.Record(ctx, sess.UserID, item.ID, now); err != nil {
			s.log.Warn("record exposure", "session_id", id, "item_id", item.ID, "error", err)
		}
		return item, nil
	}

	return itembank.Item{}, s.stop(ctx, sess, stopping.AllSections, now)
}

// stop records reason on the session and returns the exhaustion error.
func (s *Service) stop(ctx context.Context, sess *Session, reason stopping.Reason, now time.Time) error {
	if sess.StopReason != reason {
		sess.StopReason = reason
		sess.UpdatedAt = now
		if err := s.opts.Store.SaveSession(ctx, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		s.log.Info("session stopped", "session_id", sess.ID, "reason", reason)
	}
	return &SectionsExhaustedError{SessionID: sess.ID, Reason: reason}
}

// nextSection picks the non-stopped section with the fewest administered
// items; ties go to the earlier section in the session's order.
func nextSection(sess *Session) *SectionProgress {
	var best *SectionProgress
	for _, sec := range sess.Sections {
		sp := sess.Progress[sec]
		if sp.Stopped() {
			continue
		}
		if best == nil || sp.Administered < best.Administered {
			best = sp
		}
	}
	return best
}

func sectionState(sp *SectionProgress) stopping.Section {
	return stopping.Section{Administered: sp.Administered, StandardError: sp.StandardError, Exhausted: sp.Exhausted}
}

func (s *Service) evaluateSession(sess *Session, now time.Time) stopping.Reason {
	secs := make([]stopping.Section, 0, len(sess.Sections))
	for _, sec := range sess.Sections {
		sp := sess.Progress[sec]
		st := sectionState(sp)
		if sp.Stopped() {
			// a stopped section stays stopped even if the rules would not
			// re-derive it from counts alone
			st.Exhausted = true
		}
		secs = append(secs, st)
	}
	return s.cfg.Rules.EvaluateSession(stopping.Session{
		Sections:     secs,
		Administered: len(sess.Responses),
		Elapsed:      now.Sub(sess.StartedAt),
	})
}

// SubmitResponse scores an answer to the pending item and re-estimates
// ability overall and for the item's section.
func (s *Service) SubmitResponse(ctx context.Context, id string, req SubmitRequest) (SubmitResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}
	if sess.Status != StatusActive {
		return SubmitResult{}, &SessionNotActiveError{SessionID: id, Status: sess.Status}
	}
	if req.ResponseTimeMs < 0 {
		return SubmitResult{}, fmt.Errorf("%w: response time must be >= 0", ErrValidation)
	}
	if c := req.ConfidenceLevel; c != nil && (*c < 0 || *c > 1) {
		return SubmitResult{}, fmt.Errorf("%w: confidence level must be in [0,1]", ErrValidation)
	}
	if sess.Answered(req.ItemID) {
		return SubmitResult{}, &DuplicateResponseError{SessionID: id, ItemID: req.ItemID}
	}
	bank, err := s.bankFor(sess)
	if err != nil {
		return SubmitResult{}, err
	}
	item, err := bank.GetItem(req.ItemID)
	if err != nil {
		return SubmitResult{}, &UnknownItemError{SessionID: id, ItemID: req.ItemID}
	}
	if req.ItemID != sess.PendingItemID {
		return SubmitResult{}, &OutOfOrderItemError{SessionID: id, ItemID: req.ItemID, Expected: sess.PendingItemID}
	}

	now := s.opts.Clock()
	correct := item.Score(req.Answer)
	prev := sess.Theta

	sess.Responses = append(sess.Responses, Response{
		ItemID:          item.ID,
		Section:         item.Section,
		Params:          item.Params,
		Answer:          req.Answer,
		Correct:         correct,
		ResponseTimeMs:  req.ResponseTimeMs,
		HintUsed:        req.HintUsed || sess.PendingHintCount > 0,
		ConfidenceLevel: req.ConfidenceLevel,
		AnsweredAt:      now,
	})

	est := s.cfg.Estimator.EstimateFrom(prev, observations(sess.Responses, ""))
	if est.Warning != nil {
		s.log.Warn("ability estimate unstable", "session_id", id, "warning", est.Warning)
	}
	sess.Theta, sess.StandardError, sess.Reliable = est.Theta, est.StandardError, est.Reliable()
	sess.Responses[len(sess.Responses)-1].ThetaAfter = est.Theta

	sp := sess.Progress[item.Section]
	secEst := s.cfg.Estimator.EstimateFrom(sp.Theta, observations(sess.Responses, item.Section))
	sp.Administered++
	if correct {
		sp.Correct++
	}
	sp.Theta, sp.StandardError = secEst.Theta, secEst.StandardError

	sess.PendingItemID = ""
	sess.PendingIssuedAt = time.Time{}
	sess.PendingHintCount = 0
	sess.UpdatedAt = now

	sp.Exhausted = len(bank.GetCandidateItems(item.Section, sess.administered())) == 0
	sp.StopReason = s.cfg.Rules.EvaluateSection(sectionState(sp))
	reason := s.evaluateSession(sess, now)
	if reason.Stopped() {
		sess.StopReason = reason
	}

	if err := s.opts.Store.SaveSession(ctx, sess); err != nil {
		return SubmitResult{}, fmt.Errorf("save session: %w", err)
	}
	s.recordResponse(ctx, sess, prev, now)

	return SubmitResult{
		ItemID:            item.ID,
		Correct:           correct,
		Theta:             est.Theta,
		StandardError:     est.StandardError,
		Signal:            s.signal(prev, est.Theta),
		Reliable:          est.Reliable(),
		SectionStopped:    sp.Stopped(),
		SectionStop:       sp.StopReason,
		SessionStopped:    reason.Stopped(),
		StopReason:        reason,
		QuestionsAnswered: len(sess.Responses),
	}, nil
}

func (s *Service) signal(prev, next float64) Signal {
	switch d := next - prev; {
	case d > s.cfg.SignalThreshold:
		return SignalHarder
	case d < -s.cfg.SignalThreshold:
		return SignalEasier
	default:
		return SignalSteady
	}
}

// observations converts responses to estimator input, optionally
// restricted to one section.
func observations(rs []Response, section itembank.Section) []irt.Observation {
	obs := make([]irt.Observation, 0, len(rs))
	for _, r := range rs {
		if section != "" && r.Section != section {
			continue
		}
		obs = append(obs, irt.Observation{Params: irtParams(r.Params), Correct: r.Correct})
	}
	return obs
}

func irtParams(p itembank.Params) irt.Params {
	return irt.Params{A: p.Discrimination, B: p.Difficulty, C: p.Guessing}
}

// Complete scores the session and marks it completed. Completing an
// already completed session returns the stored result unchanged.
func (s *Service) Complete(ctx context.Context, id string) (scoring.ScoreResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return scoring.ScoreResult{}, err
	}
	switch sess.Status {
	case StatusCompleted:
		return cloneResult(*sess.Result), nil
	case StatusAbandoned:
		return scoring.ScoreResult{}, &SessionAlreadyTerminalError{SessionID: id, Status: sess.Status}
	}

	// Final estimate from scratch so the reported theta does not depend on
	// the incremental starting points.
	est := s.cfg.Estimator.Estimate(observations(sess.Responses, ""))
	in := scoring.Input{
		Theta:         est.Theta,
		StandardError: est.StandardError,
		Reliable:      est.Reliable(),
		Sections:      sess.Sections,
		Responses:     make([]scoring.Response, len(sess.Responses)),
	}
	for i, r := range sess.Responses {
		in.Responses[i] = scoring.Response{
			Section:        r.Section,
			Params:         irtParams(r.Params),
			Correct:        r.Correct,
			ResponseTimeMs: r.ResponseTimeMs,
			HintUsed:       r.HintUsed,
			SelfConfidence: r.ConfidenceLevel,
		}
	}
	result := s.mapper.Map(in)

	now := s.opts.Clock()
	sess.Theta, sess.StandardError, sess.Reliable = est.Theta, est.StandardError, est.Reliable()
	if !sess.StopReason.Stopped() {
		sess.StopReason = ForcedStop
	}
	sess.Status = StatusCompleted
	sess.CompletedAt = &now
	sess.UpdatedAt = now
	sess.PendingItemID = ""
	sess.Result = &result

	if err := s.opts.Store.SaveSession(ctx, sess); err != nil {
		return scoring.ScoreResult{}, fmt.Errorf("save session: %w", err)
	}
	s.recordSession(ctx, sess, "completed")
	if err := s.opts.Events.AppendScoreEvent(ctx, ScoreEvent{SessionID: id, UserID: sess.UserID, Result: result, At: now}); err != nil {
		s.log.Warn("record score event", "session_id", id, "error", err)
	}
	s.log.Info("session completed",
		"session_id", id,
		"user_id", sess.UserID,
		"items", result.ItemsAnswered,
		"theta", result.Theta,
		"eiq", result.EIQ,
		"stop_reason", sess.StopReason,
	)
	return cloneResult(result), nil
}

// Abandon ends an active session without scoring it. Abandoning twice is
// a no-op; abandoning a completed session is an error.
func (s *Service) Abandon(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	switch sess.Status {
	case StatusAbandoned:
		return nil
	case StatusCompleted:
		return &SessionAlreadyTerminalError{SessionID: id, Status: sess.Status}
	}

	now := s.opts.Clock()
	sess.Status = StatusAbandoned
	sess.AbandonedAt = &now
	sess.UpdatedAt = now
	sess.PendingItemID = ""
	if err := s.opts.Store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.recordSession(ctx, sess, "abandoned")
	s.log.Info("session abandoned", "session_id", id, "user_id", sess.UserID, "responses", len(sess.Responses))
	return nil
}

// AbandonIdle abandons active sessions untouched for longer than idle and
// returns how many it ended.
func (s *Service) AbandonIdle(ctx context.Context, idle time.Duration) (int, error) {
	ids, err := s.opts.Store.ListIdle(ctx, s.opts.Clock().Add(-idle))
	if err != nil {
		return 0, fmt.Errorf("list idle sessions: %w", err)
	}
	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		err := s.Abandon(ctx, id)
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrState), errors.Is(err, ErrNotFound):
			// finished or removed since the listing
		default:
			return n, err
		}
	}
	return n, nil
}

// Progress reports the current estimate and per-section state.
func (s *Service) Progress(ctx context.Context, id string) (Progress, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{
		SessionID:          sess.ID,
		Status:             sess.Status,
		Theta:              sess.Theta,
		StandardError:      sess.StandardError,
		Reliable:           sess.Reliable,
		QuestionsCompleted: len(sess.Responses),
		Sections:           make([]SectionProgress, 0, len(sess.Sections)),
		StopReason:         sess.StopReason,
		PendingItemID:      sess.PendingItemID,
	}
	for _, sec := range sess.Sections {
		p.Sections = append(p.Sections, *sess.Progress[sec])
	}
	end := s.opts.Clock()
	switch {
	case sess.CompletedAt != nil:
		end = *sess.CompletedAt
	case sess.AbandonedAt != nil:
		end = *sess.AbandonedAt
	}
	p.Elapsed = end.Sub(sess.StartedAt)
	return p, nil
}

func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	sess, err := s.opts.Store.LoadSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &SessionNotFoundError{SessionID: id}
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return sess, nil
}

func (s *Service) bankFor(sess *Session) (*itembank.Bank, error) {
	bank, err := s.opts.Banks.Version(sess.BankVersion)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	return bank, nil
}

func (s *Service) recordSession(ctx context.Context, sess *Session, action string) {
	err := s.opts.Events.AppendSessionEvent(ctx, SessionEvent{
		SessionID:   sess.ID,
		UserID:      sess.UserID,
		Action:      action,
		Status:      sess.Status,
		StopReason:  sess.StopReason,
		BankVersion: sess.BankVersion,
		At:          sess.UpdatedAt,
	})
	if err != nil {
		s.log.Warn("record session event", "session_id", sess.ID, "action", action, "error", err)
	}
}

func (s *Service) recordResponse(ctx context.Context, sess *Session, before float64, now time.Time) {
	r := sess.Responses[len(sess.Responses)-1]
	err := s.opts.Events.AppendResponseEvent(ctx, ResponseEvent{
		SessionID:      sess.ID,
		UserID:         sess.UserID,
		ItemID:         r.ItemID,
		Section:        r.Section,
		Correct:        r.Correct,
		ResponseTimeMs: r.ResponseTimeMs,
		HintUsed:       r.HintUsed,
		ThetaBefore:    before,
		ThetaAfter:     r.ThetaAfter,
		StandardError:  sess.StandardError,
		At:             now,
	})
	if err != nil {
		s.log.Warn("record response event", "session_id", sess.ID, "item_id", r.ItemID, "error", err)
	}
}
