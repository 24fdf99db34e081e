package session

import (
	"context"
	"fmt"

	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/itembank"
)

// Hint serves a hint for the pending item and marks the eventual
// response as hint-assisted. Generation runs outside the session lock.
func (s *Service) Hint(ctx context.Context, id string, req HintRequest) (hints.Result, error) {
	hreq, err := s.beginHint(ctx, id, req)
	if err != nil {
		return hints.Result{}, err
	}

	res := s.opts.Hints.Generate(ctx, hreq)
	if res.Cause != nil {
		s.log.Warn("hint generation fell back", "session_id", id, "item_id", hreq.Item.ID, "error", res.Cause)
	}

	unlock := s.locks.Lock(id)
	defer unlock()
	sess, err := s.load(ctx, id)
	if err != nil {
		return res, nil
	}
	// The session may have moved on while the hint was generated.
	if sess.Status.Terminal() || sess.PendingItemID != hreq.Item.ID {
		return res, nil
	}
	sess.Hints = append(sess.Hints, HintRecord{
		ItemID: hreq.Item.ID,
		Type:   res.Hint.Type,
		Source: res.Source,
		At:     s.opts.Clock(),
	})
	if err := s.opts.Store.SaveSession(ctx, sess); err != nil {
		s.log.Warn("save hint record", "session_id", id, "error", err)
	}
	return res, nil
}

func (s *Service) beginHint(ctx context.Context, id string, req HintRequest) (hints.Request, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, item, err := s.pending(ctx, id, req.ItemID)
	if err != nil {
		return hints.Request{}, err
	}

	now := s.opts.Clock()
	sess.PendingHintCount++
	sess.UpdatedAt = now
	if err := s.opts.Store.SaveSession(ctx, sess); err != nil {
		return hints.Request{}, fmt.Errorf("save session: %w", err)
	}

	spent := req.TimeSpentMs
	if spent <= 0 {
		spent = now.Sub(sess.PendingIssuedAt).Milliseconds()
	}
	return hints.Request{
		Item:                     item,
		AttemptCount:             sess.PendingHintCount,
		TimeSpentMs:              spent,
		Theta:                    sess.Theta,
		PreviousIncorrectAnswers: req.PreviousIncorrectAnswers,
	}, nil
}

// Describe returns a short description of the pending item. Without a
// describing generator the deterministic description is used.
func (s *Service) Describe(ctx context.Context, id string) (hints.Description, error) {
	unlock := s.locks.Lock(id)
	_, item, err := s.pending(ctx, id, "")
	unlock()
	if err != nil {
		return hints.Description{}, err
	}

	if d, ok := s.opts.Hints.(Describer); ok {
		return d.Describe(ctx, item), nil
	}
	return hints.NewLLMGenerator(nil, hints.DefaultConfig()).Describe(ctx, item), nil
}

// pending loads an active session and its pending item. A non-empty
// itemID must match the pending item.
func (s *Service) pending(ctx context.Context, id, itemID string) (*Session, itembank.Item, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, itembank.Item{}, err
	}
	if sess.Status != StatusActive {
		return nil, itembank.Item{}, &SessionNotActiveError{SessionID: id, Status: sess.Status}
	}
	if sess.PendingItemID == "" {
		return nil, itembank.Item{}, fmt.Errorf("%w: no question is pending in session %s", ErrValidation, id)
	}
	if itemID != "" && itemID != sess.PendingItemID {
		return nil, itembank.Item{}, &OutOfOrderItemError{SessionID: id, ItemID: itemID, Expected: sess.PendingItemID}
	}
	bank, err := s.bankFor(sess)
	if err != nil {
		return nil, itembank.Item{}, err
	}
	item, err := bank.GetItem(sess.PendingItemID)
	if err != nil {
		return nil, itembank.Item{}, err
	}
	return sess, item, nil
}
