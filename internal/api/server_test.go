package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/hints"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/stopping"
)

const testSecret = "test-secret-0123456789"

type harness struct {
	t    *testing.T
	srv  *Server
	auth *Auth
	bank *itembank.Bank
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, session.DefaultConfig())
}

func newHarnessWith(t *testing.T, cfg session.Config) *harness {
	t.Helper()
	bank, err := itembank.Seed()
	require.NoError(t, err)
	reg := itembank.NewRegistry(bank)

	svc, err := session.NewService(cfg, session.Options{
		Banks: reg,
		IDs:   &session.SequentialIDs{Prefix: "a"},
		Hints: &hints.RuleGenerator{NewID: func() string { return "hint-1" }},
	})
	require.NoError(t, err)

	auth := NewAuth(testSecret, "adaptiq")
	return &harness{
		t:    t,
		auth: auth,
		bank: bank,
		srv: NewServer(Options{
			Service:     svc,
			Banks:       reg,
			Auth:        auth,
			CORSOrigins: []string{"http://localhost:3000"},
		}),
	}
}

func (h *harness) token(user string) string {
	h.t.Helper()
	tok, err := h.auth.Issue(user, time.Hour)
	require.NoError(h.t, err)
	return tok
}

// do sends a request as user and decodes the JSON response into out
// when out is non-nil.
func (h *harness) do(user, method, path string, body any, out any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+h.token(user))
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func (h *harness) start(user string, sections ...itembank.Section) string {
	h.t.Helper()
	var v sessionView
	rec := h.do(user, http.MethodPost, "/v1/assessments", startRequest{Sections: sections}, &v)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	return v.SessionID
}

func TestHealthIsPublic(t *testing.T) {
	h := newHarness(t)
	rec := h.do("", http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)

	rec := h.do("", http.MethodGet, "/v1/bank", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/bank", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	h.srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	other := NewAuth("another-secret-abcdef", "adaptiq")
	tok, err := other.Issue("u1", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v1/bank", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr = httptest.NewRecorder()
	h.srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	a := NewAuth(testSecret, "adaptiq")
	tok, err := a.Issue("u1", time.Minute)
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = a.Parse(tok)
	assert.Error(t, err)

	_, err = a.Issue("", time.Minute)
	assert.Error(t, err)
}

func TestBank(t *testing.T) {
	h := newHarness(t)
	var v bankView
	rec := h.do("u1", http.MethodGet, "/v1/bank", nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, h.bank.Version(), v.Version)
	assert.Equal(t, h.bank.Len(), v.Items)
	assert.Equal(t, h.bank.SectionSize(itembank.SectionCoreMath), v.Sections[itembank.SectionCoreMath])
}

func TestStartValidation(t *testing.T) {
	h := newHarness(t)

	var body ErrorBody
	rec := h.do("u1", http.MethodPost, "/v1/assessments", startRequest{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body.Code)

	rec = h.do("u1", http.MethodPost, "/v1/assessments", map[string]any{"sections": []string{"core_math"}, "extra": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestFullAssessmentFlow(t *testing.T) {
	h := newHarness(t)
	id := h.start("u1", itembank.SectionCoreMath)

	// The pending question is stable across calls and hides the answer.
	var q1, q2 questionView
	require.Equal(t, http.StatusOK, h.do("u1", http.MethodGet, "/v1/assessments/"+id+"/next", nil, &q1).Code)
	rec := h.do("u1", http.MethodGet, "/v1/assessments/"+id+"/next", nil, &q2)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, q1.ItemID, q2.ItemID)
	assert.NotContains(t, rec.Body.String(), `"answer"`)

	var hint hints.Result
	require.Equal(t, http.StatusOK, h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/hint", nil, &hint).Code)
	assert.Equal(t, hints.SourceFallback, hint.Source)
	assert.NotEmpty(t, hint.Hint.Content)

	var desc hints.Description
	require.Equal(t, http.StatusOK, h.do("u1", http.MethodGet, "/v1/assessments/"+id+"/description", nil, &desc).Code)
	assert.Equal(t, q1.ItemID, desc.ItemID)

	it, err := h.bank.GetItem(q1.ItemID)
	require.NoError(t, err)

	var res session.SubmitResult
	rec = h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/responses", session.SubmitRequest{
		ItemID:         q1.ItemID,
		Answer:         it.Content.Answer,
		ResponseTimeMs: 20000,
	}, &res)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, res.Correct)
	assert.Greater(t, res.Theta, 0.0)

	// Same item again is a validation error.
	rec = h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/responses", session.SubmitRequest{
		ItemID:         q1.ItemID,
		Answer:         "x",
		ResponseTimeMs: 1000,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var prog session.Progress
	require.Equal(t, http.StatusOK, h.do("u1", http.MethodGet, "/v1/assessments/"+id, nil, &prog).Code)
	assert.Equal(t, 1, prog.QuestionsCompleted)

	var done completeView
	rec = h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/complete", nil, &done)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, done.Score.ItemsAnswered)
	assert.NotEmpty(t, done.Suggestions)

	// Completed sessions refuse further questions and abandonment.
	assert.Equal(t, http.StatusConflict, h.do("u1", http.MethodGet, "/v1/assessments/"+id+"/next", nil, nil).Code)
	assert.Equal(t, http.StatusConflict, h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/abandon", nil, nil).Code)
}

func TestExhaustedSessionReportsStopReason(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Rules.MaxQuestions = 1
	h := newHarnessWith(t, cfg)
	id := h.start("u1", itembank.SectionCoreMath)

	var q questionView
	require.Equal(t, http.StatusOK, h.do("u1", http.MethodGet, "/v1/assessments/"+id+"/next", nil, &q).Code)
	rec := h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/responses", session.SubmitRequest{
		ItemID:         q.ItemID,
		Answer:         "wrong",
		ResponseTimeMs: 5000,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do("u1", http.MethodGet, "/v1/assessments/"+id+"/next", nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "exhausted", body.Code)
	assert.Equal(t, string(stopping.MaxQuestions), body.StopReason)

	// A stopped session can still be scored.
	assert.Equal(t, http.StatusOK, h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/complete", nil, nil).Code)
}

func TestOwnership(t *testing.T) {
	h := newHarness(t)
	id := h.start("owner", itembank.SectionCoreMath)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/assessments/" + id},
		{http.MethodGet, "/v1/assessments/" + id + "/next"},
		{http.MethodPost, "/v1/assessments/" + id + "/abandon"},
	} {
		rec := h.do("intruder", tc.method, tc.path, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}

	assert.Equal(t, http.StatusNotFound, h.do("owner", http.MethodGet, "/v1/assessments/nope", nil, nil).Code)
}

func TestAbandon(t *testing.T) {
	h := newHarness(t)
	id := h.start("u1", itembank.SectionCoreMath)

	assert.Equal(t, http.StatusNoContent, h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/abandon", nil, nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/abandon", nil, nil).Code, "idempotent")
	assert.Equal(t, http.StatusConflict, h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/complete", nil, nil).Code)
}

func TestHintWithoutPendingQuestion(t *testing.T) {
	h := newHarness(t)
	id := h.start("u1", itembank.SectionCoreMath)

	rec := h.do("u1", http.MethodPost, "/v1/assessments/"+id+"/hint", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/bank", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
