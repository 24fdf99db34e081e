package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one queued answer for MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockResponseJSON marshals v into a queued answer. It panics on
// marshal failure and is meant for tests.
func MockResponseJSON(v any) MockResponse {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return MockResponse{Content: b}
}

// MockProvider replays queued answers in FIFO order and records the
// requests it saw. An empty queue yields ErrProviderUnavailable.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	if req.Schema != nil {
		if err := validateResponse(req.Schema, next.Content); err != nil {
			return nil, err
		}
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Enqueue(resp ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp...)
}

// Calls returns a copy of the recorded requests.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
