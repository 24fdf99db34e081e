package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/adaptiq/internal/logger"
)

// RequestLog is one recorded Generate call.
type RequestLog struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Purpose      Purpose `json:"purpose"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
	Success      bool    `json:"success"`
	ErrorMessage string  `json:"error_message,omitempty"`
	RequestBody  string  `json:"request_body"`
	ResponseBody string  `json:"response_body,omitempty"`
}

// RequestRecorder persists request logs.
type RequestRecorder interface {
	AppendLLMRequest(ctx context.Context, rec RequestLog) error
}

type recordingProvider struct {
	inner    Provider
	provider string
	rec      RequestRecorder
	log      *logger.Logger
}

// WithRecording wraps p so that every call is appended to rec. A failed
// append is logged and does not affect the call result.
func WithRecording(p Provider, providerName string, rec RequestRecorder, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &recordingProvider{inner: p, provider: providerName, rec: rec, log: log}
}

func (r *recordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	entry := RequestLog{
		Provider:    r.provider,
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: renderRequest(req),
	}
	if resp != nil {
		if resp.Model != "" {
			entry.Model = resp.Model
		}
		entry.InputTokens = resp.Usage.InputTokens
		entry.OutputTokens = resp.Usage.OutputTokens
		entry.ResponseBody = string(resp.Content)
		if c := LookupCost(entry.Model); c != nil {
			entry.CostUSD = c.Cost(entry.InputTokens, entry.OutputTokens)
		}
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}

	if r.rec != nil {
		if recErr := r.rec.AppendLLMRequest(context.WithoutCancel(ctx), entry); recErr != nil {
			r.log.Warn("record llm request", "error", recErr, "purpose", entry.Purpose)
		}
	}
	r.log.Debug("llm request",
		"provider", entry.Provider,
		"model", entry.Model,
		"purpose", entry.Purpose,
		"latency_ms", entry.LatencyMs,
		"success", entry.Success,
	)
	return resp, err
}

func (r *recordingProvider) ModelID() string { return r.inner.ModelID() }

func renderRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
