package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhisek/adaptiq/internal/session"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	StopReason string `json:"stop_reason,omitempty"`
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: message, Code: code})
}

// writeServiceError maps session error categories to status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var exhausted *session.SectionsExhaustedError
	switch {
	case errors.As(err, &exhausted):
		JSON(w, http.StatusConflict, ErrorBody{
			Error:      err.Error(),
			Code:       "exhausted",
			StopReason: string(exhausted.Reason),
		})
	case errors.Is(err, session.ErrNotFound):
		Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, session.ErrValidation):
		Error(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, session.ErrState):
		Error(w, http.StatusConflict, "state", err.Error())
	case errors.Is(err, session.ErrExhausted):
		Error(w, http.StatusConflict, "exhausted", err.Error())
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
