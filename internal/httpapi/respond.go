package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/notes"
	"github.com/aretw0/notebox/pkg/session"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var authErr *session.AuthError
	switch {
	case errors.As(err, &authErr):
		switch authErr.Kind {
		case session.KindInvalidInput:
			return http.StatusBadRequest
		case session.KindAccountExists:
			return http.StatusConflict
		case session.KindNetwork:
			return http.StatusServiceUnavailable
		default:
			return http.StatusUnauthorized
		}
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, notes.ErrInvalidID), errors.Is(err, notes.ErrNoScope), errors.Is(err, core.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTransport), errors.Is(err, core.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	msg := http.StatusText(status)
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		msg = string(authErr.Kind)
	}
	writeError(w, status, msg)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
