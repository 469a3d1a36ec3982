package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/aretw0/notebox/pkg/notes"
	"github.com/aretw0/notebox/pkg/session"
)

type ctxKey int

const userKey ctxKey = iota

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionBody struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.startSession(w, r, http.StatusCreated, (*session.Manager).Register)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.startSession(w, r, http.StatusOK, (*session.Manager).Login)
}

// startSession runs auth through a request-scoped Manager so input
// validation and failure normalization match the client.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, status int,
	auth func(*session.Manager, context.Context, session.Credentials) (session.UserID, error)) {
	var body credentialsBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	m := session.NewManager(s.provider, session.WithLogger(s.logger), session.WithTokens(s.tokens))
	id, err := auth(m, r.Context(), session.Credentials{Email: body.Email, Password: body.Password})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := m.Token()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, sessionBody{Token: token, UserID: string(id)})
}

// authenticate requires a bearer token. Browsers cannot set headers on
// WebSocket handshakes, so access_token is accepted as a query fallback.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		u, err := s.tokens.Verify(token)
		if err != nil {
			s.logger.Debug("token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

// scope returns the note scope of the authenticated caller.
func scope(r *http.Request) notes.Scope {
	u, _ := r.Context().Value(userKey).(session.User)
	return notes.Scope(u.ID)
}
