// Package httpapi exposes the note store over REST, with live queries
// over WebSocket and JWT bearer auth.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/aretw0/notebox/pkg/notes"
	"github.com/aretw0/notebox/pkg/session"
)

// Server serves the notebox API.
type Server struct {
	notes    *notes.Store
	provider session.IdentityProvider
	tokens   *session.Tokens
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCheckOrigin overrides the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// New builds a Server. Accounts are handled by provider and sessions are
// signed by tokens.
func New(store *notes.Store, provider session.IdentityProvider, tokens *session.Tokens, opts ...Option) *Server {
	s := &Server{
		notes:    store,
		provider: provider,
		tokens:   tokens,
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/accounts", s.handleRegister).Methods(http.MethodPost)
	v1.HandleFunc("/sessions", s.handleLogin).Methods(http.MethodPost)

	n := v1.PathPrefix("/notes").Subrouter()
	n.Use(s.authenticate)
	n.HandleFunc("", s.handleList).Methods(http.MethodGet)
	n.HandleFunc("", s.handleCreate).Methods(http.MethodPost)
	// live routes are registered before {id} so "live" is not taken as an id
	n.HandleFunc("/live", s.handleLiveList).Methods(http.MethodGet)
	n.HandleFunc("/{id}", s.handleGet).Methods(http.MethodGet)
	n.HandleFunc("/{id}", s.handleUpdate).Methods(http.MethodPut)
	n.HandleFunc("/{id}", s.handleDelete).Methods(http.MethodDelete)
	n.HandleFunc("/{id}/live", s.handleLiveOne).Methods(http.MethodGet)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
