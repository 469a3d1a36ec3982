// Package session holds the identity of the current user.
//
// The Manager is the session context of a client: it wraps an opaque
// IdentityProvider, normalizes every failure into an *AuthError and can
// persist the session as a signed token between process runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/aretw0/notebox/pkg/core"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTokens enables token issuing, required for persistence.
func WithTokens(t *Tokens) Option {
	return func(m *Manager) {
		m.tokens = t
	}
}

// WithTokenFile persists the session token at path.
func WithTokenFile(path string) Option {
	return func(m *Manager) {
		m.tokenFile = path
	}
}

// Manager is the session context.
type Manager struct {
	provider  IdentityProvider
	logger    *slog.Logger
	tokens    *Tokens
	tokenFile string

	mu      sync.RWMutex
	current *User
}

// NewManager creates a session manager with no current user.
func NewManager(provider IdentityProvider, opts ...Option) *Manager {
	m := &Manager{provider: provider, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentUser returns the authenticated user id, if any.
func (m *Manager) CurrentUser() (UserID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", false
	}
	return m.current.ID, true
}

// User returns the full identity of the current user, if any.
func (m *Manager) User() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return User{}, false
	}
	return *m.current, true
}

// Token issues a session token for the current user.
func (m *Manager) Token() (string, error) {
	u, ok := m.User()
	if !ok {
		return "", errors.New("not authenticated")
	}
	if m.tokens == nil {
		return "", errors.New("token issuing is not configured")
	}
	return m.tokens.Issue(u)
}

// Login signs in with email and password.
func (m *Manager) Login(ctx context.Context, c Credentials) (UserID, error) {
	if err := c.Validate(); err != nil {
		return "", m.fail("login", &AuthError{Op: "login", Kind: KindInvalidInput, Err: err})
	}
	return m.authenticate(ctx, "login", func(ctx context.Context) (User, error) {
		return m.provider.SignIn(ctx, normalize(c))
	})
}

// Register creates an account and signs in as it.
func (m *Manager) Register(ctx context.Context, c Credentials) (UserID, error) {
	if err := c.Validate(); err != nil {
		return "", m.fail("register", &AuthError{Op: "register", Kind: KindInvalidInput, Err: err})
	}
	return m.authenticate(ctx, "register", func(ctx context.Context) (User, error) {
		return m.provider.SignUp(ctx, normalize(c))
	})
}

// LoginFederated delegates to the provider's external interactive flow.
func (m *Manager) LoginFederated(ctx context.Context) (UserID, error) {
	return m.authenticate(ctx, "federated login", m.provider.SignInFederated)
}

// Logout invalidates the session. The local session is cleared even if
// the provider reports an error; that error is still returned.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.provider.SignOut(ctx)

	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if m.tokenFile != "" {
		if rmErr := os.Remove(m.tokenFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("failed to remove session file: %w", rmErr))
		}
	}

	if prev != nil {
		m.logger.Info("logged out", "user", prev.ID)
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Restore loads a persisted session. An absent, expired or invalid token
// leaves the manager unauthenticated.
func (m *Manager) Restore(ctx context.Context) (UserID, bool) {
	if m.tokenFile == "" || m.tokens == nil {
		return "", false
	}
	data, err := os.ReadFile(m.tokenFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("failed to read session file", "path", m.tokenFile, "error", err)
		}
		return "", false
	}
	u, err := m.tokens.Verify(strings.TrimSpace(string(data)))
	if err != nil {
		m.logger.Info("discarding persisted session", "error", err)
		return "", false
	}

	m.mu.Lock()
	m.current = &u
	m.mu.Unlock()
	m.logger.Debug("session restored", "user", u.ID)
	return u.ID, true
}

func normalize(c Credentials) Credentials {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return c
}

func (m *Manager) authenticate(ctx context.Context, op string, fn func(context.Context) (User, error)) (UserID, error) {
	u, err := fn(ctx)
	if err != nil {
		return "", m.fail(op, &AuthError{Op: op, Kind: classify(err), Err: err})
	}
	if u.ID == "" {
		return "", m.fail(op, &AuthError{Op: op, Kind: KindRejected, Err: errors.New("provider returned no user id")})
	}

	m.mu.Lock()
	m.current = &u
	m.mu.Unlock()

	m.persist(u)
	m.logger.Info("authenticated", "op", op, "user", u.ID, "provider", u.Provider)
	return u.ID, nil
}

func (m *Manager) fail(op string, err *AuthError) error {
	m.logger.Warn("authentication failed", "op", op, "kind", err.Kind, "error", err.Err)
	return err
}

func (m *Manager) persist(u User) {
	if m.tokenFile == "" || m.tokens == nil {
		return
	}
	token, err := m.tokens.Issue(u)
	if err == nil {
		err = atomic.WriteFile(m.tokenFile, strings.NewReader(token+"\n"))
	}
	if err != nil {
		m.logger.Warn("failed to persist session", "path", m.tokenFile, "error", err)
	}
}

func classify(err error) Kind {
	var netErr net.Error
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrAccountExists):
		return KindAccountExists
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrProviderUnavailable), errors.Is(err, core.ErrTransport),
		errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return KindNetwork
	default:
		return KindRejected
	}
}
