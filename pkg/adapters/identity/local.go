// Package identity provides a local session.IdentityProvider: accounts
// live in a YAML file with bcrypt password hashes, and federated sign-in
// is delegated to a pluggable Federation.
package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/session"
)

// ProviderPassword names accounts created with email and password.
const ProviderPassword = "password"

// FederatedIdentity is what an external identity flow returns.
type FederatedIdentity struct {
	Provider string
	Subject  string
	Email    string
}

// Federation runs an external interactive sign-in flow.
type Federation interface {
	Authenticate(ctx context.Context) (FederatedIdentity, error)
}

// Config holds the configuration for the local provider.
type Config struct {
	// Path of the accounts file. Empty keeps accounts in memory only.
	Path       string
	Federation Federation
	Logger     *slog.Logger
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

type account struct {
	ID           string    `yaml:"id"`
	Email        string    `yaml:"email,omitempty"`
	PasswordHash string    `yaml:"password_hash,omitempty"`
	Provider     string    `yaml:"provider"`
	Subject      string    `yaml:"subject,omitempty"`
	CreatedAt    time.Time `yaml:"created_at"`
}

type accountsFile struct {
	Version  int        `yaml:"version"`
	Accounts []*account `yaml:"accounts"`
}

// Local implements session.IdentityProvider.
type Local struct {
	config   Config
	logger   *slog.Logger
	mu       sync.Mutex
	accounts []*account
	loaded   bool
}

// NewLocal creates a local identity provider.
func NewLocal(config Config) *Local {
	if config.Cost == 0 {
		config.Cost = bcrypt.DefaultCost
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{config: config, logger: logger}
}

// load reads the accounts file once. Callers hold l.mu.
func (l *Local) load() error {
	if l.loaded || l.config.Path == "" {
		l.loaded = true
		return nil
	}
	data, err := os.ReadFile(l.config.Path)
	if errors.Is(err, os.ErrNotExist) {
		l.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read accounts: %w: %w", core.ErrTransport, err)
	}

	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse accounts file %s: %w", l.config.Path, err)
	}
	l.accounts = f.Accounts
	l.loaded = true
	return nil
}

// save writes the accounts file atomically. Callers hold l.mu.
func (l *Local) save() error {
	if l.config.Path == "" {
		return nil
	}
	data, err := yaml.Marshal(accountsFile{Version: 1, Accounts: l.accounts})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.config.Path), 0755); err != nil {
		return fmt.Errorf("failed to create accounts dir: %w: %w", core.ErrTransport, err)
	}
	if err := atomic.WriteFile(l.config.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write accounts: %w: %w", core.ErrTransport, err)
	}
	return nil
}

func (l *Local) byEmail(email string) *account {
	for _, a := range l.accounts {
		if a.Provider == ProviderPassword && a.Email == email {
			return a
		}
	}
	return nil
}

func (l *Local) bySubject(provider, subject string) *account {
	for _, a := range l.accounts {
		if a.Provider == provider && a.Subject == subject {
			return a
		}
	}
	return nil
}

func (a *account) user() session.User {
	return session.User{ID: session.UserID(a.ID), Email: a.Email, Provider: a.Provider}
}

// SignUp creates a password account.
func (l *Local) SignUp(ctx context.Context, c session.Credentials) (session.User, error) {
	if err := ctx.Err(); err != nil {
		return session.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), l.config.Cost)
	if err != nil {
		return session.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.load(); err != nil {
		return session.User{}, err
	}
	if l.byEmail(c.Email) != nil {
		return session.User{}, session.ErrAccountExists
	}

	a := &account{
		ID:           uuid.NewString(),
		Email:        c.Email,
		PasswordHash: string(hash),
		Provider:     ProviderPassword,
		CreatedAt:    time.Now().UTC(),
	}
	l.accounts = append(l.accounts, a)
	if err := l.save(); err != nil {
		l.accounts = l.accounts[:len(l.accounts)-1]
		return session.User{}, err
	}
	l.logger.Debug("account created", "user", a.ID)
	return a.user(), nil
}

// SignIn checks email and password.
func (l *Local) SignIn(ctx context.Context, c session.Credentials) (session.User, error) {
	if err := ctx.Err(); err != nil {
		return session.User{}, err
	}

	l.mu.Lock()
	if err := l.load(); err != nil {
		l.mu.Unlock()
		return session.User{}, err
	}
	a := l.byEmail(c.Email)
	var hash string
	if a != nil {
		hash = a.PasswordHash
	}
	l.mu.Unlock()

	if a == nil {
		return session.User{}, session.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(c.Password)); err != nil {
		return session.User{}, session.ErrInvalidCredentials
	}
	return a.user(), nil
}

// SignInFederated runs the configured federation flow and links the
// external subject to a local account, creating it on first use.
func (l *Local) SignInFederated(ctx context.Context) (session.User, error) {
	if l.config.Federation == nil {
		return session.User{}, session.ErrProviderUnavailable
	}
	ident, err := l.config.Federation.Authenticate(ctx)
	if err != nil {
		return session.User{}, err
	}
	if ident.Provider == "" || ident.Subject == "" {
		return session.User{}, errors.New("federated identity without provider or subject")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.load(); err != nil {
		return session.User{}, err
	}
	if a := l.bySubject(ident.Provider, ident.Subject); a != nil {
		return a.user(), nil
	}

	a := &account{
		ID:        uuid.NewString(),
		Email:     ident.Email,
		Provider:  ident.Provider,
		Subject:   ident.Subject,
		CreatedAt: time.Now().UTC(),
	}
	l.accounts = append(l.accounts, a)
	if err := l.save(); err != nil {
		l.accounts = l.accounts[:len(l.accounts)-1]
		return session.User{}, err
	}
	l.logger.Debug("federated account linked", "user", a.ID, "provider", a.Provider)
	return a.user(), nil
}

// SignOut is a no-op: the local provider keeps no server-side session.
func (l *Local) SignOut(ctx context.Context) error {
	return nil
}

var _ session.IdentityProvider = (*Local)(nil)
