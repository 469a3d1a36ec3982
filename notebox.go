package notebox

import (
	"log/slog"
	"time"

	"github.com/aretw0/notebox/internal/platform"
	"github.com/aretw0/notebox/pkg/adapters/identity"
	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/notes"
	"github.com/aretw0/notebox/pkg/push"
	"github.com/aretw0/notebox/pkg/session"
)

// --- Types ---

// App is the composed client: note store, session and push registrar.
type App = platform.App

// Note is a public alias for a stored note.
type Note = notes.Note

// Draft is the mutable part of a note.
type Draft = notes.Draft

// Scope is a per-user partition of notes.
type Scope = notes.Scope

// Credentials are an email and password pair.
type Credentials = session.Credentials

// ErrNotAuthenticated is returned by App.Scope when nobody is logged in.
var ErrNotAuthenticated = platform.ErrNotAuthenticated

// --- Configuration ---

// Option defines a functional option for configuring an App.
type Option = platform.Option

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a custom document store.
func WithStore(store core.DocumentStore) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name ("fs" or "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithSystemDir sets the hidden directory name (e.g. ".notebox").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithEventBuffer sets the size of each subscriber's event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithMustExist ensures the vault directory already exists.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithSessionKey sets the token signing key.
func WithSessionKey(key []byte) Option {
	return platform.WithSessionKey(key)
}

// WithSessionTTL sets the session token lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return platform.WithSessionTTL(ttl)
}

// WithSessionPersistence keeps the session across restarts.
func WithSessionPersistence(enabled bool) Option {
	return platform.WithSessionPersistence(enabled)
}

// WithPlatform names the runtime platform ("web" disables push).
func WithPlatform(name string) Option {
	return platform.WithPlatform(name)
}

// WithPushClient sets the platform push client.
func WithPushClient(c push.Client) Option {
	return platform.WithPushClient(c)
}

// WithFederation enables federated login.
func WithFederation(f identity.Federation) Option {
	return platform.WithFederation(f)
}

// WithPasswordCost sets the bcrypt cost for new accounts.
func WithPasswordCost(cost int) Option {
	return platform.WithPasswordCost(cost)
}

// WithWatcherErrorHandler receives runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates an App over the vault at path.
func New(path string, opts ...Option) (*App, error) {
	return platform.New(path, opts...)
}
