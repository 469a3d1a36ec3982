package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/notebox/pkg/adapters/fs"
	"github.com/aretw0/notebox/pkg/adapters/identity"
	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/push"
)

// options holds the internal configuration for an App.
type options struct {
	store        core.DocumentStore
	logger       *slog.Logger
	adapter      string
	systemDir    string
	eventBuffer  int
	mustExist    bool
	sessionKey   []byte
	sessionTTL   time.Duration
	persist      bool
	platform     string
	pushClient   push.Client
	federation   identity.Federation
	passwordCost int
	errorHandler func(error)
}

// Option defines a functional option for configuring an App.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   "fs",
		systemDir: fs.DefaultSystemDir,
		persist:   true,
		platform:  push.PlatformWeb,
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a document store. The adapter option is then ignored.
func WithStore(store core.DocumentStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the storage adapter by name ("fs" or "memory").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithSystemDir sets the hidden directory holding the cache, accounts
// and session files. Defaults to ".notebox".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithEventBuffer sets the per-subscriber event buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithMustExist requires the vault directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithSessionKey sets the token signing key. Without it a key is
// generated once and kept in the system dir.
func WithSessionKey(key []byte) Option {
	return func(o *options) {
		o.sessionKey = key
	}
}

// WithSessionTTL sets the token lifetime. Zero means no expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.sessionTTL = ttl
	}
}

// WithSessionPersistence controls whether the session survives restarts.
func WithSessionPersistence(enabled bool) Option {
	return func(o *options) {
		o.persist = enabled
	}
}

// WithPlatform names the runtime platform for push registration.
func WithPlatform(name string) Option {
	return func(o *options) {
		o.platform = name
	}
}

// WithPushClient sets the push client used on non-web platforms.
func WithPushClient(c push.Client) Option {
	return func(o *options) {
		o.pushClient = c
	}
}

// WithFederation enables federated login.
func WithFederation(f identity.Federation) Option {
	return func(o *options) {
		o.federation = f
	}
}

// WithPasswordCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithPasswordCost(cost int) Option {
	return func(o *options) {
		o.passwordCost = cost
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
