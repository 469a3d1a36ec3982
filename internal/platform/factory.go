package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/notebox/pkg/adapters/fs"
	"github.com/aretw0/notebox/pkg/adapters/identity"
	"github.com/aretw0/notebox/pkg/adapters/memory"
	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/notes"
	"github.com/aretw0/notebox/pkg/push"
	"github.com/aretw0/notebox/pkg/session"
)

// ErrNotAuthenticated is returned by Scope when nobody is logged in.
var ErrNotAuthenticated = errors.New("not authenticated")

const (
	accountsFile = "accounts.yaml"
	tokenFile    = "session.jwt"
	keyFile      = "session.key"
)

// App is the composed notebox client.
type App struct {
	Docs     core.DocumentStore
	Notes    *notes.Store
	Session  *session.Manager
	Tokens   *session.Tokens
	Identity *identity.Local
	Push     *push.Registrar
	Logger   *slog.Logger
}

// New wires an App over the vault at uri. The uri is adapter-specific:
// a directory for "fs", ignored for "memory".
//
//	app, err := platform.New("./vault", platform.WithAdapter("fs"))
func New(uri string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	docs, local, err := openStore(uri, o)
	if err != nil {
		return nil, err
	}
	if err := docs.Initialize(context.Background()); err != nil {
		closeStore(docs)
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	var systemPath string
	if local {
		systemPath = filepath.Join(uri, o.systemDir)
	}

	key, err := sessionKey(systemPath, o.sessionKey)
	if err != nil {
		closeStore(docs)
		return nil, err
	}
	tokens := session.NewTokens(key, o.sessionTTL)

	idp := identity.NewLocal(identity.Config{
		Path:       joinIf(systemPath, accountsFile),
		Federation: o.federation,
		Logger:     o.logger,
		Cost:       o.passwordCost,
	})

	managerOpts := []session.Option{session.WithLogger(o.logger), session.WithTokens(tokens)}
	if o.persist && systemPath != "" {
		managerOpts = append(managerOpts, session.WithTokenFile(filepath.Join(systemPath, tokenFile)))
	}

	client := o.pushClient
	if client == nil {
		client = push.NewLogClient(o.logger)
	}

	o.logger.Debug("app ready", "adapter", o.adapter, "uri", uri)
	return &App{
		Docs:     docs,
		Notes:    notes.NewStore(docs, notes.WithLogger(o.logger)),
		Session:  session.NewManager(idp, managerOpts...),
		Tokens:   tokens,
		Identity: idp,
		Push:     push.NewRegistrar(client, o.platform, push.WithLogger(o.logger)),
		Logger:   o.logger,
	}, nil
}

// openStore builds the document store and reports whether it is backed by
// a local directory.
func openStore(uri string, o *options) (core.DocumentStore, bool, error) {
	if o.store != nil {
		return o.store, false, nil
	}

	switch o.adapter {
	case "fs":
		if uri == "" {
			return nil, false, fmt.Errorf("fs adapter requires a vault path")
		}
		return fs.NewStore(fs.Config{
			Path:         uri,
			SystemDir:    o.systemDir,
			MustExist:    o.mustExist,
			EventBuffer:  o.eventBuffer,
			Logger:       o.logger,
			ErrorHandler: o.errorHandler,
		}), true, nil
	case "memory":
		return memory.New(memory.Config{EventBuffer: o.eventBuffer, Logger: o.logger}), false, nil
	default:
		return nil, false, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

func closeStore(docs core.DocumentStore) error {
	if c, ok := docs.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func joinIf(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// Start restores a persisted session and initializes push registration.
// Push failures are logged by the registrar and not returned.
func (a *App) Start(ctx context.Context) (session.UserID, bool) {
	id, ok := a.Session.Restore(ctx)
	_ = a.Push.Init(ctx)
	return id, ok
}

// Scope returns the current user's note scope.
func (a *App) Scope() (notes.Scope, error) {
	id, ok := a.Session.CurrentUser()
	if !ok {
		return "", ErrNotAuthenticated
	}
	return notes.Scope(id), nil
}

// Close releases the document store.
func (a *App) Close() error {
	return closeStore(a.Docs)
}
