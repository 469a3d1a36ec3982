package presenter

import (
	"context"
	"log/slog"

	"github.com/aretw0/notebox/pkg/session"
)

// Authenticator is the part of the session manager the login screen uses.
type Authenticator interface {
	Login(ctx context.Context, c session.Credentials) (session.UserID, error)
	Register(ctx context.Context, c session.Credentials) (session.UserID, error)
	LoginFederated(ctx context.Context) (session.UserID, error)
	Logout(ctx context.Context) error
}

var _ Authenticator = (*session.Manager)(nil)

// LoginPresenter drives the login screen.
type LoginPresenter struct {
	auth     Authenticator
	nav      Navigator
	notifier Notifier
	logger   *slog.Logger
}

// NewLoginPresenter creates a login presenter.
func NewLoginPresenter(auth Authenticator, nav Navigator, notifier Notifier, opts ...Option) *LoginPresenter {
	o := applyOptions(opts)
	return &LoginPresenter{auth: auth, nav: nav, notifier: notifier, logger: o.logger}
}

// Login signs in with email and password.
func (p *LoginPresenter) Login(ctx context.Context, c session.Credentials) bool {
	return p.finish(p.auth.Login(ctx, c))
}

// Register creates an account and signs in.
func (p *LoginPresenter) Register(ctx context.Context, c session.Credentials) bool {
	return p.finish(p.auth.Register(ctx, c))
}

// LoginFederated signs in through the federated provider.
func (p *LoginPresenter) LoginFederated(ctx context.Context) bool {
	return p.finish(p.auth.LoginFederated(ctx))
}

// Logout ends the session, then returns to the login screen. The local
// session is cleared even when the provider sign-out fails.
func (p *LoginPresenter) Logout(ctx context.Context) error {
	err := p.auth.Logout(ctx)
	if err != nil {
		p.logger.Warn("logout incomplete", "error", err)
	}
	p.nav.Navigate(RouteLogin, true)
	return err
}

func (p *LoginPresenter) finish(id session.UserID, err error) bool {
	if err != nil {
		p.logger.Debug("authentication failed", "error", err)
		p.notifier.Alert(LoginFailed, LoginTryAgain)
		return false
	}
	p.logger.Debug("authenticated", "user", id)
	p.nav.Navigate(RouteHome, true)
	return true
}
