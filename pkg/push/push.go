// Package push registers the device with a platform push client. Outcomes
// are logged only; nothing here reaches the notes domain.
package push

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// PlatformWeb skips registration entirely.
const PlatformWeb = "web"

// Permission is the result of a permission request.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
)

// Notification is a received push message.
type Notification struct {
	ID    string            `json:"id,omitempty"`
	Title string            `json:"title,omitempty"`
	Body  string            `json:"body,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Handler receives client callbacks.
type Handler interface {
	OnRegistration(token string)
	OnRegistrationError(err error)
	OnNotification(n Notification)
}

// Client is the platform push capability.
type Client interface {
	RequestPermissions(ctx context.Context) (Permission, error)
	Register(ctx context.Context) error
	// Listen installs h as the callback target.
	Listen(h Handler)
}

// Registrar wires a Client to the logger.
type Registrar struct {
	client   Client
	platform string
	logger   *slog.Logger
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets the registrar logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		r.logger = logger
	}
}

// NewRegistrar creates a registrar for platform.
func NewRegistrar(client Client, platform string, opts ...Option) *Registrar {
	r := &Registrar{
		client:   client,
		platform: strings.ToLower(strings.TrimSpace(platform)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether Init will talk to the client.
func (r *Registrar) Enabled() bool {
	return r.client != nil && r.platform != "" && r.platform != PlatformWeb
}

// Init requests permission and registers when it is granted. Failures are
// logged and returned for the caller's own logging; they are never fatal.
func (r *Registrar) Init(ctx context.Context) error {
	if !r.Enabled() {
		r.logger.Debug("push registration skipped", "platform", r.platform)
		return nil
	}

	r.client.Listen(r)

	perm, err := r.client.RequestPermissions(ctx)
	if err != nil {
		r.logger.Error("push permission request failed", "error", err)
		return fmt.Errorf("failed to request push permissions: %w", err)
	}
	if perm != PermissionGranted {
		r.logger.Info("push permission not granted", "permission", perm)
		return nil
	}
	if err := r.client.Register(ctx); err != nil {
		r.OnRegistrationError(err)
		return fmt.Errorf("failed to register for push: %w", err)
	}
	return nil
}

// OnRegistration logs the device token.
func (r *Registrar) OnRegistration(token string) {
	r.logger.Info("push registered", "token", token)
}

// OnRegistrationError logs a registration failure.
func (r *Registrar) OnRegistrationError(err error) {
	r.logger.Error("push registration failed", "error", err)
}

// OnNotification logs a received notification.
func (r *Registrar) OnNotification(n Notification) {
	r.logger.Info("push notification received", "id", n.ID, "title", n.Title)
}

// HandleNotification is the entry point for shells that deliver
// notifications outside the Client callback.
func (r *Registrar) HandleNotification(n Notification) {
	r.OnNotification(n)
}

var _ Handler = (*Registrar)(nil)
