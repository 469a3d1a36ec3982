package session

import "context"

// IdentityProvider is the opaque authentication service. Implementations
// return the sentinel errors of this package, or an error wrapping
// core.ErrTransport when the provider cannot be reached.
type IdentityProvider interface {
	SignUp(ctx context.Context, c Credentials) (User, error)
	SignIn(ctx context.Context, c Credentials) (User, error)
	// SignInFederated runs an external interactive flow (e.g. OAuth).
	SignInFederated(ctx context.Context) (User, error)
	SignOut(ctx context.Context) error
}
