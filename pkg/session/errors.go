package session

import (
	"errors"
	"fmt"
)

// Errors an IdentityProvider reports. The Manager folds them into an AuthError.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountExists       = errors.New("account already exists")
	ErrCancelled           = errors.New("sign-in cancelled")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// ErrAuthFailed matches every *AuthError under errors.Is.
var ErrAuthFailed = errors.New("authentication failed")

// Kind classifies an authentication failure.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindAccountExists      Kind = "account_exists"
	KindNetwork            Kind = "network"
	KindCancelled          Kind = "cancelled"
	KindRejected           Kind = "rejected"
)

// AuthError is the single failure signal of the session layer. Callers
// only need to branch on its presence; Kind and Err are kept for logs.
type AuthError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrAuthFailed }
