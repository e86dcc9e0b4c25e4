package sec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	// ErrMissingCredentials is returned when the email or password is empty.
	ErrMissingCredentials Error = "missing email or password"
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials Error = "invalid credentials"
)

// Error is an error type returned by authentication.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Identity identifies an authenticated applicant. It is the account email.
type Identity string

// UserAuthenticator checks a password against a stored account. It returns
// [ErrInvalidCredentials] when the account is unknown or the password is wrong.
type UserAuthenticator interface {
	AuthenticateUser(ctx context.Context, email string, password Password) (Identity, error)
}

// Authenticator is the single login entry point shared by the HTTP API and the
// scripting bridge. It holds no session state: every call is an independent
// check.
type Authenticator struct {
	users  UserAuthenticator
	logger *slog.Logger
}

// NewAuthenticator returns an Authenticator backed by users.
func NewAuthenticator(users UserAuthenticator, logger *slog.Logger) Authenticator {
	return Authenticator{users: users, logger: logger}
}

// Login authenticates email and password. Failed credentials are an expected
// outcome and only logged at debug; any other error is logged and wrapped.
func (a Authenticator) Login(ctx context.Context, email string, password Password) (Identity, error) {
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}
	id, err := a.users.AuthenticateUser(ctx, email, password)
	switch {
	case err == nil:
		a.logger.DebugContext(ctx, "login succeeded", slog.String("email", email))
		return id, nil
	case errors.Is(err, ErrInvalidCredentials):
		a.logger.DebugContext(ctx, "login rejected", slog.String("email", email))
		return "", ErrInvalidCredentials
	default:
		a.logger.ErrorContext(ctx, "login failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("login failed: %w", err)
	}
}
