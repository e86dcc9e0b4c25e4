// Package bridge adapts the login façade for embedded script callers, which
// have no status codes: a login either yields the identity or nothing.
package bridge

import (
	"context"

	"github.com/stolasapp/kangaroo/internal/sec"
)

// Authenticator is the login façade the bridge forwards to.
type Authenticator interface {
	Login(ctx context.Context, email string, password sec.Password) (sec.Identity, error)
}

// Bridge is the object exposed to script callers.
type Bridge struct {
	auth Authenticator
}

// New returns a Bridge over auth.
func New(auth Authenticator) Bridge {
	return Bridge{auth: auth}
}

// Login returns the authenticated email and true, or "" and false for any
// failure. The cause is logged by the façade, never returned.
func (b Bridge) Login(ctx context.Context, email, password string) (string, bool) {
	id, err := b.auth.Login(ctx, email, sec.Password(password))
	if err != nil {
		return "", false
	}
	return string(id), true
}
