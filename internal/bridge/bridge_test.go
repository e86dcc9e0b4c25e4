package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stolasapp/kangaroo/internal/sec"
)

type authFunc func(ctx context.Context, email string, password sec.Password) (sec.Identity, error)

func (f authFunc) Login(ctx context.Context, email string, password sec.Password) (sec.Identity, error) {
	return f(ctx, email, password)
}

func TestBridge_Login(t *testing.T) {
	t.Parallel()

	b := New(authFunc(func(_ context.Context, email string, password sec.Password) (sec.Identity, error) {
		switch {
		case email == "db@example.com":
			return "", errors.New("disk I/O error")
		case email == "user@example.com" && password == "Password123":
			return sec.Identity(email), nil
		default:
			return "", sec.ErrInvalidCredentials
		}
	}))

	tests := []struct {
		name     string
		email    string
		password string
		want     string
		wantOK   bool
	}{
		{name: "valid", email: "user@example.com", password: "Password123", want: "user@example.com", wantOK: true},
		{name: "wrong password", email: "user@example.com", password: "nope"},
		{name: "internal error", email: "db@example.com", password: "Password123"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, ok := b.Login(t.Context(), test.email, test.password)
			assert.Equal(t, test.wantOK, ok)
			assert.Equal(t, test.want, got)
		})
	}
}
