package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/kangaroo/internal/config"
	"github.com/stolasapp/kangaroo/internal/sec"
	"github.com/stolasapp/kangaroo/internal/storage/db"
)

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, email string, password sec.Password) (sec.Identity, error) {
	switch {
	case email == "" || password == "":
		return "", sec.ErrMissingCredentials
	case email == "broken@example.com":
		return "", errors.New("database is locked")
	case email == "user@example.com" && password == "Password123":
		return sec.Identity(email), nil
	default:
		return "", sec.ErrInvalidCredentials
	}
}

type fakePrograms []db.Program

func (f fakePrograms) ListPrograms(context.Context) []db.Program { return f }

func TestApp_Login(t *testing.T) {
	t.Parallel()

	srv := newTestApp(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       loginResponse
	}{
		{
			name:       "valid",
			body:       `{"email":"user@example.com","password":"Password123"}`,
			wantStatus: http.StatusOK,
			want:       loginResponse{Success: true, Email: "user@example.com"},
		},
		{
			name:       "wrong password",
			body:       `{"email":"user@example.com","password":"wrong"}`,
			wantStatus: http.StatusUnauthorized,
			want:       loginResponse{Message: msgInvalidCredentials},
		},
		{
			name:       "unknown email",
			body:       `{"email":"nobody@example.com","password":"Password123"}`,
			wantStatus: http.StatusUnauthorized,
			want:       loginResponse{Message: msgInvalidCredentials},
		},
		{
			name:       "missing password",
			body:       `{"email":"user@example.com"}`,
			wantStatus: http.StatusBadRequest,
			want:       loginResponse{Message: msgMissingCredentials},
		},
		{
			name:       "empty object",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			want:       loginResponse{Message: msgMissingCredentials},
		},
		{
			name:       "malformed",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			want:       loginResponse{Message: msgMissingCredentials},
		},
		{
			name:       "wrong type",
			body:       `{"email":42,"password":"Password123"}`,
			wantStatus: http.StatusBadRequest,
			want:       loginResponse{Message: msgMissingCredentials},
		},
		{
			name:       "internal error",
			body:       `{"email":"broken@example.com","password":"Password123"}`,
			wantStatus: http.StatusInternalServerError,
			want:       loginResponse{Message: msgInternal},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(test.body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, test.wantStatus, rec.Code)
			var got loginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, test.want, got)
			assert.NotContains(t, rec.Body.String(), "database is locked")
		})
	}
}

func TestApp_Routes(t *testing.T) {
	t.Parallel()

	programs := fakePrograms{
		{ID: 1, Code: "CYB01", Name: "Bachelor's Degree in Cyber Security"},
		{ID: 2, Code: "IT01", Name: "Bachelor's Degree in Information Technology"},
	}
	srv := newTestApp(t, programs)

	t.Run("ping", func(t *testing.T) {
		t.Parallel()
		rec := serve(srv, http.MethodGet, "/api/ping")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		t.Parallel()
		rec := serve(srv, http.MethodGet, "/api/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("logout", func(t *testing.T) {
		t.Parallel()
		rec := serve(srv, http.MethodPost, "/api/logout")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	})

	t.Run("programs", func(t *testing.T) {
		t.Parallel()
		rec := serve(srv, http.MethodGet, "/api/programs")
		assert.Equal(t, http.StatusOK, rec.Code)
		var got []db.Program
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, []db.Program(programs), got)
	})

	t.Run("index redirects to login page", func(t *testing.T) {
		t.Parallel()
		rec := serve(srv, http.MethodGet, "/")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login.html", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("static file", func(t *testing.T) {
		t.Parallel()
		rec := serve(srv, http.MethodGet, "/login.html")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<form")
	})

	t.Run("missing static file", func(t *testing.T) {
		t.Parallel()
		rec := serve(srv, http.MethodGet, "/nope.html")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("request id", func(t *testing.T) {
		t.Parallel()
		rec := serve(srv, http.MethodGet, "/api/ping")
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("cors preflight", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
		req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}

func TestApp_EmptyCatalog(t *testing.T) {
	t.Parallel()

	srv := newTestApp(t, nil)
	rec := serve(srv, http.MethodGet, "/api/programs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func newTestApp(t *testing.T, programs fakePrograms) *echo.Echo {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "login.html"),
		[]byte(`<html><body><form id="login"></form></body></html>`),
		0o600,
	))

	cfg := config.Default()
	cfg.StaticDir = dir
	srv, err := New(cfg, slog.New(slog.DiscardHandler), fakeAuth{}, programs)
	require.NoError(t, err)
	return srv
}

func serve(srv http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}
