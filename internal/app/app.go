// Package app contains the HTTP front-end: the login API consumed by the
// bundled pages and the static files themselves.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/stolasapp/kangaroo/internal/config"
	"github.com/stolasapp/kangaroo/internal/sec"
	"github.com/stolasapp/kangaroo/internal/storage/db"
)

// Authenticator is the login façade behind POST /api/login.
type Authenticator interface {
	Login(ctx context.Context, email string, password sec.Password) (sec.Identity, error)
}

// ProgramLister provides the catalog behind GET /api/programs.
type ProgramLister interface {
	ListPrograms(ctx context.Context) []db.Program
}

// New creates the front-end server. Static files are served from
// cfg.StaticDir.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	auth Authenticator,
	programs ProgramLister,
) (*echo.Echo, error) {
	staticDir, err := filepath.Abs(cfg.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static files directory: %w", err)
	}

	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)
	srv.Debug = cfg.DevMode

	srv.Use(
		logRequests(logger),
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
		}),
	)

	handler{auth: auth, programs: programs}.register(srv)
	srv.Static("/", staticDir)
	return srv, nil
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			level := slog.LevelDebug
			if err != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(req.Context(), level, "request handled", attrs...)
			return err
		}
	}
}
