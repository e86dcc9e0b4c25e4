// Package server provides shared HTTP server utilities.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Timeouts bounds the phases of a served request and the graceful shutdown.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	// Write covers handler time, including any wait for a free password
	// derivation slot.
	Write    time.Duration
	Shutdown time.Duration
}

// DefaultTimeouts returns the timeouts used by the serve command.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ReadHeader: 1 * time.Second,
		Read:       5 * time.Second,
		Write:      15 * time.Second,
		Shutdown:   10 * time.Second,
	}
}

// Listen creates a TCP listener on the given address.
// Use "127.0.0.1:0" for a random available port.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}

// Serve starts an HTTP server on the given listener and registers graceful
// shutdown when the context is canceled. Both run on grp.
func Serve(
	ctx context.Context,
	grp *errgroup.Group,
	srv *http.Server,
	listener net.Listener,
	timeouts Timeouts,
) {
	srv.ReadHeaderTimeout = timeouts.ReadHeader
	srv.ReadTimeout = timeouts.Read
	srv.WriteTimeout = timeouts.Write

	grp.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	grp.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Shutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
