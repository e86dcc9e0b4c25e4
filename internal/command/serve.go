package command

import (
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/kangaroo/internal/app"
	"github.com/stolasapp/kangaroo/internal/server"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the login API and the static pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				appServer, err := app.New(d.cfg, d.logger, d.auth, d.gateway)
				if err != nil {
					return err
				}

				grp, ctx := errgroup.WithContext(cmd.Context())
				addr := d.cfg.Address()
				listener, err := server.Listen(ctx, addr)
				if err != nil {
					return err
				}

				d.logger.InfoContext(ctx,
					"starting app server...",
					slog.String("address", addr),
					slog.String("static_dir", d.cfg.StaticDir),
					slog.Bool("dev_mode", d.cfg.DevMode),
				)
				server.Serve(ctx, grp, appServer.Server, listener, server.DefaultTimeouts())
				return grp.Wait()
			})
		},
	}
}
