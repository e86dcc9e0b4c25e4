package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stolasapp/kangaroo/internal/sec"
	"github.com/stolasapp/kangaroo/internal/storage"
	"github.com/stolasapp/kangaroo/internal/storage/db"
)

// Demo account created by [Gateway.Bootstrap] in dev mode.
const (
	DemoEmail                 = "user@example.com"
	DemoPassword sec.Password = "Password123"
)

// SeedPrograms returns the catalog inserted into an empty programs table.
func SeedPrograms() []db.Program {
	return []db.Program{
		{
			Code:        "IT01",
			Name:        "Bachelor's Degree in Information Technology",
			Description: "Undergraduate degree in Information Technology",
		},
		{
			Code:        "SW01",
			Name:        "Bachelor's Degree in Software",
			Description: "Undergraduate degree in Software Engineering and Development",
		},
		{
			Code:        "CYB01",
			Name:        "Bachelor's Degree in Cyber Security",
			Description: "Undergraduate degree focusing on cybersecurity principles and practices",
		},
	}
}

// BootstrapOptions controls the optional parts of [Gateway.Bootstrap].
type BootstrapOptions struct {
	// SeedDemoUser creates the demo account when no users exist. Dev mode only.
	SeedDemoUser bool
}

// Bootstrap seeds the program catalog if it is empty and, when enabled, the
// demo account if there are no users. It is idempotent. Failures are logged
// and otherwise ignored so the process can start degraded.
func (g *Gateway) Bootstrap(ctx context.Context, opts BootstrapOptions) {
	if err := g.seedPrograms(ctx); err != nil {
		g.logger.ErrorContext(ctx, "failed to seed programs", slog.Any("error", err))
	}
	if !opts.SeedDemoUser {
		return
	}
	if err := g.seedDemoUser(ctx); err != nil {
		g.logger.ErrorContext(ctx, "failed to seed demo user", slog.Any("error", err))
	}
}

func (g *Gateway) seedPrograms(ctx context.Context) error {
	if n, err := g.store.CountPrograms(ctx); err != nil {
		return err
	} else if n > 0 {
		return nil
	}
	n, err := g.store.InsertPrograms(ctx, SeedPrograms()...)
	if err != nil {
		return err
	}
	g.logger.InfoContext(ctx, "seeded programs", slog.Int64("count", n))
	return nil
}

func (g *Gateway) seedDemoUser(ctx context.Context) error {
	if n, err := g.store.CountUsers(ctx); err != nil {
		return err
	} else if n > 0 {
		return nil
	}
	switch err := g.CreateUser(ctx, DemoEmail, DemoPassword); {
	case errors.Is(err, storage.ErrAlreadyExists):
		return nil
	case err != nil:
		return fmt.Errorf("create %s: %w", DemoEmail, err)
	}
	g.logger.WarnContext(ctx, "seeded demo user; disable dev_mode outside development",
		slog.String("email", DemoEmail),
	)
	return nil
}
