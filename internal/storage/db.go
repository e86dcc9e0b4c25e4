package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/stolasapp/kangaroo/internal/config"
	"github.com/stolasapp/kangaroo/internal/storage/db"
)

// DB is a [Store] backed by a SQLite database. A single DB is shared by the
// whole process; every method is its own unit of work.
type DB struct {
	bun *bun.DB
}

// NewDB initializes a DB with the given config and logger.
func NewDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	handle, err := db.Open(ctx, logger, cfg.DBFilepath)
	if err != nil {
		return nil, err
	}
	return &DB{bun: bun.NewDB(handle, sqlitedialect.New())}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.bun.Close()
}

// ListPrograms satisfies the [Programs] interface.
func (d *DB) ListPrograms(ctx context.Context) ([]db.Program, error) {
	programs := make([]db.Program, 0)
	err := d.bun.NewSelect().Model(&programs).Order("name ASC", "id ASC").Scan(ctx)
	return programs, mapError(err)
}

// GetProgram satisfies the [Programs] interface.
func (d *DB) GetProgram(ctx context.Context, id int64) (db.Program, error) {
	var program db.Program
	err := d.bun.NewSelect().Model(&program).Where("id = ?", id).Scan(ctx)
	return program, mapError(err)
}

// CountPrograms satisfies the [Programs] interface.
func (d *DB) CountPrograms(ctx context.Context) (int, error) {
	n, err := d.bun.NewSelect().Model((*db.Program)(nil)).Count(ctx)
	return n, mapError(err)
}

// InsertPrograms satisfies the [Programs] interface.
func (d *DB) InsertPrograms(ctx context.Context, programs ...db.Program) (int64, error) {
	if len(programs) == 0 {
		return 0, nil
	}
	res, err := d.bun.NewInsert().
		Model(&programs).
		On("CONFLICT (code) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

// CreatePayment satisfies the [Payments] interface.
func (d *DB) CreatePayment(ctx context.Context, payment *db.Payment) error {
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now()
	}
	_, err := d.bun.NewInsert().Model(payment).Returning("id").Exec(ctx)
	return mapError(err)
}

// GetPayment satisfies the [Payments] interface.
func (d *DB) GetPayment(ctx context.Context, id int64) (db.Payment, error) {
	var payment db.Payment
	err := d.bun.NewSelect().Model(&payment).Where("id = ?", id).Scan(ctx)
	return payment, mapError(err)
}

// CreateApplication satisfies the [Applications] interface.
func (d *DB) CreateApplication(ctx context.Context, app *db.Application) error {
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now()
	}
	_, err := d.bun.NewInsert().Model(app).Returning("id").Exec(ctx)
	return mapError(err)
}

// GetApplication satisfies the [Applications] interface.
func (d *DB) GetApplication(ctx context.Context, id int64) (db.Application, error) {
	var app db.Application
	err := d.bun.NewSelect().Model(&app).Where("id = ?", id).Scan(ctx)
	return app, mapError(err)
}

// LinkPayment satisfies the [Applications] interface.
func (d *DB) LinkPayment(ctx context.Context, applicationID, paymentID int64) error {
	return d.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var app db.Application
		if err := tx.NewSelect().Model(&app).Where("id = ?", applicationID).Scan(ctx); err != nil {
			return fmt.Errorf("application %d: %w", applicationID, mapError(err))
		}
		if app.PaymentID.Valid {
			return fmt.Errorf("application %d: %w", applicationID, ErrAlreadyLinked)
		}

		exists, err := tx.NewSelect().Model((*db.Payment)(nil)).Where("id = ?", paymentID).Exists(ctx)
		if err != nil {
			return mapError(err)
		} else if !exists {
			return fmt.Errorf("payment %d: %w", paymentID, ErrNotFound)
		}

		res, err := tx.NewUpdate().
			Model((*db.Application)(nil)).
			Set("payment_id = ?", paymentID).
			Where("id = ?", applicationID).
			Where("payment_id IS NULL").
			Exec(ctx)
		switch err = mapError(err); {
		case errors.Is(err, ErrAlreadyExists):
			return fmt.Errorf("payment %d: %w", paymentID, ErrAlreadyLinked)
		case err != nil:
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return mapError(err)
		} else if n != 1 {
			return fmt.Errorf("application %d: %w", applicationID, ErrAlreadyLinked)
		}
		return nil
	})
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, user *db.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	_, err := d.bun.NewInsert().Model(user).Returning("id").Exec(ctx)
	return mapError(err)
}

// GetUserByEmail satisfies the [Users] interface.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (db.User, error) {
	var user db.User
	err := d.bun.NewSelect().Model(&user).Where("email = ?", email).Limit(1).Scan(ctx)
	return user, mapError(err)
}

// CountUsers satisfies the [Users] interface.
func (d *DB) CountUsers(ctx context.Context) (int, error) {
	n, err := d.bun.NewSelect().Model((*db.User)(nil)).Count(ctx)
	return n, mapError(err)
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// mapError classifies driver errors into the package sentinels, keeping the
// original error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}
	// extended result codes are not guaranteed on every build
	switch msg := err.Error(); {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

var _ Store = (*DB)(nil)
