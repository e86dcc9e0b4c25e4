// Package storage provides the state management for programs, applications,
// payments and users.
package storage

import (
	"context"

	"github.com/stolasapp/kangaroo/internal/storage/db"
)

const (
	// ErrNotFound is returned when a record cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique record already exists.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidArgument is returned when a record references missing data or
	// violates a column constraint.
	ErrInvalidArgument Error = "invalid argument"
	// ErrAlreadyLinked is returned when an application already has a payment,
	// or the payment already funds another application.
	ErrAlreadyLinked Error = "payment already linked"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Programs are the methods on a storage implementation that are responsible
// for the program catalog.
type Programs interface {
	// ListPrograms returns every program ordered by name.
	ListPrograms(ctx context.Context) ([]db.Program, error)
	// GetProgram returns the program with the given ID. An [ErrNotFound] is
	// returned if it does not exist.
	GetProgram(ctx context.Context, id int64) (db.Program, error)
	// CountPrograms returns the number of programs.
	CountPrograms(ctx context.Context) (int, error)
	// InsertPrograms adds the programs, skipping any whose code is already
	// present. It returns how many were inserted.
	InsertPrograms(ctx context.Context, programs ...db.Program) (int64, error)
}

// Payments are the methods on a storage implementation that are responsible
// for payments.
type Payments interface {
	// CreatePayment inserts the payment and sets its ID.
	CreatePayment(ctx context.Context, payment *db.Payment) error
	// GetPayment returns the payment with the given ID. An [ErrNotFound] is
	// returned if it does not exist.
	GetPayment(ctx context.Context, id int64) (db.Payment, error)
}

// Applications are the methods on a storage implementation that are
// responsible for applications.
type Applications interface {
	// CreateApplication inserts the application and sets its ID. An
	// [ErrInvalidArgument] is returned if the program does not exist.
	CreateApplication(ctx context.Context, app *db.Application) error
	// GetApplication returns the application with the given ID. An
	// [ErrNotFound] is returned if it does not exist.
	GetApplication(ctx context.Context, id int64) (db.Application, error)
	// LinkPayment attaches a payment to an application in one transaction.
	// An [ErrNotFound] is returned if either record does not exist and an
	// [ErrAlreadyLinked] if either side is already linked.
	LinkPayment(ctx context.Context, applicationID, paymentID int64) error
}

// Users are the methods on a storage implementation that are responsible for
// accessing and creating users. Users are never updated or deleted.
type Users interface {
	// CreateUser inserts the user and sets its ID. An [ErrAlreadyExists] is
	// returned if the email is already in use; the existing user is untouched.
	CreateUser(ctx context.Context, user *db.User) error
	// GetUserByEmail returns the user with the exact (case-sensitive) email.
	// An [ErrNotFound] is returned if there is none.
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	// CountUsers returns the number of users.
	CountUsers(ctx context.Context) (int, error)
}

// Store is the combination interface for all record types.
type Store interface {
	Programs
	Payments
	Applications
	Users
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
