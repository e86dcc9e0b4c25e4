// Package intake implements the application-intake operations: the program
// catalog, applications, payments and applicant accounts. It composes the
// [storage.Store] with [sec.Hasher] and owns the cross-record rules storage
// alone cannot express.
package intake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/influxdata/influxdb/pkg/snowflake"

	"github.com/stolasapp/kangaroo/internal/sec"
	"github.com/stolasapp/kangaroo/internal/storage"
	"github.com/stolasapp/kangaroo/internal/storage/db"
)

// InvalidID is returned in place of a record ID whenever an error is.
const InvalidID int64 = -1

// ErrUnknownProgram is returned when an application names a program that does
// not exist.
var ErrUnknownProgram = fmt.Errorf("%w: unknown program", storage.ErrInvalidArgument)

// Gateway is the persistence gateway for intake records.
type Gateway struct {
	store  storage.Store
	hasher *sec.Hasher
	logger *slog.Logger
	refs   *snowflake.Generator
}

// New returns a Gateway over store, deriving credentials with hasher.
func New(store storage.Store, hasher *sec.Hasher, logger *slog.Logger) *Gateway {
	return &Gateway{
		store:  store,
		hasher: hasher,
		logger: logger,
		refs:   snowflake.New(rand.IntN(1023)), //nolint:gosec,mnd // this isn't for crypto
	}
}

// ListPrograms returns the catalog ordered by name. It never fails: storage
// errors are logged and yield an empty list.
func (g *Gateway) ListPrograms(ctx context.Context) []db.Program {
	programs, err := g.store.ListPrograms(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to list programs", slog.Any("error", err))
		return []db.Program{}
	}
	return programs
}

// CreatePayment records a standalone payment and returns its ID. An empty
// reference is replaced with a generated one.
func (g *Gateway) CreatePayment(ctx context.Context, amount float64, reference string, paid bool) (int64, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return InvalidID, fmt.Errorf("%w: invalid payment amount %v", storage.ErrInvalidArgument, amount)
	}
	if reference = strings.TrimSpace(reference); reference == "" {
		reference = g.NewPaymentReference()
	}
	payment := db.Payment{
		Amount:    amount,
		Reference: reference,
		Paid:      paid,
	}
	if err := g.store.CreatePayment(ctx, &payment); err != nil {
		g.logger.ErrorContext(ctx, "failed to create payment",
			slog.String("reference", reference),
			slog.Any("error", err),
		)
		return InvalidID, err
	}
	return payment.ID, nil
}

// NewPaymentReference returns a unique, time-ordered payment reference.
func (g *Gateway) NewPaymentReference() string {
	return "PAY-" + strings.ToUpper(strconv.FormatUint(g.refs.Next(), 36)) //nolint:mnd // base36
}

// NewApplication holds the applicant-supplied fields of an application.
type NewApplication struct {
	FullName    string
	NRCNumber   string
	ProgramID   int64
	Grade12Path string
	NRCPath     string
}

// CreateApplication stores a submitted application without a payment and
// returns its ID. The program must exist.
func (g *Gateway) CreateApplication(ctx context.Context, req NewApplication) (int64, error) {
	switch {
	case strings.TrimSpace(req.FullName) == "":
		return InvalidID, fmt.Errorf("%w: full name is required", storage.ErrInvalidArgument)
	case strings.TrimSpace(req.NRCNumber) == "":
		return InvalidID, fmt.Errorf("%w: NRC number is required", storage.ErrInvalidArgument)
	}

	if _, err := g.store.GetProgram(ctx, req.ProgramID); errors.Is(err, storage.ErrNotFound) {
		return InvalidID, fmt.Errorf("program %d: %w", req.ProgramID, ErrUnknownProgram)
	} else if err != nil {
		g.logger.ErrorContext(ctx, "failed to look up program",
			slog.Int64("program_id", req.ProgramID),
			slog.Any("error", err),
		)
		return InvalidID, err
	}

	app := db.Application{
		FullName:    req.FullName,
		NRCNumber:   req.NRCNumber,
		ProgramID:   req.ProgramID,
		Grade12Path: req.Grade12Path,
		NRCPath:     req.NRCPath,
		PaymentID:   sql.NullInt64{},
		Status:      db.StatusSubmitted,
	}
	if err := g.store.CreateApplication(ctx, &app); err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			// the program disappeared between the check and the insert
			return InvalidID, fmt.Errorf("program %d: %w", req.ProgramID, ErrUnknownProgram)
		}
		g.logger.ErrorContext(ctx, "failed to create application", slog.Any("error", err))
		return InvalidID, err
	}
	return app.ID, nil
}

// GetApplication returns a stored application.
func (g *Gateway) GetApplication(ctx context.Context, id int64) (db.Application, error) {
	app, err := g.store.GetApplication(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		g.logger.ErrorContext(ctx, "failed to get application",
			slog.Int64("application_id", id),
			slog.Any("error", err),
		)
	}
	return app, err
}

// LinkPaymentToApplication attaches a payment to an application. An
// application is linked at most once.
func (g *Gateway) LinkPaymentToApplication(ctx context.Context, applicationID, paymentID int64) error {
	err := g.store.LinkPayment(ctx, applicationID, paymentID)
	switch {
	case err == nil:
		g.logger.InfoContext(ctx, "linked payment",
			slog.Int64("application_id", applicationID),
			slog.Int64("payment_id", paymentID),
		)
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrAlreadyLinked):
		g.logger.WarnContext(ctx, "payment not linked", slog.Any("error", err))
	default:
		g.logger.ErrorContext(ctx, "failed to link payment",
			slog.Int64("application_id", applicationID),
			slog.Int64("payment_id", paymentID),
			slog.Any("error", err),
		)
	}
	return err
}

// CreateUser creates an applicant account. A duplicate email returns
// [storage.ErrAlreadyExists] and leaves the existing account untouched.
func (g *Gateway) CreateUser(ctx context.Context, email string, password sec.Password) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", storage.ErrInvalidArgument)
	}
	cred, err := g.hasher.Hash(ctx, password)
	if err != nil {
		return err
	}
	user := db.User{
		Email:        email,
		PasswordHash: cred.Hash,
		Salt:         cred.Salt,
	}
	switch err = g.store.CreateUser(ctx, &user); {
	case errors.Is(err, storage.ErrAlreadyExists):
		g.logger.InfoContext(ctx, "user already exists", slog.String("email", email))
		return fmt.Errorf("user %q: %w", email, storage.ErrAlreadyExists)
	case err != nil:
		g.logger.ErrorContext(ctx, "failed to create user",
			slog.String("email", email),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// AuthenticateUser satisfies [sec.UserAuthenticator]. An unknown email is
// answered with a decoy derivation so it costs the same as a wrong password;
// the email lookup itself is not equalized.
func (g *Gateway) AuthenticateUser(ctx context.Context, email string, password sec.Password) (sec.Identity, error) {
	user, err := g.store.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if err = g.hasher.Decoy(ctx, password); err != nil {
			return "", err
		}
		return "", sec.ErrInvalidCredentials
	case err != nil:
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := g.hasher.Check(ctx, password, sec.Credential{
		Hash: user.PasswordHash,
		Salt: user.Salt,
	})
	if err != nil {
		return "", err
	} else if !ok {
		return "", sec.ErrInvalidCredentials
	}
	return sec.Identity(user.Email), nil
}

var _ sec.UserAuthenticator = (*Gateway)(nil)
