package storage

import (
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/kangaroo/internal/config"
	"github.com/stolasapp/kangaroo/internal/storage/db"
)

func TestDB(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.DBFilepath = filepath.Join(t.TempDir(), "nested", "app.db")
	store, err := NewDB(t.Context(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	n, err := store.InsertPrograms(t.Context(),
		db.Program{Code: "SW01", Name: "Software", Description: "sw"},
		db.Program{Code: "CYB01", Name: "Cyber Security", Description: "cyb"},
		db.Program{Code: "IT01", Name: "Information Technology", Description: "it"},
	)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	programs, err := store.ListPrograms(t.Context())
	require.NoError(t, err)
	require.Len(t, programs, 3)
	programID := programs[0].ID

	t.Run("ListPrograms", func(t *testing.T) {
		t.Parallel()

		programs, err := store.ListPrograms(t.Context())
		require.NoError(t, err)
		names := make([]string, 0, len(programs))
		for _, p := range programs {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"Cyber Security", "Information Technology", "Software"}, names)
	})

	t.Run("InsertPrograms", func(t *testing.T) {
		t.Parallel()

		n, err := store.InsertPrograms(t.Context(), db.Program{Code: "IT01", Name: "Duplicate"})
		require.NoError(t, err)
		assert.Zero(t, n)

		count, err := store.CountPrograms(t.Context())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, 3)

		n, err = store.InsertPrograms(t.Context())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("GetProgram", func(t *testing.T) {
		t.Parallel()

		program, err := store.GetProgram(t.Context(), programID)
		require.NoError(t, err)
		assert.Equal(t, "CYB01", program.Code)

		_, err = store.GetProgram(t.Context(), -1)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Payments", func(t *testing.T) {
		t.Parallel()

		payment := db.Payment{Amount: 150.5, Reference: t.Name(), Paid: true}
		require.NoError(t, store.CreatePayment(t.Context(), &payment))
		assert.Positive(t, payment.ID)

		actual, err := store.GetPayment(t.Context(), payment.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.Amount, actual.Amount)
		assert.Equal(t, payment.Reference, actual.Reference)
		assert.True(t, actual.Paid)
		assert.False(t, actual.CreatedAt.IsZero())

		_, err = store.GetPayment(t.Context(), payment.ID+1000)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Applications", func(t *testing.T) {
		t.Parallel()

		app := newApplication(programID)
		require.NoError(t, store.CreateApplication(t.Context(), &app))
		assert.Positive(t, app.ID)

		actual, err := store.GetApplication(t.Context(), app.ID)
		require.NoError(t, err)
		assert.Equal(t, app.FullName, actual.FullName)
		assert.Equal(t, app.NRCNumber, actual.NRCNumber)
		assert.Equal(t, programID, actual.ProgramID)
		assert.Equal(t, db.StatusSubmitted, actual.Status)
		assert.False(t, actual.PaymentID.Valid)

		_, err = store.GetApplication(t.Context(), app.ID+1000)
		require.ErrorIs(t, err, ErrNotFound)

		orphan := newApplication(programID + 1000)
		err = store.CreateApplication(t.Context(), &orphan)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("LinkPayment", func(t *testing.T) {
		t.Parallel()

		app := newApplication(programID)
		require.NoError(t, store.CreateApplication(t.Context(), &app))
		payment := db.Payment{Amount: 100, Reference: t.Name()}
		require.NoError(t, store.CreatePayment(t.Context(), &payment))

		require.ErrorIs(t, store.LinkPayment(t.Context(), app.ID+1000, payment.ID), ErrNotFound)
		require.ErrorIs(t, store.LinkPayment(t.Context(), app.ID, payment.ID+1000), ErrNotFound)

		require.NoError(t, store.LinkPayment(t.Context(), app.ID, payment.ID))
		actual, err := store.GetApplication(t.Context(), app.ID)
		require.NoError(t, err)
		assert.True(t, actual.PaymentID.Valid)
		assert.Equal(t, payment.ID, actual.PaymentID.Int64)

		// the application is already funded
		second := db.Payment{Amount: 100, Reference: t.Name() + "/2"}
		require.NoError(t, store.CreatePayment(t.Context(), &second))
		require.ErrorIs(t, store.LinkPayment(t.Context(), app.ID, second.ID), ErrAlreadyLinked)

		// the payment already funds another application
		other := newApplication(programID)
		require.NoError(t, store.CreateApplication(t.Context(), &other))
		require.ErrorIs(t, store.LinkPayment(t.Context(), other.ID, payment.ID), ErrAlreadyLinked)

		actual, err = store.GetApplication(t.Context(), app.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.ID, actual.PaymentID.Int64)
	})

	t.Run("LinkPaymentConcurrent", func(t *testing.T) {
		t.Parallel()

		app := newApplication(programID)
		require.NoError(t, store.CreateApplication(t.Context(), &app))

		const attempts = 5
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := range attempts {
			payment := db.Payment{Amount: 1, Reference: gofakeit.UUID()}
			require.NoError(t, store.CreatePayment(t.Context(), &payment))
			wg.Go(func() {
				errs[i] = store.LinkPayment(t.Context(), app.ID, payment.ID)
			})
		}
		wg.Wait()

		linked := 0
		for _, err := range errs {
			if err == nil {
				linked++
				continue
			}
			require.ErrorIs(t, err, ErrAlreadyLinked)
		}
		assert.Equal(t, 1, linked)
	})

	// These operations are tested together since uniqueness is global to the
	// users table.
	t.Run("Users", func(t *testing.T) {
		t.Parallel()

		email := gofakeit.Email()
		user := db.User{Email: email, PasswordHash: "aGFzaA==", Salt: "c2FsdA=="}
		require.NoError(t, store.CreateUser(t.Context(), &user))
		assert.Positive(t, user.ID)

		actual, err := store.GetUserByEmail(t.Context(), email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, actual.ID)
		assert.Equal(t, user.PasswordHash, actual.PasswordHash)
		assert.Equal(t, user.Salt, actual.Salt)

		dupe := db.User{Email: email, PasswordHash: "b3RoZXI=", Salt: "b3RoZXI="}
		require.ErrorIs(t, store.CreateUser(t.Context(), &dupe), ErrAlreadyExists)

		actual, err = store.GetUserByEmail(t.Context(), email)
		require.NoError(t, err)
		assert.Equal(t, user.PasswordHash, actual.PasswordHash, "duplicate must not overwrite")

		_, err = store.GetUserByEmail(t.Context(), "not a real user")
		require.ErrorIs(t, err, ErrNotFound)

		count, err := store.CountUsers(t.Context())
		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("UserEmailCaseSensitive", func(t *testing.T) {
		t.Parallel()

		user := db.User{Email: "Case.Sensitive@example.com", PasswordHash: "aA==", Salt: "aA=="}
		require.NoError(t, store.CreateUser(t.Context(), &user))

		_, err := store.GetUserByEmail(t.Context(), "case.sensitive@example.com")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNewDB_Reopen(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.DBFilepath = filepath.Join(t.TempDir(), "app.db")
	logger := slog.New(slog.DiscardHandler)

	store, err := NewDB(t.Context(), cfg, logger)
	require.NoError(t, err)
	_, err = store.InsertPrograms(t.Context(), db.Program{Code: "IT01", Name: "IT"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewDB(t.Context(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	count, err := store.CountPrograms(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func newApplication(programID int64) db.Application {
	return db.Application{
		FullName:    gofakeit.Name(),
		NRCNumber:   gofakeit.Numerify("######/##/#"),
		ProgramID:   programID,
		Grade12Path: "/uploads/" + gofakeit.UUID() + ".pdf",
		NRCPath:     "/uploads/" + gofakeit.UUID() + ".pdf",
		Status:      db.StatusSubmitted,
	}
}
