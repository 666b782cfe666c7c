package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/migration"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func newPGRepo(t *testing.T) BookingRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("triprex_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migration.New(strings.Replace(dsn, "postgres://", "pgx5://", 1), nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewBookingRepository(pool)
}

func TestPGBookingRepository_Lifecycle(t *testing.T) {
	repo := newPGRepo(t)
	ctx := context.Background()

	b := newPendingBooking()
	require.NoError(t, repo.Create(ctx, b))
	assert.False(t, b.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, b.Amount.Equal(got.Amount))
	assert.JSONEq(t, `{"route":"JFK-LAX"}`, string(got.Details))

	got.Status = domain.BookingStatusCancelled
	got.PaymentStatus = domain.PaymentStatusRefunded
	got.PaymentRef = "pi_987"
	require.NoError(t, repo.Update(ctx, got))

	byPayment, err := repo.FindByPaymentRef(ctx, "pi_987")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, byPayment.Status)
	assert.Equal(t, domain.PaymentStatusRefunded, byPayment.PaymentStatus)

	_, err = repo.GetByID(ctx, "3f1b4f8e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	_, err = repo.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestPGBookingRepository_MalformedIDIsNotFound(t *testing.T) {
	repo := &PGBookingRepository{}

	_, err := repo.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	err = repo.Update(context.Background(), &domain.Booking{ID: "not-a-uuid"})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestPGBookingRepository_FailStalePending(t *testing.T) {
	repo := newPGRepo(t)
	ctx := context.Background()

	b := newPendingBooking()
	b.Details = nil
	require.NoError(t, repo.Create(ctx, b))

	failed, err := repo.FailStalePending(ctx, time.Now().Add(time.Minute), "timed out")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, b.ID, failed[0].ID)
	assert.Equal(t, domain.BookingStatusFailed, failed[0].Status)
	assert.Empty(t, failed[0].Details)
}
