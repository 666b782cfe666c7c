package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	FindByPaymentRef(ctx context.Context, paymentRef string) (*domain.Booking, error)
	FailStalePending(ctx context.Context, createdBefore time.Time, reason string) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, type, status, payment_status, provider, offer_id, amount, currency,
	provider_ref, payment_ref, customer_email, customer_name, customer_phone, details,
	failure_reason, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	row := r.db.QueryRow(ctx, `INSERT INTO bookings (id, type, status, payment_status, provider, offer_id, amount, currency,
		provider_ref, payment_ref, customer_email, customer_name, customer_phone, details, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		b.ID, b.Type, b.Status, b.PaymentStatus, b.Provider, b.OfferID, b.Amount, b.Currency,
		b.ProviderRef, b.PaymentRef, b.CustomerEmail, b.CustomerName, b.CustomerPhone, detailsParam(b.Details), b.FailureReason)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID treats ids that are not UUIDs as unknown; the id column would
// reject them with an invalid text representation error.
func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrBookingNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE payment_ref=$1 ORDER BY created_at DESC LIMIT 1`, paymentRef)
	return scanBooking(row)
}

// Update writes every mutable column of the booking.
func (r *PGBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	if _, err := uuid.Parse(b.ID); err != nil {
		return domain.ErrBookingNotFound
	}
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$2, payment_status=$3, amount=$4, currency=$5,
		provider_ref=$6, payment_ref=$7, customer_email=$8, customer_name=$9, customer_phone=$10,
		details=$11, failure_reason=$12, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		b.ID, b.Status, b.PaymentStatus, b.Amount, b.Currency, b.ProviderRef, b.PaymentRef,
		b.CustomerEmail, b.CustomerName, b.CustomerPhone, detailsParam(b.Details), b.FailureReason)
	if err := row.Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

func (r *PGBookingRepository) FailStalePending(ctx context.Context, createdBefore time.Time, reason string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, failure_reason=$2, updated_at=now()
		WHERE status=$3 AND created_at <= $4 RETURNING `+bookingColumns,
		domain.BookingStatusFailed, reason, domain.BookingStatusPending, createdBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failed []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		failed = append(failed, *b)
	}
	return failed, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b       domain.Booking
		details []byte
	)
	err := row.Scan(&b.ID, &b.Type, &b.Status, &b.PaymentStatus, &b.Provider, &b.OfferID, &b.Amount, &b.Currency,
		&b.ProviderRef, &b.PaymentRef, &b.CustomerEmail, &b.CustomerName, &b.CustomerPhone, &details,
		&b.FailureReason, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	if len(details) > 0 {
		b.Details = details
	}
	return &b, nil
}

// detailsParam keeps empty details as SQL NULL instead of an invalid json value.
func detailsParam(details []byte) any {
	if len(details) == 0 {
		return nil
	}
	return string(details)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
