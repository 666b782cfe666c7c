package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JSONDocument stores an opaque JSON payload in a text/jsonb column.
type JSONDocument json.RawMessage

func (j JSONDocument) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONDocument) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONDocument(v)
	default:
		return fmt.Errorf("unsupported details type %T", value)
	}
	return nil
}

// BookingRecord is the ORM mapping of the bookings table.
type BookingRecord struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	Type          string          `gorm:"not null"`
	Status        string          `gorm:"not null;index"`
	PaymentStatus string          `gorm:"not null;default:pending"`
	Provider      string          `gorm:"not null;default:''"`
	OfferID       string          `gorm:"not null;default:''"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Currency      string          `gorm:"not null;default:USD"`
	ProviderRef   string          `gorm:"not null;default:''"`
	PaymentRef    string          `gorm:"not null;default:'';index"`
	CustomerEmail string          `gorm:"not null;default:''"`
	CustomerName  string          `gorm:"not null;default:''"`
	CustomerPhone string          `gorm:"not null;default:''"`
	Details       JSONDocument    `gorm:"type:text"`
	FailureReason string          `gorm:"not null;default:''"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time
}

func (BookingRecord) TableName() string { return "bookings" }

func toRecord(b *domain.Booking) BookingRecord {
	return BookingRecord{
		ID:            b.ID,
		Type:          string(b.Type),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		Provider:      b.Provider,
		OfferID:       b.OfferID,
		Amount:        b.Amount,
		Currency:      b.Currency,
		ProviderRef:   b.ProviderRef,
		PaymentRef:    b.PaymentRef,
		CustomerEmail: b.CustomerEmail,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		Details:       JSONDocument(b.Details),
		FailureReason: b.FailureReason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (r BookingRecord) toDomain() domain.Booking {
	b := domain.Booking{
		ID:            r.ID,
		Type:          domain.BookingType(r.Type),
		Status:        domain.BookingStatus(r.Status),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		Provider:      r.Provider,
		OfferID:       r.OfferID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		ProviderRef:   r.ProviderRef,
		PaymentRef:    r.PaymentRef,
		CustomerEmail: r.CustomerEmail,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		FailureReason: r.FailureReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if len(r.Details) > 0 {
		b.Details = json.RawMessage(r.Details)
	}
	return b
}

// GormBookingRepository backs local development on SQLite.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// AutoMigrate creates or updates the bookings table.
func (r *GormBookingRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&BookingRecord{})
}

func (r *GormBookingRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormBookingRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	rec := toRecord(b)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.CreatedAt = rec.CreatedAt
	b.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var rec BookingRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	b := rec.toDomain()
	return &b, nil
}

func (r *GormBookingRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (*domain.Booking, error) {
	var rec BookingRecord
	err := r.db.WithContext(ctx).Where("payment_ref = ?", paymentRef).Order("created_at DESC").First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	b := rec.toDomain()
	return &b, nil
}

func (r *GormBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&BookingRecord{}).Where("id = ?", b.ID).Updates(map[string]any{
		"status":         string(b.Status),
		"payment_status": string(b.PaymentStatus),
		"amount":         b.Amount,
		"currency":       b.Currency,
		"provider_ref":   b.ProviderRef,
		"payment_ref":    b.PaymentRef,
		"customer_email": b.CustomerEmail,
		"customer_name":  b.CustomerName,
		"customer_phone": b.CustomerPhone,
		"details":        JSONDocument(b.Details),
		"failure_reason": b.FailureReason,
		"updated_at":     now,
	})
	if res.Error != nil {
		return fmt.Errorf("update booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrBookingNotFound
	}
	b.UpdatedAt = now
	return nil
}

func (r *GormBookingRepository) FailStalePending(ctx context.Context, createdBefore time.Time, reason string) ([]domain.Booking, error) {
	var failed []domain.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recs []BookingRecord
		if err := tx.Where("status = ? AND created_at <= ?", string(domain.BookingStatusPending), createdBefore.UTC()).
			Find(&recs).Error; err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}

		ids := make([]string, 0, len(recs))
		for _, rec := range recs {
			ids = append(ids, rec.ID)
		}
		now := time.Now().UTC()
		if err := tx.Model(&BookingRecord{}).Where("id IN ?", ids).Updates(map[string]any{
			"status":         string(domain.BookingStatusFailed),
			"failure_reason": reason,
			"updated_at":     now,
		}).Error; err != nil {
			return err
		}

		for _, rec := range recs {
			b := rec.toDomain()
			b.Status = domain.BookingStatusFailed
			b.FailureReason = reason
			b.UpdatedAt = now
			failed = append(failed, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return failed, nil
}

var _ BookingRepository = (*GormBookingRepository)(nil)
