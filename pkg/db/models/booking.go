package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spot2go/spot2go-backend/pkg/enums"
)

// Booking is a customer's reservation against a place. Rows are created in
// pending; the mocked payment flow never moves them to paid.
type Booking struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	PlaceID   uuid.UUID           `gorm:"column:place_id;type:uuid;not null;index"`
	Status    enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'pending'"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	PaymentID *string             `gorm:"column:payment_id"`
	StartsAt  *time.Time          `gorm:"column:starts_at"`
	EndsAt    *time.Time          `gorm:"column:ends_at"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Place *Place `gorm:"foreignKey:PlaceID"`
}
