package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/repo"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
)

// Repository exposes booking persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a bookings repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the booking inside the caller's transaction.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return r.Conn(ctx, tx).Create(booking).Error
}

// ListByUser returns a customer's bookings newest first with the place row
// joined for its name and location.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.DB(ctx).
		Preload("Place").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// SetPaymentID stamps the mock processor id on the booking.
func (r *Repository) SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error {
	return r.DB(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("payment_id", paymentID).Error
}

// FindByID loads one booking with its place attached.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.DB(ctx).
		Preload("Place").
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
