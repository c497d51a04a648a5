package devices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/repo"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
)

// Repository persists push token registrations.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, device *models.UserDevice) error {
	return r.DB(ctx).Create(device).Error
}

// DeleteByTokens removes tokens FCM reported as invalid.
func (r *Repository) DeleteByTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.DB(ctx).
		Where("fcm_token IN ?", tokens).
		Delete(&models.UserDevice{}).Error
}

// ListByUser returns every registered token for the user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserDevice, error) {
	var rows []models.UserDevice
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
