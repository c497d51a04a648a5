package bookmarks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/repo"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
)

// Repository persists bookmark join rows.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Exists reports whether the customer already bookmarked the place.
func (r *Repository) Exists(ctx context.Context, userID, placeID uuid.UUID) (bool, error) {
	var row models.Bookmark
	err := r.DB(ctx).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) Create(ctx context.Context, userID, placeID uuid.UUID) error {
	return r.DB(ctx).Create(&models.Bookmark{UserID: userID, PlaceID: placeID}).Error
}

func (r *Repository) Delete(ctx context.Context, userID, placeID uuid.UUID) error {
	return r.DB(ctx).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		Delete(&models.Bookmark{}).Error
}

// ListByUser returns the customer's bookmarks newest first with the place row
// joined in.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bookmark, error) {
	var rows []models.Bookmark
	err := r.DB(ctx).
		Preload("Place").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
