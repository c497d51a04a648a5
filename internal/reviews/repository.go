package reviews

import (
	"context"

	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/repo"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
)

// Repository exposes review persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a reviews repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the review inside the caller's transaction.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	return r.Conn(ctx, tx).Create(review).Error
}
