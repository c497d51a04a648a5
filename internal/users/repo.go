package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/repo"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
)

// Repository exposes user persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByProviderIdentity looks up the account created by an OAuth provider.
func (r *Repository) FindByProviderIdentity(ctx context.Context, provider enums.AuthProvider, providerID string) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkProvider attaches an OAuth identity to an existing account.
func (r *Repository) LinkProvider(ctx context.Context, id uuid.UUID, provider enums.AuthProvider, providerID string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"provider":    provider,
			"provider_id": providerID,
		}).Error
}

// FindByResetTokenHash loads the user holding an unexpired reset token digest.
func (r *Repository) FindByResetTokenHash(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.DB(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", digest, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetResetToken stores the hashed reset token and its expiry on the user row.
func (r *Repository) SetResetToken(ctx context.Context, tx *gorm.DB, id uuid.UUID, digest string, expires time.Time) error {
	return r.Conn(ctx, tx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"password_reset_token":   digest,
			"password_reset_expires": expires,
		}).Error
}

// CompletePasswordReset swaps in the new hash and clears the reset token.
func (r *Repository) CompletePasswordReset(ctx context.Context, tx *gorm.DB, id uuid.UUID, passwordHash string) error {
	return r.Conn(ctx, tx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"password_hash":          passwordHash,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		}).Error
}
