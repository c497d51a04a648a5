package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/enums"
)

// User represents the canonical identity entity. Accounts created through
// an OAuth provider may carry no email or password hash; local accounts
// always have both.
type User struct {
	ID                   uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email                *string            `gorm:"type:text;uniqueIndex"`
	PasswordHash         *string            `gorm:"column:password_hash"`
	Name                 string             `gorm:"column:name;not null"`
	Role                 enums.UserRole     `gorm:"column:role;type:user_role;not null;default:'customer'"`
	Provider             enums.AuthProvider `gorm:"column:provider;type:auth_provider;not null;default:'local'"`
	ProviderID           *string            `gorm:"column:provider_id"`
	PasswordResetToken   *string            `gorm:"column:password_reset_token"`
	PasswordResetExpires *time.Time         `gorm:"column:password_reset_expires"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// HasLocalPassword reports whether the account can use local login.
func (u *User) HasLocalPassword() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != ""
}
