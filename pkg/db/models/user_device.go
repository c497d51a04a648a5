package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDevice stores a push token registered by a client device. The
// (user_id, fcm_token) pair is unique so repeat registrations are no-ops.
type UserDevice struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_user_devices_user_token"`
	FCMToken  string    `gorm:"column:fcm_token;not null;uniqueIndex:ux_user_devices_user_token"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
