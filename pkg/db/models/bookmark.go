package models

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark is a pure join row marking a place a customer saved.
type Bookmark struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	PlaceID   uuid.UUID `gorm:"column:place_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Place *Place `gorm:"foreignKey:PlaceID"`
}
