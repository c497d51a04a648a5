package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/spot2go/spot2go-backend/pkg/enums"
	"github.com/spot2go/spot2go-backend/pkg/types"
)

// Place is a bookable physical location listed by an owner. Every create
// or edit puts the row back into pending until an admin decides on it.
type Place struct {
	ID              uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         uuid.UUID             `gorm:"column:owner_id;type:uuid;not null;index"`
	Name            string                `gorm:"column:name;not null"`
	Type            string                `gorm:"column:type;not null"`
	Description     string                `gorm:"column:description"`
	Rating          decimal.Decimal       `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	ReviewCount     int                   `gorm:"column:review_count;not null;default:0"`
	Amenities       pq.StringArray        `gorm:"column:amenities;type:text[]"`
	Images          pq.StringArray        `gorm:"column:images;type:text[];not null"`
	Location        types.Location        `gorm:"column:location;type:jsonb;not null"`
	Status          enums.PlaceStatus     `gorm:"column:status;type:place_status;not null;default:'pending';index"`
	Reservable      bool                  `gorm:"column:reservable;not null;default:false"`
	ReservableHours types.ReservableHours `gorm:"column:reservable_hours;type:jsonb"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	Owner     *User      `gorm:"foreignKey:OwnerID"`
	MenuItems []MenuItem `gorm:"foreignKey:PlaceID"`
}
