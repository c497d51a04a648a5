package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bundle is a priced grouping of menu items offered by a place.
type Bundle struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PlaceID   uuid.UUID       `gorm:"column:place_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Items []BundleItem `gorm:"foreignKey:BundleID"`
}

// BundleItem links a menu item into a bundle with a quantity.
type BundleItem struct {
	BundleID   uuid.UUID `gorm:"column:bundle_id;type:uuid;primaryKey"`
	MenuItemID uuid.UUID `gorm:"column:menu_item_id;type:uuid;primaryKey"`
	Quantity   int       `gorm:"column:quantity;not null;default:1"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID"`
}
