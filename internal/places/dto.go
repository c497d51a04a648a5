package places

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	"github.com/spot2go/spot2go-backend/pkg/types"
)

// ImageUpload is one multipart image destined for object storage.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreatePlaceInput carries a validated owner submission.
type CreatePlaceInput struct {
	Name            string
	Type            string
	Description     string
	Amenities       []string
	Location        types.Location
	Reservable      bool
	ReservableHours types.ReservableHours
	Images          []ImageUpload
}

// UpdatePlaceInput mirrors CreatePlaceInput; new images are appended to the
// existing gallery.
type UpdatePlaceInput struct {
	Name            string
	Type            string
	Description     string
	Amenities       []string
	Location        types.Location
	Reservable      bool
	ReservableHours types.ReservableHours
	Images          []ImageUpload
}

// CreateMenuItemInput is an owner's menu item submission.
type CreateMenuItemInput struct {
	Name      string          `json:"name" validate:"required,min=1,max=160"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Available *bool           `json:"available"`
}

// BundleItemInput references a menu item included in a bundle.
type BundleItemInput struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"omitempty,gt=0"`
}

// CreateBundleInput is an owner's bundle submission.
type CreateBundleInput struct {
	Name  string            `json:"name" validate:"required,min=1,max=160"`
	Price decimal.Decimal   `json:"price" validate:"required"`
	Items []BundleItemInput `json:"items" validate:"omitempty,dive"`
}

// PlaceResponse is the owner/customer-facing place shape.
type PlaceResponse struct {
	ID              uuid.UUID             `json:"id"`
	OwnerID         uuid.UUID             `json:"owner_id"`
	Name            string                `json:"name"`
	Type            string                `json:"type"`
	Description     string                `json:"description,omitempty"`
	Rating          decimal.Decimal       `json:"rating"`
	ReviewCount     int                   `json:"review_count"`
	Amenities       []string              `json:"amenities"`
	Images          []string              `json:"images"`
	Location        types.Location        `json:"location"`
	Status          enums.PlaceStatus     `json:"status"`
	Reservable      bool                  `json:"reservable"`
	ReservableHours types.ReservableHours `json:"reservable_hours,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// MenuItemResponse is a single menu entry.
type MenuItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	PlaceID   uuid.UUID       `json:"place_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

// BundleResponse is a bundle with its item references.
type BundleResponse struct {
	ID      uuid.UUID            `json:"id"`
	PlaceID uuid.UUID            `json:"place_id"`
	Name    string               `json:"name"`
	Price   decimal.Decimal      `json:"price"`
	Items   []BundleItemResponse `json:"items"`
}

// BundleItemResponse is one menu item reference inside a bundle.
type BundleItemResponse struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
}

// PlaceDetailResponse attaches the menu to a place.
type PlaceDetailResponse struct {
	PlaceResponse
	MenuItems []MenuItemResponse `json:"menu_items"`
}

// PlaceListResponse is a cursor page of places.
type PlaceListResponse struct {
	Places     []PlaceResponse `json:"places"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// FromPlaceModel maps a persisted place to its response shape.
func FromPlaceModel(place *models.Place) PlaceResponse {
	if place == nil {
		return PlaceResponse{}
	}
	return PlaceResponse{
		ID:              place.ID,
		OwnerID:         place.OwnerID,
		Name:            place.Name,
		Type:            place.Type,
		Description:     place.Description,
		Rating:          place.Rating,
		ReviewCount:     place.ReviewCount,
		Amenities:       place.Amenities,
		Images:          place.Images,
		Location:        place.Location,
		Status:          place.Status,
		Reservable:      place.Reservable,
		ReservableHours: place.ReservableHours,
		CreatedAt:       place.CreatedAt,
		UpdatedAt:       place.UpdatedAt,
	}
}

// FromMenuItemModel maps a menu item row to its response shape.
func FromMenuItemModel(item *models.MenuItem) MenuItemResponse {
	if item == nil {
		return MenuItemResponse{}
	}
	return MenuItemResponse{
		ID:        item.ID,
		PlaceID:   item.PlaceID,
		Name:      item.Name,
		Price:     item.Price,
		Available: item.Available,
	}
}

// FromBundleModel maps a bundle row and its items to the response shape.
func FromBundleModel(bundle *models.Bundle) BundleResponse {
	if bundle == nil {
		return BundleResponse{}
	}
	items := make([]BundleItemResponse, 0, len(bundle.Items))
	for _, item := range bundle.Items {
		items = append(items, BundleItemResponse{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}
	return BundleResponse{
		ID:      bundle.ID,
		PlaceID: bundle.PlaceID,
		Name:    bundle.Name,
		Price:   bundle.Price,
		Items:   items,
	}
}

// FromPlaceDetail maps a place with its preloaded menu.
func FromPlaceDetail(place *models.Place) PlaceDetailResponse {
	detail := PlaceDetailResponse{
		PlaceResponse: FromPlaceModel(place),
		MenuItems:     []MenuItemResponse{},
	}
	if place == nil {
		return detail
	}
	for i := range place.MenuItems {
		detail.MenuItems = append(detail.MenuItems, FromMenuItemModel(&place.MenuItems[i]))
	}
	return detail
}
