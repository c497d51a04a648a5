package places

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/repo"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	"github.com/spot2go/spot2go-backend/pkg/pagination"
)

// Repository exposes place, menu item and bundle persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a places repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the place inside the caller's transaction.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, place *models.Place) error {
	return r.Conn(ctx, tx).Create(place).Error
}

// Save persists all mutable columns of an existing place.
func (r *Repository) Save(ctx context.Context, tx *gorm.DB, place *models.Place) error {
	return r.Conn(ctx, tx).Save(place).Error
}

// FindByID loads a place regardless of status or owner.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	var place models.Place
	if err := r.DB(ctx).First(&place, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

// FindByIDWithMenu loads a place of any status with its menu attached.
func (r *Repository) FindByIDWithMenu(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	var place models.Place
	err := r.DB(ctx).
		Preload("MenuItems").
		First(&place, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &place, nil
}

// FindApprovedByID loads an approved place with its menu attached.
func (r *Repository) FindApprovedByID(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	var place models.Place
	err := r.DB(ctx).
		Preload("MenuItems").
		Where("id = ? AND status = ?", id, enums.PlaceStatusApproved).
		First(&place).Error
	if err != nil {
		return nil, err
	}
	return &place, nil
}

// ListByOwner returns all of an owner's places, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Place, error) {
	var places []models.Place
	err := r.DB(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&places).Error
	if err != nil {
		return nil, err
	}
	return places, nil
}

// ListApproved returns one cursor page of approved places, newest first.
// The extra row past the limit signals another page.
func (r *Repository) ListApproved(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Place, error) {
	query := r.DB(ctx).
		Where("status = ?", enums.PlaceStatusApproved).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var places []models.Place
	if err := query.Find(&places).Error; err != nil {
		return nil, err
	}
	return places, nil
}

// ListPendingOldestFirst returns the moderation queue with owner and menu
// attached, oldest submission first.
func (r *Repository) ListPendingOldestFirst(ctx context.Context) ([]models.Place, error) {
	var places []models.Place
	err := r.DB(ctx).
		Preload("Owner").
		Preload("MenuItems").
		Where("status = ?", enums.PlaceStatusPending).
		Order("created_at ASC, id ASC").
		Find(&places).Error
	if err != nil {
		return nil, err
	}
	return places, nil
}

// StatusCounts aggregates place totals for the admin dashboard.
type StatusCounts struct {
	Total    int64
	Approved int64
	Pending  int64
}

// CountByStatus computes the moderation stat counters in one pass.
func (r *Repository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	type row struct {
		Status enums.PlaceStatus
		N      int64
	}
	var rows []row
	err := r.DB(ctx).
		Model(&models.Place{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	var counts StatusCounts
	for _, row := range rows {
		counts.Total += row.N
		switch row.Status {
		case enums.PlaceStatusApproved:
			counts.Approved += row.N
		case enums.PlaceStatusPending:
			counts.Pending += row.N
		}
	}
	return counts, nil
}

// FindWithOwner loads a place and its owner row.
func (r *Repository) FindWithOwner(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	var place models.Place
	err := r.DB(ctx).
		Preload("Owner").
		First(&place, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &place, nil
}

// UpdateStatus flips the moderation status inside the caller's transaction.
func (r *Repository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.PlaceStatus) error {
	return r.Conn(ctx, tx).
		Model(&models.Place{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

// UpdateRating overwrites the aggregate rating columns inside the caller's
// transaction.
func (r *Repository) UpdateRating(ctx context.Context, tx *gorm.DB, id uuid.UUID, rating decimal.Decimal, reviewCount int) error {
	return r.Conn(ctx, tx).
		Model(&models.Place{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"rating":       rating,
			"review_count": reviewCount,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// CreateMenuItem inserts a menu item row.
func (r *Repository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	return r.DB(ctx).Create(item).Error
}

// ListMenuItems returns a place's menu.
func (r *Repository) ListMenuItems(ctx context.Context, placeID uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.DB(ctx).
		Where("place_id = ?", placeID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CountMenuItems reports how many of the given menu item IDs belong to the
// place. Used to reject bundles referencing foreign items.
func (r *Repository) CountMenuItems(ctx context.Context, placeID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.DB(ctx).
		Model(&models.MenuItem{}).
		Where("place_id = ? AND id IN ?", placeID, ids).
		Count(&n).Error
	return n, err
}

// CreateBundle inserts a bundle and its item joins atomically.
func (r *Repository) CreateBundle(ctx context.Context, tx *gorm.DB, bundle *models.Bundle, items []models.BundleItem) error {
	conn := r.Conn(ctx, tx)
	if err := conn.Create(bundle).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].BundleID = bundle.ID
	}
	if err := conn.Create(&items).Error; err != nil {
		return err
	}
	bundle.Items = items
	return nil
}
