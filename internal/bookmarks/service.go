package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/places"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	apperrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

// ToggleResponse reports the bookmark state after a toggle.
type ToggleResponse struct {
	PlaceID    uuid.UUID `json:"place_id"`
	Bookmarked bool      `json:"bookmarked"`
}

// BookmarkItem is one saved place in the customer's list.
type BookmarkItem struct {
	Place     places.PlaceResponse `json:"place"`
	CreatedAt time.Time            `json:"created_at"`
}

// ListResponse wraps the customer's saved places.
type ListResponse struct {
	Bookmarks []BookmarkItem `json:"bookmarks"`
}

// Service toggles and lists a customer's saved places.
type Service interface {
	Toggle(ctx context.Context, customerID, placeID uuid.UUID) (*ToggleResponse, error)
	List(ctx context.Context, customerID uuid.UUID) (*ListResponse, error)
}

type bookmarkRepository interface {
	Exists(ctx context.Context, userID, placeID uuid.UUID) (bool, error)
	Create(ctx context.Context, userID, placeID uuid.UUID) error
	Delete(ctx context.Context, userID, placeID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Bookmark, error)
}

type placeReader interface {
	FindApprovedByID(ctx context.Context, id uuid.UUID) (*models.Place, error)
}

type service struct {
	repo   bookmarkRepository
	places placeReader
	logg   *logger.Logger
}

// ServiceParams bundles the bookmark service dependencies.
type ServiceParams struct {
	Repo   bookmarkRepository
	Places placeReader
	Logger *logger.Logger
}

// NewService constructs the bookmark service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bookmark repository is required")
	}
	if params.Places == nil {
		return nil, fmt.Errorf("place reader is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:   params.Repo,
		places: params.Places,
		logg:   params.Logger,
	}, nil
}

// Toggle flips the bookmark: saved places are removed, unsaved ones added.
func (s *service) Toggle(ctx context.Context, customerID, placeID uuid.UUID) (*ToggleResponse, error) {
	if _, err := s.places.FindApprovedByID(ctx, placeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "place not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load place")
	}

	exists, err := s.repo.Exists(ctx, customerID, placeID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to check bookmark")
	}

	if exists {
		if err := s.repo.Delete(ctx, customerID, placeID); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to remove bookmark")
		}
		return &ToggleResponse{PlaceID: placeID, Bookmarked: false}, nil
	}

	if err := s.repo.Create(ctx, customerID, placeID); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to save bookmark")
	}
	return &ToggleResponse{PlaceID: placeID, Bookmarked: true}, nil
}

func (s *service) List(ctx context.Context, customerID uuid.UUID) (*ListResponse, error) {
	rows, err := s.repo.ListByUser(ctx, customerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list bookmarks")
	}

	items := make([]BookmarkItem, 0, len(rows))
	for _, row := range rows {
		if row.Place == nil {
			continue
		}
		items = append(items, BookmarkItem{
			Place:     places.FromPlaceModel(row.Place),
			CreatedAt: row.CreatedAt,
		})
	}
	return &ListResponse{Bookmarks: items}, nil
}
