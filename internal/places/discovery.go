package places

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/pagination"
)

// DiscoveryService is the customer-facing read surface. Listing is a flat
// approved-only, newest-first page; despite what clients may expect there
// is no geo ranking.
type DiscoveryService interface {
	ListApproved(ctx context.Context, params pagination.Params) (*PlaceListResponse, error)
	GetApproved(ctx context.Context, placeID uuid.UUID) (*PlaceDetailResponse, error)
}

type discoveryRepository interface {
	ListApproved(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Place, error)
	FindApprovedByID(ctx context.Context, id uuid.UUID) (*models.Place, error)
}

type discoveryService struct {
	repo discoveryRepository
}

// NewDiscoveryService constructs the customer discovery service.
func NewDiscoveryService(repo discoveryRepository) (DiscoveryService, error) {
	if repo == nil {
		return nil, fmt.Errorf("place repository is required")
	}
	return &discoveryService{repo: repo}, nil
}

func (s *discoveryService) ListApproved(ctx context.Context, params pagination.Params) (*PlaceListResponse, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListApproved(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list places")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	out := make([]PlaceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromPlaceModel(&rows[i]))
	}
	return &PlaceListResponse{
		Places:     out,
		NextCursor: next,
	}, nil
}

// GetApproved hides pending and rejected listings entirely; a customer
// cannot tell a rejected place from a missing one.
func (s *discoveryService) GetApproved(ctx context.Context, placeID uuid.UUID) (*PlaceDetailResponse, error) {
	place, err := s.repo.FindApprovedByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load place")
	}
	detail := FromPlaceDetail(place)
	return &detail, nil
}
