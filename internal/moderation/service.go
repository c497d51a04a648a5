package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/internal/places"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/outbox/payloads"
)

// Service is the admin moderation surface over place listings.
type Service interface {
	Stats(ctx context.Context) (*StatsResponse, error)
	Pending(ctx context.Context) ([]PendingPlace, error)
	Decide(ctx context.Context, adminID, placeID uuid.UUID, status enums.PlaceStatus) (*places.PlaceResponse, error)
}

type placeRepository interface {
	CountByStatus(ctx context.Context) (places.StatusCounts, error)
	ListPendingOldestFirst(ctx context.Context) ([]models.Place, error)
	FindWithOwner(ctx context.Context, id uuid.UUID) (*models.Place, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.PlaceStatus) error
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StatsResponse is the admin dashboard counter set.
type StatsResponse struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
}

// OwnerSummary identifies the owner of a queued listing.
type OwnerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
}

// PendingPlace is one entry in the moderation queue, owner and menu attached.
type PendingPlace struct {
	places.PlaceResponse
	Owner     OwnerSummary              `json:"owner"`
	MenuItems []places.MenuItemResponse `json:"menu_items"`
}

type service struct {
	repo   placeRepository
	tx     transactor
	events eventEmitter
	logg   *logger.Logger
}

// ServiceParams bundles the moderation service dependencies.
type ServiceParams struct {
	Repo   placeRepository
	Tx     transactor
	Events eventEmitter
	Logger *logger.Logger
}

// NewService constructs the moderation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("place repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transactor is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		events: params.Events,
		logg:   params.Logger,
	}, nil
}

func (s *service) Stats(ctx context.Context) (*StatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count places")
	}
	return &StatsResponse{
		Total:    counts.Total,
		Approved: counts.Approved,
		Pending:  counts.Pending,
	}, nil
}

// Pending returns the queue oldest first so submissions are reviewed in
// arrival order.
func (s *service) Pending(ctx context.Context) ([]PendingPlace, error) {
	rows, err := s.repo.ListPendingOldestFirst(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending places")
	}

	out := make([]PendingPlace, 0, len(rows))
	for i := range rows {
		place := &rows[i]
		entry := PendingPlace{
			PlaceResponse: places.FromPlaceModel(place),
			MenuItems:     []places.MenuItemResponse{},
		}
		if place.Owner != nil {
			entry.Owner = OwnerSummary{
				ID:    place.Owner.ID,
				Name:  place.Owner.Name,
				Email: place.Owner.Email,
			}
		}
		for j := range place.MenuItems {
			entry.MenuItems = append(entry.MenuItems, places.FromMenuItemModel(&place.MenuItems[j]))
		}
		out = append(out, entry)
	}
	return out, nil
}

// Decide applies an approve/reject decision. Pending is never a valid target.
func (s *service) Decide(ctx context.Context, adminID, placeID uuid.UUID, status enums.PlaceStatus) (*places.PlaceResponse, error) {
	if !status.IsDecision() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or rejected")
	}

	place, err := s.repo.FindWithOwner(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load place")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateStatus(ctx, tx, placeID, status); err != nil {
			return err
		}
		var ownerEmail string
		if place.Owner != nil && place.Owner.Email != nil {
			ownerEmail = *place.Owner.Email
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPlaceStatusChanged,
			AggregateType: enums.AggregatePlace,
			AggregateID:   place.ID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.UserRoleAdmin)},
			Data: payloads.PlaceStatusChangedEvent{
				PlaceID:    place.ID,
				OwnerID:    place.OwnerID,
				OwnerEmail: ownerEmail,
				PlaceName:  place.Name,
				Status:     status,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply decision")
	}

	place.Status = status
	resp := places.FromPlaceModel(place)
	return &resp, nil
}
