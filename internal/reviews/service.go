package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/outbox/payloads"
)

// CreateReviewRequest is the customer review payload.
type CreateReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// ReviewResponse is one persisted review.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	PlaceID   uuid.UUID `json:"place_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	PlaceRating      decimal.Decimal `json:"place_rating"`
	PlaceReviewCount int             `json:"place_review_count"`
}

// Service creates reviews and keeps the place aggregate in step.
type Service interface {
	Create(ctx context.Context, customerID, placeID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error)
}

type reviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *models.Review) error
}

type placeStore interface {
	FindApprovedByID(ctx context.Context, id uuid.UUID) (*models.Place, error)
	UpdateRating(ctx context.Context, tx *gorm.DB, id uuid.UUID, rating decimal.Decimal, reviewCount int) error
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo   reviewRepository
	places placeStore
	tx     transactor
	events eventEmitter
	logg   *logger.Logger
}

// ServiceParams bundles the review service dependencies.
type ServiceParams struct {
	Repo   reviewRepository
	Places placeStore
	Tx     transactor
	Events eventEmitter
	Logger *logger.Logger
}

// NewService constructs the review service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("review repository is required")
	}
	if params.Places == nil {
		return nil, fmt.Errorf("place store is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transactor is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	return &service{
		repo:   params.Repo,
		places: params.Places,
		tx:     params.Tx,
		events: params.Events,
		logg:   params.Logger,
	}, nil
}

// Create inserts the review and recomputes the place's running average in
// the same transaction.
func (s *service) Create(ctx context.Context, customerID, placeID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	place, err := s.places.FindApprovedByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load place")
	}

	var comment *string
	if req.Comment != nil {
		trimmed := strings.TrimSpace(*req.Comment)
		if trimmed != "" {
			comment = &trimmed
		}
	}

	review := &models.Review{
		ID:      uuid.New(),
		UserID:  customerID,
		PlaceID: placeID,
		Rating:  req.Rating,
		Comment: comment,
	}
	newCount := place.ReviewCount + 1
	newRating := nextAverage(place.Rating, place.ReviewCount, req.Rating)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, review); err != nil {
			return err
		}
		if err := s.places.UpdateRating(ctx, tx, placeID, newRating, newCount); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewCreated,
			AggregateType: enums.AggregateReview,
			AggregateID:   review.ID,
			Actor:         &outbox.ActorRef{UserID: customerID, Role: string(enums.UserRoleCustomer)},
			Data: payloads.ReviewCreatedEvent{
				ReviewID:   review.ID,
				PlaceID:    placeID,
				OwnerID:    place.OwnerID,
				CustomerID: customerID,
				PlaceName:  place.Name,
				Rating:     req.Rating,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}

	return &ReviewResponse{
		ID:               review.ID,
		PlaceID:          placeID,
		UserID:           customerID,
		Rating:           review.Rating,
		Comment:          review.Comment,
		CreatedAt:        review.CreatedAt,
		PlaceRating:      newRating,
		PlaceReviewCount: newCount,
	}, nil
}

// nextAverage folds one rating into the stored running average, rounded to
// two decimal places to match the numeric(3,2) column.
func nextAverage(current decimal.Decimal, count, rating int) decimal.Decimal {
	total := current.Mul(decimal.NewFromInt(int64(count))).
		Add(decimal.NewFromInt(int64(rating)))
	return total.Div(decimal.NewFromInt(int64(count + 1))).Round(2)
}
