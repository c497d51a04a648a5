package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/pkg/calendar"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/outbox/payloads"
	"github.com/spot2go/spot2go-backend/pkg/types"
)

// CreateBookingRequest is the customer booking payload. The amount is taken
// as sent; pricing is not recomputed server side.
type CreateBookingRequest struct {
	PlaceID  uuid.UUID       `json:"place_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	StartsAt *time.Time      `json:"starts_at"`
	EndsAt   *time.Time      `json:"ends_at"`
}

// BookingResponse is one booking with its place summary joined.
type BookingResponse struct {
	ID        uuid.UUID           `json:"id"`
	PlaceID   uuid.UUID           `json:"place_id"`
	Status    enums.BookingStatus `json:"status"`
	Amount    decimal.Decimal     `json:"amount"`
	PaymentID *string             `json:"payment_id,omitempty"`
	StartsAt  *time.Time          `json:"starts_at,omitempty"`
	EndsAt    *time.Time          `json:"ends_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`

	PlaceName     string          `json:"place_name,omitempty"`
	PlaceLocation *types.Location `json:"place_location,omitempty"`
}

// Service is the customer booking surface plus the calendar export.
type Service interface {
	Create(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]BookingResponse, error)
	CalendarEvent(ctx context.Context, userID, bookingID uuid.UUID) (*calendar.BookingEvent, error)
}

type bookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type placeReader interface {
	FindApprovedByID(ctx context.Context, id uuid.UUID) (*models.Place, error)
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo   bookingRepository
	places placeReader
	users  userReader
	tx     transactor
	events eventEmitter
	logg   *logger.Logger
}

// ServiceParams bundles the booking service dependencies.
type ServiceParams struct {
	Repo   bookingRepository
	Places placeReader
	Users  userReader
	Tx     transactor
	Events eventEmitter
	Logger *logger.Logger
}

// NewService constructs the booking service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("booking repository is required")
	}
	if params.Places == nil {
		return nil, fmt.Errorf("place reader is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user reader is required")
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
		users:  params.Users,
		tx:     params.Tx,
		events: params.Events,
		logg:   params.Logger,
	}, nil
}

// Create books an approved place. The row starts pending and the mocked
// payment flow never advances it. Overlapping bookings are allowed.
func (s *service) Create(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	if req.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}

	place, err := s.places.FindApprovedByID(ctx, req.PlaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load place")
	}

	customer, err := s.users.FindByID(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}

	booking := &models.Booking{
		UserID:   customerID,
		PlaceID:  place.ID,
		Status:   enums.BookingStatusPending,
		Amount:   req.Amount,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, booking); err != nil {
			return err
		}
		var customerEmail string
		if customer.Email != nil {
			customerEmail = *customer.Email
		}
		var startsAt, endsAt time.Time
		if booking.StartsAt != nil {
			startsAt = *booking.StartsAt
		}
		if booking.EndsAt != nil {
			endsAt = *booking.EndsAt
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCreated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{UserID: customerID, Role: string(enums.UserRoleCustomer)},
			Data: payloads.BookingCreatedEvent{
				BookingID:     booking.ID,
				PlaceID:       place.ID,
				OwnerID:       place.OwnerID,
				CustomerID:    customerID,
				CustomerEmail: customerEmail,
				PlaceName:     place.Name,
				StartsAt:      startsAt,
				EndsAt:        endsAt,
				Amount:        booking.Amount,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create booking")
	}

	booking.Place = place
	resp := fromBookingModel(booking)
	return &resp, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]BookingResponse, error) {
	rows, err := s.repo.ListByUser(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bookings")
	}
	out := make([]BookingResponse, 0, len(rows))
	for i := range rows {
		out = append(out, fromBookingModel(&rows[i]))
	}
	return out, nil
}

// CalendarEvent loads a booking for the .ics export. Only the booking's own
// customer may export it.
func (s *service) CalendarEvent(ctx context.Context, userID, bookingID uuid.UUID) (*calendar.BookingEvent, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
	}
	if booking.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another user")
	}
	if booking.StartsAt == nil || booking.EndsAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking has no time window to export")
	}

	event := &calendar.BookingEvent{
		BookingID: booking.ID.String(),
		StartsAt:  *booking.StartsAt,
		EndsAt:    *booking.EndsAt,
	}
	if booking.Place != nil {
		event.PlaceName = booking.Place.Name
		event.Address = booking.Place.Location.Address
	}
	return event, nil
}

func fromBookingModel(booking *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:        booking.ID,
		PlaceID:   booking.PlaceID,
		Status:    booking.Status,
		Amount:    booking.Amount,
		PaymentID: booking.PaymentID,
		StartsAt:  booking.StartsAt,
		EndsAt:    booking.EndsAt,
		CreatedAt: booking.CreatedAt,
	}
	if booking.Place != nil {
		resp.PlaceName = booking.Place.Name
		loc := booking.Place.Location
		resp.PlaceLocation = &loc
	}
	return resp
}
