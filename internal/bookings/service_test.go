package bookings

import (
	"context"
	"testing"
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
	"github.com/spot2go/spot2go-backend/pkg/types"
)

type fakeBookingRepo struct {
	created []*models.Booking
	byUser  map[uuid.UUID][]models.Booking
	byID    map[uuid.UUID]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		byUser: map[uuid.UUID][]models.Booking{},
		byID:   map[uuid.UUID]*models.Booking{},
	}
}

func (f *fakeBookingRepo) Create(_ context.Context, _ *gorm.DB, booking *models.Booking) error {
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	f.created = append(f.created, booking)
	return nil
}

func (f *fakeBookingRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return f.byUser[userID], nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return booking, nil
}

type fakePlaceReader struct {
	byID map[uuid.UUID]*models.Place
}

func (f *fakePlaceReader) FindApprovedByID(_ context.Context, id uuid.UUID) (*models.Place, error) {
	place, ok := f.byID[id]
	if !ok || place.Status != enums.PlaceStatusApproved {
		return nil, gorm.ErrRecordNotFound
	}
	return place, nil
}

type fakeUserReader struct {
	byID map[uuid.UUID]*models.User
}

func (f *fakeUserReader) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeTransactor struct{}

func (fakeTransactor) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fixture struct {
	svc        Service
	repo       *fakeBookingRepo
	emitter    *fakeEmitter
	customerID uuid.UUID
	placeID    uuid.UUID
	ownerID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeBookingRepo()
	emitter := &fakeEmitter{}
	customerID := uuid.New()
	placeID := uuid.New()
	ownerID := uuid.New()

	places := &fakePlaceReader{byID: map[uuid.UUID]*models.Place{
		placeID: {
			ID:       placeID,
			OwnerID:  ownerID,
			Name:     "Quiet Corner",
			Status:   enums.PlaceStatusApproved,
			Location: types.Location{Address: "12 Main St"},
		},
	}}
	users := &fakeUserReader{byID: map[uuid.UUID]*models.User{
		customerID: {
			ID:    customerID,
			Email: func() *string { s := "customer@example.com"; return &s }(),
			Name:  "Customer",
			Role:  enums.UserRoleCustomer,
		},
	}}

	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Places: places,
		Users:  users,
		Tx:     fakeTransactor{},
		Events: emitter,
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &fixture{
		svc:        svc,
		repo:       repo,
		emitter:    emitter,
		customerID: customerID,
		placeID:    placeID,
		ownerID:    ownerID,
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestCreateBookingPendingWithTrustedAmount(t *testing.T) {
	f := newFixture(t)
	starts := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	ends := starts.Add(3 * time.Hour)

	resp, err := f.svc.Create(context.Background(), f.customerID, CreateBookingRequest{
		PlaceID:  f.placeID,
		Amount:   decimal.RequireFromString("25.00"),
		StartsAt: &starts,
		EndsAt:   &ends,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if resp.Status != enums.BookingStatusPending {
		t.Fatalf("expected pending booking, got %s", resp.Status)
	}
	if !resp.Amount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected client amount stored as-is, got %s", resp.Amount)
	}
	if resp.PlaceName != "Quiet Corner" {
		t.Fatalf("expected joined place name, got %q", resp.PlaceName)
	}
	if len(f.emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(f.emitter.events))
	}
	payload, ok := f.emitter.events[0].Data.(payloads.BookingCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", f.emitter.events[0].Data)
	}
	if payload.OwnerID != f.ownerID || payload.CustomerEmail != "customer@example.com" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestCreateBookingUnknownPlace(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.customerID, CreateBookingRequest{
		PlaceID: uuid.New(),
		Amount:  decimal.RequireFromString("10"),
	})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateBookingInvalidWindow(t *testing.T) {
	f := newFixture(t)
	starts := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	ends := starts.Add(-time.Hour)

	_, err := f.svc.Create(context.Background(), f.customerID, CreateBookingRequest{
		PlaceID:  f.placeID,
		Amount:   decimal.RequireFromString("10"),
		StartsAt: &starts,
		EndsAt:   &ends,
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestListForCustomerJoinsPlace(t *testing.T) {
	f := newFixture(t)
	f.repo.byUser[f.customerID] = []models.Booking{
		{
			ID:      uuid.New(),
			UserID:  f.customerID,
			PlaceID: f.placeID,
			Status:  enums.BookingStatusPending,
			Amount:  decimal.RequireFromString("25.00"),
			Place: &models.Place{
				Name:     "Quiet Corner",
				Location: types.Location{Address: "12 Main St"},
			},
		},
	}

	rows, err := f.svc.ListForCustomer(context.Background(), f.customerID)
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one booking, got %d", len(rows))
	}
	if rows[0].PlaceLocation == nil || rows[0].PlaceLocation.Address != "12 Main St" {
		t.Fatalf("expected joined location, got %+v", rows[0].PlaceLocation)
	}
}

func TestCalendarEventOwnershipAndWindow(t *testing.T) {
	f := newFixture(t)
	starts := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	ends := starts.Add(2 * time.Hour)
	bookingID := uuid.New()
	f.repo.byID[bookingID] = &models.Booking{
		ID:       bookingID,
		UserID:   f.customerID,
		PlaceID:  f.placeID,
		StartsAt: &starts,
		EndsAt:   &ends,
		Place: &models.Place{
			Name:     "Quiet Corner",
			Location: types.Location{Address: "12 Main St"},
		},
	}

	event, err := f.svc.CalendarEvent(context.Background(), f.customerID, bookingID)
	if err != nil {
		t.Fatalf("calendar event: %v", err)
	}
	if event.PlaceName != "Quiet Corner" || event.Address != "12 Main St" {
		t.Fatalf("unexpected event %+v", event)
	}

	_, err = f.svc.CalendarEvent(context.Background(), uuid.New(), bookingID)
	expectCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.CalendarEvent(context.Background(), f.customerID, uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}
