package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/internal/bookings"
	"github.com/spot2go/spot2go-backend/pkg/calendar"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
)

type stubBookingService struct {
	created  *bookings.BookingResponse
	list     []bookings.BookingResponse
	event    *calendar.BookingEvent
	err      error
	customer uuid.UUID
}

func (s *stubBookingService) Create(_ context.Context, customerID uuid.UUID, _ bookings.CreateBookingRequest) (*bookings.BookingResponse, error) {
	s.customer = customerID
	return s.created, s.err
}

func (s *stubBookingService) ListForCustomer(_ context.Context, _ uuid.UUID) ([]bookings.BookingResponse, error) {
	return s.list, s.err
}

func (s *stubBookingService) CalendarEvent(_ context.Context, _, _ uuid.UUID) (*calendar.BookingEvent, error) {
	return s.event, s.err
}

func TestBookingCreateForwardsCustomer(t *testing.T) {
	customerID := uuid.New()
	svc := &stubBookingService{created: &bookings.BookingResponse{ID: uuid.New(), Status: "pending"}}
	handler := BookingCreate(svc, testLogger())

	body := `{"place_id":"` + uuid.NewString() + `","amount":"25.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/customers/bookings", strings.NewReader(body))
	req = authedRequest(req, customerID, "customer")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.customer != customerID {
		t.Fatalf("expected customer id forwarded")
	}
}

func TestBookingCreateUnknownPlace(t *testing.T) {
	svc := &stubBookingService{err: pkgerrors.New(pkgerrors.CodeNotFound, "place not found")}
	handler := BookingCreate(svc, testLogger())

	body := `{"place_id":"` + uuid.NewString() + `","amount":"25.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/customers/bookings", strings.NewReader(body))
	req = authedRequest(req, uuid.New(), "customer")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestBookingCalendarStreamsICS(t *testing.T) {
	bookingID := uuid.New()
	start := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	svc := &stubBookingService{event: &calendar.BookingEvent{
		BookingID: bookingID.String(),
		PlaceName: "Quiet Corner",
		Address:   "1 Main St",
		StartsAt:  start,
		EndsAt:    start.Add(2 * time.Hour),
	}}
	handler := BookingCalendar(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+bookingID.String()+"/calendar", nil)
	req = authedRequest(req, uuid.New(), "customer")
	req = withChiParam(req, "bookingId", bookingID.String())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/calendar") {
		t.Fatalf("expected text/calendar, got %q", got)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "BEGIN:VEVENT") || !strings.Contains(body, "Quiet Corner") {
		t.Fatalf("expected ics payload, got %s", body)
	}
}

func TestBookingCalendarMissingWindow(t *testing.T) {
	svc := &stubBookingService{err: pkgerrors.New(pkgerrors.CodeValidation, "booking has no time window to export")}
	handler := BookingCalendar(svc, testLogger())

	bookingID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+bookingID+"/calendar", nil)
	req = authedRequest(req, uuid.New(), "customer")
	req = withChiParam(req, "bookingId", bookingID)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
