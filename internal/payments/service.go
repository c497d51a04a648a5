package payments

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	apperrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

// CreateIntentRequest asks for a payment intent against a booking.
type CreateIntentRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
}

// IntentResponse mimics a processor intent. The client secret is a mock
// value; no real charge is ever created.
type IntentResponse struct {
	PaymentID    string          `json:"payment_id"`
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
}

// WebhookEvent is the processor callback body. Only the fields we read
// are modeled.
type WebhookEvent struct {
	Type      string `json:"type"`
	PaymentID string `json:"payment_id"`
}

// Service creates mock payment intents and absorbs processor webhooks.
type Service interface {
	CreateIntent(ctx context.Context, customerID uuid.UUID, req CreateIntentRequest) (*IntentResponse, error)
	HandleWebhook(ctx context.Context, event WebhookEvent) error
}

type bookingStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error
}

type service struct {
	bookings bookingStore
	logg     *logger.Logger
}

// ServiceParams bundles the payment service dependencies.
type ServiceParams struct {
	Bookings bookingStore
	Logger   *logger.Logger
}

// NewService constructs the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{bookings: params.Bookings, logg: params.Logger}, nil
}

// CreateIntent stamps a mock payment id on the customer's booking and
// returns an intent the client can pretend to confirm.
func (s *service) CreateIntent(ctx context.Context, customerID uuid.UUID, req CreateIntentRequest) (*IntentResponse, error) {
	booking, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "booking not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load booking")
	}
	if booking.UserID != customerID {
		return nil, apperrors.New(apperrors.CodeForbidden, "booking belongs to another customer")
	}

	paymentID := booking.PaymentID
	if paymentID == nil {
		id := mockPaymentID()
		if err := s.bookings.SetPaymentID(ctx, booking.ID, id); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to store payment id")
		}
		paymentID = &id
	}

	nonce := uuid.New()
	return &IntentResponse{
		PaymentID:    *paymentID,
		ClientSecret: *paymentID + "_secret_" + hex.EncodeToString(nonce[:8]),
		Amount:       booking.Amount,
		Currency:     "usd",
		Status:       "requires_confirmation",
	}, nil
}

// HandleWebhook records the callback and returns. Booking status is owned
// by the booking lifecycle and is never changed from here.
func (s *service) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	eventType := strings.TrimSpace(event.Type)
	if eventType == "" {
		return apperrors.New(apperrors.CodeValidation, "event type is required")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"event_type": eventType,
		"payment_id": event.PaymentID,
	})
	s.logg.Info(ctx, "payment webhook received")
	return nil
}

func mockPaymentID() string {
	id := uuid.New()
	return "pi_" + hex.EncodeToString(id[:12])
}
