package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	"github.com/spot2go/spot2go-backend/pkg/logger"
	"github.com/spot2go/spot2go-backend/pkg/mail"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/outbox/payloads"
	"github.com/spot2go/spot2go-backend/pkg/push"
)

// Handler fans domain events out to email and push channels.
type Handler interface {
	Handle(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error
}

type deviceStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserDevice, error)
	DeleteByTokens(ctx context.Context, tokens []string) error
}

type handler struct {
	mailer      mail.Sender
	pusher      push.Sender
	devices     deviceStore
	frontendURL string
	resetTTL    time.Duration
	logg        *logger.Logger
}

// HandlerParams bundles the notify handler dependencies.
type HandlerParams struct {
	Mailer      mail.Sender
	Pusher      push.Sender
	Devices     deviceStore
	FrontendURL string
	ResetTTL    time.Duration
	Logger      *logger.Logger
}

// NewHandler constructs the notification fan-out handler.
func NewHandler(params HandlerParams) (Handler, error) {
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if params.Pusher == nil {
		return nil, fmt.Errorf("push sender is required")
	}
	if params.Devices == nil {
		return nil, fmt.Errorf("device store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.ResetTTL <= 0 {
		params.ResetTTL = time.Hour
	}
	return &handler{
		mailer:      params.Mailer,
		pusher:      params.Pusher,
		devices:     params.Devices,
		frontendURL: params.FrontendURL,
		resetTTL:    params.ResetTTL,
		logg:        params.Logger,
	}, nil
}

// Handle dispatches one decoded event. Channel failures are aggregated so a
// dead email relay does not suppress push delivery, and vice versa.
func (h *handler) Handle(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	ctx = h.logg.WithFields(ctx, map[string]any{
		"event_type": string(eventType),
		"event_id":   envelope.EventID,
	})

	switch eventType {
	case enums.EventPasswordResetRequested:
		return h.onPasswordResetRequested(ctx, envelope.Data)
	case enums.EventPasswordResetCompleted:
		return h.onPasswordResetCompleted(ctx, envelope.Data)
	case enums.EventPlaceSubmitted:
		return h.onPlaceSubmitted(ctx, envelope.Data)
	case enums.EventPlaceStatusChanged:
		return h.onPlaceStatusChanged(ctx, envelope.Data)
	case enums.EventBookingCreated:
		return h.onBookingCreated(ctx, envelope.Data)
	case enums.EventReviewCreated:
		return h.onReviewCreated(ctx, envelope.Data)
	default:
		h.logg.Warn(ctx, "ignoring unsupported event type")
		return nil
	}
}

func (h *handler) onPasswordResetRequested(ctx context.Context, data json.RawMessage) error {
	var payload payloads.PasswordResetRequestedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode password_reset_requested: %w", err)
	}
	if payload.Email == "" {
		h.logg.Warn(ctx, "reset requested for account without email, skipping")
		return nil
	}
	return h.mailer.Send(ctx, mail.PasswordReset(payload.Email, h.frontendURL, payload.Token, h.resetTTL))
}

func (h *handler) onPasswordResetCompleted(ctx context.Context, data json.RawMessage) error {
	var payload payloads.PasswordResetCompletedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode password_reset_completed: %w", err)
	}
	if payload.Email == "" {
		return nil
	}
	return h.mailer.Send(ctx, mail.PasswordResetConfirmation(payload.Email))
}

func (h *handler) onPlaceSubmitted(ctx context.Context, data json.RawMessage) error {
	var payload payloads.PlaceSubmittedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode place_submitted: %w", err)
	}
	return h.pushToUser(ctx, payload.OwnerID, push.Notification{
		Title: "Listing submitted",
		Body:  fmt.Sprintf("%s is in the review queue. We'll let you know once it's approved.", payload.PlaceName),
		Data: map[string]string{
			"type":     "place_submitted",
			"place_id": payload.PlaceID.String(),
		},
	})
}

func (h *handler) onPlaceStatusChanged(ctx context.Context, data json.RawMessage) error {
	var payload payloads.PlaceStatusChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode place_status_changed: %w", err)
	}

	var errs error
	if payload.OwnerEmail != "" {
		errs = multierr.Append(errs,
			h.mailer.Send(ctx, mail.PlaceDecision(payload.OwnerEmail, payload.PlaceName, string(payload.Status))))
	}
	errs = multierr.Append(errs, h.pushToUser(ctx, payload.OwnerID, push.Notification{
		Title: "Listing " + string(payload.Status),
		Body:  fmt.Sprintf("Your listing %s was %s.", payload.PlaceName, payload.Status),
		Data: map[string]string{
			"type":     "place_status_changed",
			"place_id": payload.PlaceID.String(),
			"status":   string(payload.Status),
		},
	}))
	return errs
}

func (h *handler) onBookingCreated(ctx context.Context, data json.RawMessage) error {
	var payload payloads.BookingCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode booking_created: %w", err)
	}

	var errs error
	if payload.CustomerEmail != "" {
		errs = multierr.Append(errs,
			h.mailer.Send(ctx, mail.BookingConfirmation(payload.CustomerEmail, payload.PlaceName, payload.StartsAt, payload.EndsAt)))
	}
	errs = multierr.Append(errs, h.pushToUser(ctx, payload.OwnerID, push.Notification{
		Title: "New booking",
		Body:  fmt.Sprintf("%s has a new booking.", payload.PlaceName),
		Data: map[string]string{
			"type":       "booking_created",
			"booking_id": payload.BookingID.String(),
			"place_id":   payload.PlaceID.String(),
		},
	}))
	return errs
}

func (h *handler) onReviewCreated(ctx context.Context, data json.RawMessage) error {
	var payload payloads.ReviewCreatedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode review_created: %w", err)
	}
	return h.pushToUser(ctx, payload.OwnerID, push.Notification{
		Title: "New review",
		Body:  fmt.Sprintf("%s received a %d-star review.", payload.PlaceName, payload.Rating),
		Data: map[string]string{
			"type":      "review_created",
			"place_id":  payload.PlaceID.String(),
			"review_id": payload.ReviewID.String(),
		},
	})
}

// pushToUser delivers to every registered device and prunes tokens FCM
// reports as dead.
func (h *handler) pushToUser(ctx context.Context, userID uuid.UUID, n push.Notification) error {
	devices, err := h.devices.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	if len(devices) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(devices))
	for _, device := range devices {
		tokens = append(tokens, device.FCMToken)
	}

	invalid, err := h.pusher.Send(ctx, tokens, n)
	if len(invalid) > 0 {
		if pruneErr := h.devices.DeleteByTokens(ctx, invalid); pruneErr != nil {
			h.logg.Error(ctx, "failed to prune dead push tokens", pruneErr)
		}
	}
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	return nil
}
