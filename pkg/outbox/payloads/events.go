package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spot2go/spot2go-backend/pkg/enums"
)

// PasswordResetRequestedEvent carries the plaintext reset token to the mail
// worker. Only the digest is stored on the user row.
type PasswordResetRequestedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordResetCompletedEvent triggers the confirmation email.
type PasswordResetCompletedEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// PlaceSubmittedEvent is emitted when a listing enters the moderation queue,
// both on creation and when an edit resets an approved place to pending.
type PlaceSubmittedEvent struct {
	PlaceID   uuid.UUID `json:"place_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	PlaceName string    `json:"place_name"`
}

// PlaceStatusChangedEvent notifies the owner about a moderation decision.
type PlaceStatusChangedEvent struct {
	PlaceID    uuid.UUID         `json:"place_id"`
	OwnerID    uuid.UUID         `json:"owner_id"`
	OwnerEmail string            `json:"owner_email,omitempty"`
	PlaceName  string            `json:"place_name"`
	Status     enums.PlaceStatus `json:"status"`
}

// BookingCreatedEvent fans out the customer confirmation email and the owner
// push notification.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID       `json:"booking_id"`
	PlaceID       uuid.UUID       `json:"place_id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	PlaceName     string          `json:"place_name"`
	StartsAt      time.Time       `json:"starts_at"`
	EndsAt        time.Time       `json:"ends_at"`
	Amount        decimal.Decimal `json:"amount"`
}

// ReviewCreatedEvent notifies the place owner about new feedback.
type ReviewCreatedEvent struct {
	ReviewID   uuid.UUID `json:"review_id"`
	PlaceID    uuid.UUID `json:"place_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	PlaceName  string    `json:"place_name"`
	Rating     int       `json:"rating"`
}
