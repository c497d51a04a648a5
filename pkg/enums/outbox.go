package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateUser    OutboxAggregateType = "user"
	AggregatePlace   OutboxAggregateType = "place"
	AggregateBooking OutboxAggregateType = "booking"
	AggregateReview  OutboxAggregateType = "review"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateUser,
	AggregatePlace,
	AggregateBooking,
	AggregateReview,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventPasswordResetRequested OutboxEventType = "password_reset_requested"
	EventPasswordResetCompleted OutboxEventType = "password_reset_completed"
	EventPlaceSubmitted         OutboxEventType = "place_submitted"
	EventPlaceStatusChanged     OutboxEventType = "place_status_changed"
	EventBookingCreated         OutboxEventType = "booking_created"
	EventReviewCreated          OutboxEventType = "review_created"
)

var validOutboxEventTypes = []OutboxEventType{
	EventPasswordResetRequested,
	EventPasswordResetCompleted,
	EventPlaceSubmitted,
	EventPlaceStatusChanged,
	EventBookingCreated,
	EventReviewCreated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// OutboxDLQErrorReason classifies why an event landed in the dead letter table.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
