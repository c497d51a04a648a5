package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/config"
	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
	"github.com/spot2go/spot2go-backend/pkg/outbox"
	"github.com/spot2go/spot2go-backend/pkg/outbox/payloads"
)

func newRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{
		DomainTopic:        "spot2go-domain-events",
		NotifySubscription: "spot2go-notify",
	})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	return reg
}

func eventRow(t *testing.T, eventType enums.OutboxEventType, aggType enums.OutboxAggregateType, data interface{}) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: aggType,
		AggregateID:   uuid.New(),
		Payload:       envelope,
	}
}

func TestResolveBookingCreated(t *testing.T) {
	reg := newRegistry(t)
	row := eventRow(t, enums.EventBookingCreated, enums.AggregateBooking, payloads.BookingCreatedEvent{
		BookingID: uuid.New(),
		PlaceName: "Quiet Corner",
	})

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "spot2go-domain-events" {
		t.Fatalf("unexpected topic %s", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.BookingCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.PlaceName != "Quiet Corner" {
		t.Fatalf("payload fields not decoded: %+v", payload)
	}
}

func TestResolveRejectsUnknownEventType(t *testing.T) {
	reg := newRegistry(t)
	row := eventRow(t, enums.OutboxEventType("mystery"), enums.AggregateUser, map[string]string{})

	_, err := reg.Resolve(row)
	var nonRetry NonRetryableError
	if err == nil || !asNonRetryable(err, &nonRetry) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestResolveRejectsAggregateMismatch(t *testing.T) {
	reg := newRegistry(t)
	row := eventRow(t, enums.EventPlaceSubmitted, enums.AggregateUser, payloads.PlaceSubmittedEvent{})

	if _, err := reg.Resolve(row); err == nil {
		t.Fatal("expected aggregate mismatch error")
	}
}

func TestResolveRejectsEmptyPayload(t *testing.T) {
	reg := newRegistry(t)
	row := eventRow(t, enums.EventPlaceSubmitted, enums.AggregatePlace, nil)

	if _, err := reg.Resolve(row); err == nil {
		t.Fatal("expected error for null payload")
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("expected error without domain topic")
	}
}

func asNonRetryable(err error, target *NonRetryableError) bool {
	nr, ok := err.(NonRetryableError)
	if ok {
		*target = nr
	}
	return ok
}
