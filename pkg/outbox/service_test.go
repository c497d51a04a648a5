package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/spot2go/spot2go-backend/pkg/db/models"
	"github.com/spot2go/spot2go-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.Exec(`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return conn
}

func TestEmitPersistsEnvelope(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)

	placeID := uuid.New()
	ownerID := uuid.New()
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventPlaceSubmitted,
			AggregateType: enums.AggregatePlace,
			AggregateID:   placeID,
			Actor:         &ActorRef{UserID: ownerID, Role: "owner"},
			Data:          map[string]string{"place_name": "Quiet Corner"},
		})
	})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	var row models.OutboxEvent
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("reading row: %v", err)
	}
	if row.EventType != enums.EventPlaceSubmitted {
		t.Fatalf("unexpected event type %s", row.EventType)
	}
	if row.AggregateID != placeID {
		t.Fatalf("unexpected aggregate id %s", row.AggregateID)
	}
	if row.PublishedAt != nil {
		t.Fatalf("new rows must be unpublished")
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if envelope.Version != 1 {
		t.Fatalf("expected default version 1, got %d", envelope.Version)
	}
	if envelope.EventID == "" {
		t.Fatalf("envelope must carry an event id")
	}
	if envelope.Actor == nil || envelope.Actor.UserID != ownerID {
		t.Fatalf("actor not preserved: %+v", envelope.Actor)
	}
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(newTestDB(t)), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{
		EventType:     enums.EventBookingCreated,
		AggregateType: enums.AggregateBooking,
		AggregateID:   uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error without transaction")
	}
}

func TestMarkFailedIncrementsAttempts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	id := uuid.New()
	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventReviewCreated,
			AggregateType: enums.AggregateReview,
			AggregateID:   id,
			Data:          map[string]int{"rating": 5},
		})
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	var row models.OutboxEvent
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("reading row: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return repo.MarkFailedTx(tx, row.ID, context.DeadlineExceeded)
		}); err != nil {
			t.Fatalf("mark failed: %v", err)
		}
	}

	var after models.OutboxEvent
	if err := db.First(&after, "id = ?", row.ID).Error; err != nil {
		t.Fatalf("reading row: %v", err)
	}
	if after.AttemptCount != 2 {
		t.Fatalf("expected 2 attempts, got %d", after.AttemptCount)
	}
	if after.LastError == nil {
		t.Fatal("expected last error recorded")
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkPublishedTx(tx, row.ID)
	}); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	if err := db.First(&after, "id = ?", row.ID).Error; err != nil {
		t.Fatalf("reading row: %v", err)
	}
	if after.PublishedAt == nil {
		t.Fatal("expected published_at set")
	}
}
