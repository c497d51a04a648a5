package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/spot2go/spot2go-backend/pkg/enums"
)

// OutboxEvent is one row of the transactional outbox. Rows are appended in
// the same transaction as the domain change and picked up by the publisher;
// PublishedAt stays NULL until the event has been handed to Pub/Sub.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"type:event_type_enum;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"type:aggregate_type_enum;not null"`
	AggregateID   uuid.UUID                 `gorm:"type:uuid;not null"`
	Payload       json.RawMessage           `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time                 `gorm:"autoCreateTime"`
	PublishedAt   *time.Time
	AttemptCount  int `gorm:"not null;default:0"`
	LastError     *string
}
