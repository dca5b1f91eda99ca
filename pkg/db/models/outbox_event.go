package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/bookstore-backend/pkg/enums"
)

// OutboxEvent represents an append-only event emitted via the outbox pattern.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;not null"`
	AggregateID   string                    `gorm:"column:aggregate_id;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
}

// TableName keeps the table aligned with the migrations.
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
