package models

import (
	"encoding/json"
	"time"
)

const (
	EventInvoiceCreated = "invoice.created"
	EventInvoicePaid    = "invoice.paid"
	EventInvoiceOverdue = "invoice.overdue"
)

// OutboxEvent is written in the same database transaction as the change it
// describes and published to the broker later.
type OutboxEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventType   string          `gorm:"type:varchar(64);index" json:"event_type"`
	AggregateID uint            `gorm:"index" json:"aggregate_id"`
	Payload     json.RawMessage `gorm:"type:jsonb" json:"payload"`
	Attempts    int             `json:"attempts"`
	PublishedAt *time.Time      `gorm:"index" json:"published_at"`
	LastError   string          `gorm:"type:text" json:"last_error,omitempty"`
}
