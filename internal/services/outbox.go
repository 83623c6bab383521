package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

// InvoiceEvent is the payload of every invoice.* event
type InvoiceEvent struct {
	InvoiceID       uint       `json:"invoice_id"`
	InvoiceNumber   string     `json:"invoice_number"`
	UserID          uint       `json:"user_id"`
	Type            string     `json:"type"`
	Amount          int64      `json:"amount"`
	Status          string     `json:"status"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	PaidDate        *time.Time `json:"paid_date,omitempty"`
	TransactionID   uint       `json:"transaction_id,omitempty"`
	TransactionCode string     `json:"transaction_code,omitempty"`
	PaymentGateway  string     `json:"payment_gateway,omitempty"`
}

// EnqueueEvent stores an event in the caller's transaction so it is published
// if and only if the surrounding change commits.
func EnqueueEvent(tx *gorm.DB, eventType string, aggregateID uint, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	event := models.OutboxEvent{
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     body,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("enqueue %s event: %w", eventType, err)
	}
	return nil
}

// Message is what leaves the outbox
type Message struct {
	ID          uint            `json:"id"`
	EventType   string          `json:"event_type"`
	AggregateID uint            `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// OutboxRelay moves committed events to the broker
type OutboxRelay struct {
	db          *gorm.DB
	publisher   Publisher
	maxAttempts int
}

func NewOutboxRelay(db *gorm.DB, publisher Publisher) *OutboxRelay {
	return &OutboxRelay{db: db, publisher: publisher, maxAttempts: 10}
}

type RelayResult struct {
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// Relay publishes up to batch pending events in insertion order. A failed
// event keeps its place and is retried on the next run until maxAttempts.
func (r *OutboxRelay) Relay(ctx context.Context, batch int) (RelayResult, error) {
	var result RelayResult
	if batch <= 0 {
		batch = 100
	}

	var events []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL AND attempts < ?", r.maxAttempts).
		Order("id ASC").
		Limit(batch).
		Find(&events).Error
	if err != nil {
		return result, fmt.Errorf("load outbox events: %w", err)
	}

	log := logger.WithComponent("outbox")
	for _, event := range events {
		msg := Message{
			ID:          event.ID,
			EventType:   event.EventType,
			AggregateID: event.AggregateID,
			OccurredAt:  event.CreatedAt,
			Payload:     event.Payload,
		}

		if pubErr := r.publisher.Publish(ctx, msg); pubErr != nil {
			result.Failed++
			log.Warn().Err(pubErr).Uint("event_id", event.ID).Str("event_type", event.EventType).Msg("failed to publish event")
			err := r.db.WithContext(ctx).Model(&event).Updates(map[string]interface{}{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": pubErr.Error(),
			}).Error
			if err != nil {
				return result, fmt.Errorf("record publish failure: %w", err)
			}
			continue
		}

		now := time.Now().UTC()
		err := r.db.WithContext(ctx).Model(&event).Updates(map[string]interface{}{
			"published_at": now,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   "",
		}).Error
		if err != nil {
			return result, fmt.Errorf("mark event %d published: %w", event.ID, err)
		}
		result.Published++
	}

	if result.Published > 0 || result.Failed > 0 {
		log.Info().Int("published", result.Published).Int("failed", result.Failed).Msg("outbox relay finished")
	}
	return result, nil
}

// LogPublisher writes events to the log; used when no broker is configured
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg Message) error {
	log := logger.WithComponent("outbox")
	log.Info().
		Uint("event_id", msg.ID).
		Str("event_type", msg.EventType).
		RawJSON("payload", msg.Payload).
		Msg("event")
	return nil
}
