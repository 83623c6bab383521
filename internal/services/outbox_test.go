package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/services"
	"apartment_app_echo/internal/testutil"
)

type recordingPublisher struct {
	published []services.Message
	failOn    map[string]bool
}

func (p *recordingPublisher) Publish(ctx context.Context, msg services.Message) error {
	if p.failOn[msg.EventType] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, msg)
	return nil
}

func TestOutboxRelay(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := services.EnqueueEvent(tx, models.EventInvoiceCreated, 1, services.InvoiceEvent{InvoiceID: 1}); err != nil {
			return err
		}
		if err := services.EnqueueEvent(tx, models.EventInvoicePaid, 1, services.InvoiceEvent{InvoiceID: 1, Status: "paid"}); err != nil {
			return err
		}
		return services.EnqueueEvent(tx, models.EventInvoiceOverdue, 2, services.InvoiceEvent{InvoiceID: 2})
	}))

	pub := &recordingPublisher{failOn: map[string]bool{models.EventInvoiceOverdue: true}}
	relay := services.NewOutboxRelay(db, pub)

	result, err := relay.Relay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, services.RelayResult{Published: 2, Failed: 1}, result)
	require.Len(t, pub.published, 2)
	assert.Equal(t, models.EventInvoiceCreated, pub.published[0].EventType)
	assert.Equal(t, models.EventInvoicePaid, pub.published[1].EventType)
	assert.JSONEq(t, `{"invoice_id":1,"invoice_number":"","user_id":0,"type":"","amount":0,"status":"paid"}`, string(pub.published[1].Payload))

	var failed models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", models.EventInvoiceOverdue).First(&failed).Error)
	assert.Nil(t, failed.PublishedAt)
	assert.Equal(t, 1, failed.Attempts)
	assert.Equal(t, "broker unavailable", failed.LastError)

	// published events are not sent again; the failed one is retried
	pub.failOn = nil
	result, err = relay.Relay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, services.RelayResult{Published: 1}, result)
	assert.Len(t, pub.published, 3)
}

func TestEnqueueEventRollsBackWithTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := services.EnqueueEvent(tx, models.EventInvoicePaid, 1, services.InvoiceEvent{}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var n int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&n).Error)
	assert.Zero(t, n)
}
