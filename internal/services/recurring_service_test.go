package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/services"
)

func TestRecurringInvoices(t *testing.T) {
	f := newFixtures(t)
	invoices := services.NewInvoiceService(f.db, nil)
	recurring := services.NewRecurringInvoiceService(f.db, invoices)
	ctx := context.Background()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tmpl, err := recurring.Create(ctx, services.CreateRecurringInput{
		UserID:       f.resident.ID,
		ApartmentID:  f.apartment.ID,
		Type:         "WATER",
		Amount:       120_000,
		StartDate:    start,
		RRule:        "FREQ=MONTHLY;BYMONTHDAY=1",
		DueAfterDays: 10,
	})
	require.NoError(t, err)
	assert.True(t, tmpl.NextRunAt.Equal(start))

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	invoices.SetClock(func() time.Time { return now })
	recurring.SetClock(func() time.Time { return now })

	result, err := recurring.GenerateDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created, "January, February and March")

	var generated []models.Invoice
	require.NoError(t, f.db.Order("due_date ASC").Find(&generated).Error)
	require.Len(t, generated, 3)
	assert.True(t, generated[0].DueDate.Equal(time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.InvoiceCategoryUtilities, generated[0].Type)
	assert.Equal(t, int64(120_000), generated[2].Amount)

	var stored models.RecurringInvoice
	require.NoError(t, f.db.First(&stored, tmpl.ID).Error)
	assert.True(t, stored.NextRunAt.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

	result, err = recurring.GenerateDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
}

func TestRecurringInvoiceValidation(t *testing.T) {
	f := newFixtures(t)
	recurring := services.NewRecurringInvoiceService(f.db, services.NewInvoiceService(f.db, nil))

	_, err := recurring.Create(context.Background(), services.CreateRecurringInput{
		UserID: f.resident.ID, ApartmentID: f.apartment.ID, Type: "RENT", Amount: 1,
		StartDate: fixedNow, RRule: "FREQ=SOMETIMES",
	})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rrule", verr.Field)
}
