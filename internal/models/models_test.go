package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceTypeCategories(t *testing.T) {
	tests := []struct {
		input    string
		expected InvoiceCategory
	}{
		{"RENT", InvoiceCategoryRent},
		{"ELECTRICITY", InvoiceCategoryUtilities},
		{"WATER", InvoiceCategoryUtilities},
		{"INTERNET", InvoiceCategoryUtilities},
		{"SERVICE", InvoiceCategoryMaintenance},
		{"REPAIR", InvoiceCategoryMaintenance},
		{"PARKING", InvoiceCategoryParking},
		{"OTHER", InvoiceCategoryOther},
		{" electricity ", InvoiceCategoryUtilities},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typ, err := ParseInvoiceType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, typ.Category())
		})
	}
}

func TestEveryInvoiceTypeHasCategory(t *testing.T) {
	types := AllInvoiceTypes()
	assert.Len(t, types, int(numInvoiceTypes))
	for _, typ := range types {
		assert.NotEmpty(t, typ.Category(), typ.String())
		parsed, err := ParseInvoiceType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
}

func TestParseInvoiceTypeRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "GAS", "utilities", "rent-ish"} {
		_, err := ParseInvoiceType(input)
		assert.Error(t, err, input)
	}
}

func TestInvalidInvoiceTypeCategoryPanics(t *testing.T) {
	assert.Panics(t, func() { _ = numInvoiceTypes.Category() })
	assert.Equal(t, "InvoiceType(-1)", InvoiceType(-1).String())
}

func TestInvoiceIsAwaitingPayment(t *testing.T) {
	assert.True(t, Invoice{Status: InvoiceStatusPending}.IsAwaitingPayment())
	assert.True(t, Invoice{Status: InvoiceStatusOverdue}.IsAwaitingPayment())
	assert.False(t, Invoice{Status: InvoiceStatusPaid}.IsAwaitingPayment())
}

func TestRecurringInvoiceNextRun(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := RecurringInvoice{StartDate: start, RRule: "FREQ=MONTHLY;BYMONTHDAY=1"}

	next, err := r.NextRun(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), next)

	// an occurrence equal to "after" is not returned again
	next, err = r.NextRun(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), next)

	_, err = RecurringInvoice{StartDate: start, RRule: "NOT A RULE"}.NextRun(start)
	assert.Error(t, err)
}

func TestScheduledTaskNextDue(t *testing.T) {
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 2, 30, 0, 0, time.UTC)
	hourly := "FREQ=HOURLY;INTERVAL=1"

	tests := []struct {
		name string
		task ScheduledTask
		want time.Time
	}{
		{"one time keeps due", ScheduledTask{TaskType: ScheduledTaskTypeOneTime, Due: due}, due},
		{"recurring advances", ScheduledTask{TaskType: ScheduledTaskTypeRecurring, Due: due, RecurringInterval: &hourly}, due.Add(3 * time.Hour)},
		{"recurring without rule", ScheduledTask{TaskType: ScheduledTaskTypeRecurring, Due: due}, due},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.NextDue(now))
		})
	}
}

func TestPaymentSessionUsable(t *testing.T) {
	now := time.Now()
	assert.True(t, PaymentSession{IsActive: true, ExpiresAt: now.Add(time.Minute)}.Usable(now))
	assert.False(t, PaymentSession{IsActive: true, ExpiresAt: now.Add(-time.Minute)}.Usable(now))
	assert.False(t, PaymentSession{IsActive: false, ExpiresAt: now.Add(time.Minute)}.Usable(now))
}
