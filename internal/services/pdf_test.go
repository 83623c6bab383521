package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartment_app_echo/internal/models"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0 VND"},
		{999, "999 VND"},
		{1000, "1.000 VND"},
		{5_000_000, "5.000.000 VND"},
		{-1_234_567, "-1.234.567 VND"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.amount))
	}
}

func TestRenderInvoicePDF(t *testing.T) {
	paid := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	out, err := RenderInvoicePDF(&models.Invoice{
		InvoiceNumber: "INV-202603-000001",
		ChargeType:    "ELECTRICITY",
		Type:          models.InvoiceCategoryUtilities,
		Amount:        450_000,
		IssueDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PaidDate:      &paid,
		Status:        models.InvoiceStatusPaid,
		Description:   "Tiền điện tháng 3",
		User:          &models.User{Name: "Nguyễn Văn A", Email: "a@example.com"},
		Apartment:     &models.Apartment{ApartmentNumber: "A-101", Building: "A"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
