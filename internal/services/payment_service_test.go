package services_test

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/services"
)

func newPaymentService(t *testing.T, cache *services.RedisCache) (*services.PaymentService, *fixtures) {
	t.Helper()
	f := newFixtures(t)
	svc := services.NewPaymentService(f.db, cache, services.PaymentConfig{
		AppURL:         "http://localhost:8080",
		QRServiceURL:   "https://api.qrserver.com/v1/create-qr-code/",
		DefaultGateway: "vnpay",
	})
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, f
}

func newMiniredisCache(t *testing.T) (*services.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return services.NewRedisCacheFromClient(client), mr
}

func countRows(t *testing.T, f *fixtures, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestConfirmPaymentSuccess(t *testing.T) {
	svc, f := newPaymentService(t, nil)
	inv := f.invoice(t, models.Invoice{Amount: 5_000_000, DueDate: fixedNow.AddDate(0, 0, -1), Status: models.InvoiceStatusOverdue})

	result, err := svc.ConfirmPayment(context.Background(), services.ConfirmPaymentInput{
		UserID:          f.resident.ID,
		InvoiceID:       inv.ID,
		Gateway:         "VNPAY",
		TransactionCode: "TXN-123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, result.InvoiceStatus)
	assert.Equal(t, "TXN-123", result.TransactionCode)

	stored := f.reload(t, inv.ID)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidDate)
	assert.True(t, stored.PaidDate.Equal(fixedNow))

	var txns []models.Transaction
	require.NoError(t, f.db.Where("invoice_id = ?", inv.ID).Find(&txns).Error)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(5_000_000), txns[0].AmountPaid)
	assert.Equal(t, "vnpay", txns[0].PaymentGateway)
	assert.Equal(t, models.TransactionStatusCompleted, txns[0].Status)
	assert.Equal(t, result.TransactionID, txns[0].ID)

	assert.Equal(t, int64(1), countRows(t, f, &models.OutboxEvent{}, "event_type = ? AND aggregate_id = ?", models.EventInvoicePaid, inv.ID))
}

func TestConfirmPaymentRejections(t *testing.T) {
	paidAt := fixedNow.AddDate(0, 0, -1)

	tests := []struct {
		name    string
		invoice models.Invoice
		caller  func(f *fixtures) uint
		missing bool
		wantErr error
	}{
		{
			name:    "not found",
			missing: true,
			caller:  func(f *fixtures) uint { return f.resident.ID },
			wantErr: services.ErrInvoiceNotFound,
		},
		{
			name:    "not owner",
			invoice: models.Invoice{Amount: 10, DueDate: fixedNow},
			caller:  func(f *fixtures) uint { return f.other.ID },
			wantErr: services.ErrNotInvoiceOwner,
		},
		{
			name:    "already paid",
			invoice: models.Invoice{Amount: 10, DueDate: fixedNow, Status: models.InvoiceStatusPaid, PaidDate: &paidAt},
			caller:  func(f *fixtures) uint { return f.resident.ID },
			wantErr: services.ErrInvoiceAlreadyPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f := newPaymentService(t, nil)
			id := uint(9999)
			var before models.Invoice
			if !tt.missing {
				inv := f.invoice(t, tt.invoice)
				id = inv.ID
				before = f.reload(t, id)
			}

			_, err := svc.ConfirmPayment(context.Background(), services.ConfirmPaymentInput{
				UserID: tt.caller(f), InvoiceID: id, Gateway: "momo", TransactionCode: "X",
			})
			assert.ErrorIs(t, err, tt.wantErr)

			// no writes
			assert.Zero(t, countRows(t, f, &models.Transaction{}, "invoice_id = ?", id))
			assert.Zero(t, countRows(t, f, &models.OutboxEvent{}, "event_type = ?", models.EventInvoicePaid))
			if !tt.missing {
				after := f.reload(t, id)
				assert.Equal(t, before.Status, after.Status)
				assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
			}
		})
	}
}

func TestConfirmPaymentTwiceKeepsOneTransaction(t *testing.T) {
	svc, f := newPaymentService(t, nil)
	inv := f.invoice(t, models.Invoice{Amount: 10, DueDate: fixedNow})
	in := services.ConfirmPaymentInput{UserID: f.resident.ID, InvoiceID: inv.ID, TransactionCode: "A"}

	_, err := svc.ConfirmPayment(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(context.Background(), in)
	assert.ErrorIs(t, err, services.ErrInvoiceAlreadyPaid)

	assert.Equal(t, int64(1), countRows(t, f, &models.Transaction{}, "invoice_id = ?", inv.ID))
}

func TestConfirmPaymentFallsBackToSession(t *testing.T) {
	svc, f := newPaymentService(t, nil)
	inv := f.invoice(t, models.Invoice{Amount: 700_000, DueDate: fixedNow.AddDate(0, 0, 3)})
	ctx := context.Background()

	session, err := svc.InitiatePayment(ctx, services.InitiatePaymentInput{
		UserID: f.resident.ID, InvoiceID: inv.ID, Gateway: "MoMo",
	})
	require.NoError(t, err)

	result, err := svc.ConfirmPayment(ctx, services.ConfirmPaymentInput{UserID: f.resident.ID, InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, session.TransactionCode, result.TransactionCode)

	var txn models.Transaction
	require.NoError(t, f.db.Where("invoice_id = ?", inv.ID).First(&txn).Error)
	assert.Equal(t, "momo", txn.PaymentGateway)

	assert.Zero(t, countRows(t, f, &models.PaymentSession{}, "invoice_id = ? AND is_active = ?", inv.ID, true))
}

func TestConfirmPaymentDefaults(t *testing.T) {
	svc, f := newPaymentService(t, nil)
	inv := f.invoice(t, models.Invoice{Amount: 1, DueDate: fixedNow})

	result, err := svc.ConfirmPayment(context.Background(), services.ConfirmPaymentInput{UserID: f.resident.ID, InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.TransactionCode, "TXN-"))

	var txn models.Transaction
	require.NoError(t, f.db.First(&txn, result.TransactionID).Error)
	assert.Equal(t, "vnpay", txn.PaymentGateway)
}

func TestConfirmPaymentIdempotencyKey(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	svc, f := newPaymentService(t, cache)
	inv := f.invoice(t, models.Invoice{Amount: 10, DueDate: fixedNow})
	ctx := context.Background()
	in := services.ConfirmPaymentInput{UserID: f.resident.ID, InvoiceID: inv.ID, TransactionCode: "T1", IdempotencyKey: "key-1"}

	first, err := svc.ConfirmPayment(ctx, in)
	require.NoError(t, err)

	replay, err := svc.ConfirmPayment(ctx, in)
	require.NoError(t, err, "replay returns the stored result")
	assert.Equal(t, first.TransactionID, replay.TransactionID)
	assert.Equal(t, int64(1), countRows(t, f, &models.Transaction{}, "invoice_id = ?", inv.ID))

	// a different key is a new request and hits the paid guard
	in.IdempotencyKey = "key-2"
	_, err = svc.ConfirmPayment(ctx, in)
	assert.ErrorIs(t, err, services.ErrInvoiceAlreadyPaid)

	// in-flight duplicate
	other := f.invoice(t, models.Invoice{Amount: 10, DueDate: fixedNow})
	lockKey := "idem:confirm:" + uintStr(f.resident.ID) + ":" + uintStr(other.ID) + ":key-3:lock"
	require.NoError(t, mr.Set(lockKey, "1"))
	_, err = svc.ConfirmPayment(ctx, services.ConfirmPaymentInput{UserID: f.resident.ID, InvoiceID: other.ID, IdempotencyKey: "key-3"})
	assert.ErrorIs(t, err, services.ErrRequestInProgress)
	assert.Equal(t, models.InvoiceStatusPending, f.reload(t, other.ID).Status)
}

func uintStr(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestInitiatePayment(t *testing.T) {
	svc, f := newPaymentService(t, nil)
	inv := f.invoice(t, models.Invoice{Amount: 1_500_000, DueDate: fixedNow.AddDate(0, 0, 5)})
	ctx := context.Background()

	session, err := svc.InitiatePayment(ctx, services.InitiatePaymentInput{UserID: f.resident.ID, InvoiceID: inv.ID, Gateway: "VNPAY"})
	require.NoError(t, err)
	assert.Equal(t, "vnpay", session.PaymentGateway)
	assert.Equal(t, "TXN-"+strconv.FormatInt(fixedNow.UnixMilli(), 10), session.TransactionCode)
	assert.True(t, session.ExpiresAt.Equal(fixedNow.Add(15*time.Minute)))

	u, err := url.Parse(session.PaymentURL)
	require.NoError(t, err)
	assert.Equal(t, "/payment/"+uintStr(inv.ID), u.Path)
	assert.Equal(t, "1500000", u.Query().Get("amount"))
	assert.Equal(t, "http://localhost:8080/resident/invoices", u.Query().Get("returnUrl"))

	again, err := svc.InitiatePayment(ctx, services.InitiatePaymentInput{UserID: f.resident.ID, InvoiceID: inv.ID, Gateway: "vnpay"})
	require.NoError(t, err)
	assert.Equal(t, session.ID, again.ID, "active session is reused")

	_, err = svc.InitiatePayment(ctx, services.InitiatePaymentInput{UserID: f.other.ID, InvoiceID: inv.ID})
	assert.ErrorIs(t, err, services.ErrNotInvoiceOwner)
}

func TestBuildQRCodeURL(t *testing.T) {
	ts := time.UnixMilli(1_700_000_000_000)
	raw := services.BuildQRCodeURL("https://api.qrserver.com/v1/create-qr-code/", "vnpay", 250_000, 7, ts)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "300x300", u.Query().Get("size"))

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(u.Query().Get("data")), &data))
	assert.Equal(t, "vnpay", data["gateway"])
	assert.Equal(t, float64(250_000), data["amount"])
	assert.Equal(t, float64(7), data["invoiceId"])
	assert.Equal(t, float64(1_700_000_000_000), data["timestamp"])
}
