package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

const (
	paymentSessionTTL = 15 * time.Minute
	idempotencyTTL    = 24 * time.Hour
	idempotencyLock   = 30 * time.Second
)

type PaymentConfig struct {
	AppURL         string
	QRServiceURL   string
	DefaultGateway string
}

// PaymentService runs the mock payment flow: hand out a payment reference,
// then confirm it, marking the invoice paid and recording the transaction.
type PaymentService struct {
	db     *gorm.DB
	cache  *RedisCache
	config PaymentConfig
	now    func() time.Time
}

func NewPaymentService(db *gorm.DB, cache *RedisCache, cfg PaymentConfig) *PaymentService {
	if cfg.DefaultGateway == "" {
		cfg.DefaultGateway = "vnpay"
	}
	return &PaymentService{
		db:     db,
		cache:  cache,
		config: cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source, mainly for tests
func (s *PaymentService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *PaymentService) normalizeGateway(gateway string) string {
	gateway = strings.ToLower(strings.TrimSpace(gateway))
	if gateway == "" {
		return s.config.DefaultGateway
	}
	return gateway
}

type InitiatePaymentInput struct {
	UserID    uint
	InvoiceID uint
	Gateway   string
	ReturnURL string
}

// InitiatePayment returns a usable payment session for the invoice, reusing
// an unexpired one for the same gateway.
func (s *PaymentService) InitiatePayment(ctx context.Context, in InitiatePaymentInput) (*models.PaymentSession, error) {
	db := s.db.WithContext(ctx)

	var invoice models.Invoice
	err := db.First(&invoice, in.InvoiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice %d: %w", in.InvoiceID, err)
	}
	if invoice.UserID != in.UserID {
		return nil, ErrNotInvoiceOwner
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, ErrInvoiceAlreadyPaid
	}

	gateway := s.normalizeGateway(in.Gateway)
	now := s.now()

	var existing models.PaymentSession
	err = db.Where("invoice_id = ? AND user_id = ? AND payment_gateway = ? AND is_active = ? AND expires_at > ?",
		invoice.ID, in.UserID, gateway, true, now).
		Order("id DESC").
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load payment session: %w", err)
	}

	returnURL := strings.TrimSpace(in.ReturnURL)
	if returnURL == "" {
		returnURL = strings.TrimSuffix(s.config.AppURL, "/") + "/resident/invoices"
	}

	session := models.PaymentSession{
		InvoiceID:       invoice.ID,
		UserID:          in.UserID,
		PaymentGateway:  gateway,
		TransactionCode: fmt.Sprintf("TXN-%d", now.UnixMilli()),
		PaymentURL:      buildPaymentURL(invoice.ID, invoice.Amount, gateway, returnURL),
		QRCodeURL:       BuildQRCodeURL(s.config.QRServiceURL, gateway, invoice.Amount, invoice.ID, now),
		Amount:          invoice.Amount,
		ExpiresAt:       now.Add(paymentSessionTTL),
		IsActive:        true,
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}
	return &session, nil
}

func buildPaymentURL(invoiceID uint, amount int64, gateway, returnURL string) string {
	q := url.Values{}
	q.Set("amount", fmt.Sprint(amount))
	q.Set("gateway", gateway)
	q.Set("returnUrl", returnURL)
	return fmt.Sprintf("/payment/%d?%s", invoiceID, q.Encode())
}

// BuildQRCodeURL points at a third-party QR renderer. The encoded data is
// informational only; nothing server-side depends on it.
func BuildQRCodeURL(base, gateway string, amount int64, invoiceID uint, ts time.Time) string {
	data, _ := json.Marshal(struct {
		Gateway   string `json:"gateway"`
		Amount    int64  `json:"amount"`
		InvoiceID uint   `json:"invoiceId"`
		Timestamp int64  `json:"timestamp"`
	}{gateway, amount, invoiceID, ts.UnixMilli()})

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "size=300x300&data=" + url.QueryEscape(string(data))
}

type ConfirmPaymentInput struct {
	UserID          uint
	InvoiceID       uint
	Gateway         string
	TransactionCode string
	IdempotencyKey  string
}

type ConfirmPaymentResult struct {
	InvoiceID       uint                 `json:"invoice_id"`
	InvoiceStatus   models.InvoiceStatus `json:"invoice_status"`
	PaidDate        time.Time            `json:"paid_date"`
	TransactionID   uint                 `json:"transaction_id"`
	TransactionCode string               `json:"transaction_code"`
}

// ConfirmPayment marks the invoice paid and records its transaction in one
// database transaction. With an idempotency key and Redis configured, a
// repeated request returns the first result instead of failing.
func (s *PaymentService) ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (*ConfirmPaymentResult, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || s.cache == nil {
		return s.confirm(ctx, in)
	}

	log := logger.WithComponent("payments")
	resultKey := fmt.Sprintf("idem:confirm:%d:%d:%s", in.UserID, in.InvoiceID, key)

	var stored ConfirmPaymentResult
	if err := s.cache.Get(ctx, resultKey, &stored); err == nil {
		log.Info().Uint("invoice_id", in.InvoiceID).Str("idempotency_key", key).Msg("replaying confirmed payment")
		return &stored, nil
	}

	lockKey := resultKey + ":lock"
	acquired, err := s.cache.SetNX(ctx, lockKey, in.UserID, idempotencyLock)
	if err != nil {
		log.Warn().Err(err).Msg("idempotency lock unavailable, confirming without it")
		return s.confirm(ctx, in)
	}
	if !acquired {
		return nil, ErrRequestInProgress
	}
	defer func() {
		if err := s.cache.Delete(context.WithoutCancel(ctx), lockKey); err != nil {
			log.Warn().Err(err).Str("key", lockKey).Msg("failed to release idempotency lock")
		}
	}()

	result, err := s.confirm(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, resultKey, result, idempotencyTTL); err != nil {
		log.Warn().Err(err).Str("key", resultKey).Msg("failed to store idempotent result")
	}
	return result, nil
}

func (s *PaymentService) confirm(ctx context.Context, in ConfirmPaymentInput) (*ConfirmPaymentResult, error) {
	now := s.now()
	var result ConfirmPaymentResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, in.InvoiceID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		if err != nil {
			return err
		}
		if invoice.UserID != in.UserID {
			return ErrNotInvoiceOwner
		}
		if invoice.Status == models.InvoiceStatusPaid {
			return ErrInvoiceAlreadyPaid
		}

		gateway := strings.TrimSpace(in.Gateway)
		code := strings.TrimSpace(in.TransactionCode)
		if gateway == "" || code == "" {
			var session models.PaymentSession
			err := tx.Where("invoice_id = ? AND user_id = ? AND is_active = ?", invoice.ID, in.UserID, true).
				Order("id DESC").
				First(&session).Error
			if err == nil {
				if gateway == "" {
					gateway = session.PaymentGateway
				}
				if code == "" {
					code = session.TransactionCode
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		gateway = s.normalizeGateway(gateway)
		if code == "" {
			code = fmt.Sprintf("TXN-%d", now.UnixMilli())
		}

		// the status guard makes a concurrent second confirmation a no-op
		update := tx.Model(&models.Invoice{}).
			Where("id = ? AND status <> ?", invoice.ID, models.InvoiceStatusPaid).
			Updates(map[string]interface{}{
				"status":    models.InvoiceStatusPaid,
				"paid_date": now,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ErrInvoiceAlreadyPaid
		}

		txn := models.Transaction{
			InvoiceID:       invoice.ID,
			UserID:          in.UserID,
			PaymentGateway:  gateway,
			TransactionCode: code,
			AmountPaid:      invoice.Amount,
			Status:          models.TransactionStatusCompleted,
			PaymentDate:     now,
		}
		if err := tx.Create(&txn).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrInvoiceAlreadyPaid
			}
			return err
		}

		err = tx.Model(&models.PaymentSession{}).
			Where("invoice_id = ? AND is_active = ?", invoice.ID, true).
			Update("is_active", false).Error
		if err != nil {
			return err
		}

		paidDate := now
		if err := EnqueueEvent(tx, models.EventInvoicePaid, invoice.ID, InvoiceEvent{
			InvoiceID:       invoice.ID,
			InvoiceNumber:   invoice.InvoiceNumber,
			UserID:          invoice.UserID,
			Type:            string(invoice.Type),
			Amount:          invoice.Amount,
			Status:          string(models.InvoiceStatusPaid),
			PaidDate:        &paidDate,
			TransactionID:   txn.ID,
			TransactionCode: txn.TransactionCode,
			PaymentGateway:  txn.PaymentGateway,
		}); err != nil {
			return err
		}

		result = ConfirmPaymentResult{
			InvoiceID:       invoice.ID,
			InvoiceStatus:   models.InvoiceStatusPaid,
			PaidDate:        now,
			TransactionID:   txn.ID,
			TransactionCode: txn.TransactionCode,
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrNotInvoiceOwner), errors.Is(err, ErrInvoiceAlreadyPaid):
			return nil, err
		}
		return nil, fmt.Errorf("confirm payment for invoice %d: %w", in.InvoiceID, err)
	}

	invalidateInvoiceCache(ctx, s.cache)

	log := logger.WithComponent("payments")
	log.Info().
		Uint("invoice_id", result.InvoiceID).
		Uint("transaction_id", result.TransactionID).
		Str("transaction_code", result.TransactionCode).
		Msg("payment confirmed")
	return &result, nil
}
