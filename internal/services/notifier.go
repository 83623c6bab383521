package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type WhatsappSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Notifier delivers overdue reminders on the channel each resident chose
type Notifier struct {
	db       *gorm.DB
	email    EmailSender
	whatsapp WhatsappSender
}

func NewNotifier(db *gorm.DB, email EmailSender, whatsapp WhatsappSender) *Notifier {
	return &Notifier{db: db, email: email, whatsapp: whatsapp}
}

// NotifyOverdue sends one reminder and reports the channel used. An empty
// channel means the resident opted out or cannot be reached.
func (n *Notifier) NotifyOverdue(ctx context.Context, invoice *models.Invoice) (models.NotificationChannel, error) {
	if invoice.User == nil {
		var user models.User
		if err := n.db.WithContext(ctx).First(&user, invoice.UserID).Error; err != nil {
			return "", fmt.Errorf("load user %d: %w", invoice.UserID, err)
		}
		invoice.User = &user
	}

	pref := models.UserNotifPreference{Channel: models.NotificationChannelEmail}
	err := n.db.WithContext(ctx).Where("user_id = ?", invoice.UserID).First(&pref).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("load notification preference: %w", err)
	}

	switch pref.Channel {
	case models.NotificationChannelWhatsapp:
		if n.whatsapp == nil {
			return "", nil
		}
		target := invoice.User.Phone
		if pref.WhatsappTargetType == models.WhatsappTargetTypeGroup && pref.WhatsappGroupID != "" {
			target = pref.WhatsappGroupID
		}
		if target == "" {
			return "", nil
		}
		if err := n.whatsapp.SendMessage(ctx, target, overdueText(invoice)); err != nil {
			return "", err
		}
		return models.NotificationChannelWhatsapp, nil

	case models.NotificationChannelEmail:
		if n.email == nil || invoice.User.Email == "" {
			return "", nil
		}
		subject := fmt.Sprintf("Hóa đơn %s đã quá hạn thanh toán", invoice.InvoiceNumber)
		if err := n.email.Send(ctx, invoice.User.Email, subject, overdueHTML(invoice)); err != nil {
			return "", err
		}
		return models.NotificationChannelEmail, nil
	}
	return "", nil
}

func overdueText(inv *models.Invoice) string {
	return fmt.Sprintf("Xin chào %s, hóa đơn %s (%s) đã quá hạn từ ngày %s. Vui lòng thanh toán sớm.",
		inv.User.Name, inv.InvoiceNumber, FormatCurrency(inv.Amount), FormatDate(inv.DueDate))
}

func overdueHTML(inv *models.Invoice) string {
	return fmt.Sprintf(`<p>Xin chào %s,</p>
<p>Hóa đơn <strong>%s</strong> với số tiền <strong>%s</strong> đã quá hạn từ ngày %s.</p>
<p>Vui lòng thanh toán sớm.</p>`,
		inv.User.Name, inv.InvoiceNumber, FormatCurrency(inv.Amount), FormatDate(inv.DueDate))
}

type ReminderResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SendOverdueReminders notifies residents of overdue invoices not reminded
// within the given interval, and queues an invoice.overdue event for each.
func (n *Notifier) SendOverdueReminders(ctx context.Context, now time.Time, every time.Duration, limit int) (ReminderResult, error) {
	var result ReminderResult
	if limit <= 0 {
		limit = 200
	}

	var invoices []models.Invoice
	err := n.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", models.InvoiceStatusOverdue).
		Where("last_reminder_at IS NULL OR last_reminder_at < ?", now.Add(-every)).
		Order("due_date ASC").
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return result, fmt.Errorf("load overdue invoices: %w", err)
	}

	log := logger.WithComponent("notifier")
	for i := range invoices {
		inv := &invoices[i]
		channel, err := n.NotifyOverdue(ctx, inv)
		if err != nil {
			log.Warn().Err(err).Uint("invoice_id", inv.ID).Uint("user_id", inv.UserID).Msg("failed to send overdue reminder")
			result.Failed++
			continue
		}
		if channel == "" {
			result.Skipped++
		} else {
			result.Sent++
		}

		err = n.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Update("last_reminder_at", now).Error; err != nil {
				return err
			}
			return EnqueueEvent(tx, models.EventInvoiceOverdue, inv.ID, InvoiceEvent{
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
				UserID:        inv.UserID,
				Type:          string(inv.Type),
				Amount:        inv.Amount,
				Status:        string(inv.Status),
				DueDate:       &inv.DueDate,
			})
		})
		if err != nil {
			return result, fmt.Errorf("record reminder for invoice %d: %w", inv.ID, err)
		}
	}
	return result, nil
}
