package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

// RecurringInvoiceService manages invoice templates and turns due
// templates into invoices
type RecurringInvoiceService struct {
	db       *gorm.DB
	invoices *InvoiceService
	now      func() time.Time
}

func NewRecurringInvoiceService(db *gorm.DB, invoices *InvoiceService) *RecurringInvoiceService {
	return &RecurringInvoiceService{
		db:       db,
		invoices: invoices,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *RecurringInvoiceService) SetClock(now func() time.Time) {
	s.now = now
}

type CreateRecurringInput struct {
	UserID       uint
	ApartmentID  uint
	Type         string
	Amount       int64
	Description  string
	StartDate    time.Time
	RRule        string
	DueAfterDays int
}

func (s *RecurringInvoiceService) Create(ctx context.Context, in CreateRecurringInput) (*models.RecurringInvoice, error) {
	// reuse the invoice validation with a placeholder due date
	typ, err := CreateInvoiceInput{
		UserID:      in.UserID,
		ApartmentID: in.ApartmentID,
		Type:        in.Type,
		Amount:      in.Amount,
		DueDate:     in.StartDate,
	}.validate()
	if err != nil {
		return nil, err
	}
	if in.StartDate.IsZero() {
		return nil, newValidationError("start_date", "is required")
	}
	if in.DueAfterDays < 0 {
		return nil, newValidationError("due_after_days", "must not be negative")
	}

	tmpl := models.RecurringInvoice{
		UserID:       in.UserID,
		ApartmentID:  in.ApartmentID,
		ChargeType:   typ.String(),
		Amount:       in.Amount,
		Description:  strings.TrimSpace(in.Description),
		StartDate:    in.StartDate.UTC(),
		RRule:        strings.TrimSpace(in.RRule),
		DueAfterDays: in.DueAfterDays,
		IsActive:     true,
	}

	// the first run is the start date itself when it is an occurrence
	first, err := tmpl.NextRun(tmpl.StartDate.Add(-time.Second))
	if err != nil {
		return nil, newValidationError("rrule", err.Error())
	}
	if first.IsZero() {
		return nil, newValidationError("rrule", "has no occurrences")
	}
	tmpl.NextRunAt = first

	if err := s.db.WithContext(ctx).Create(&tmpl).Error; err != nil {
		return nil, fmt.Errorf("create recurring invoice: %w", err)
	}
	return &tmpl, nil
}

func (s *RecurringInvoiceService) List(ctx context.Context) ([]models.RecurringInvoice, error) {
	templates := []models.RecurringInvoice{}
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Apartment").
		Order("next_run_at ASC").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("list recurring invoices: %w", err)
	}
	return templates, nil
}

type GenerateResult struct {
	Created  int    `json:"created"`
	Failed   int    `json:"failed"`
	Invoices []uint `json:"invoice_ids"`
}

// GenerateDue creates one invoice per elapsed occurrence of each active
// template and advances NextRunAt past now.
func (s *RecurringInvoiceService) GenerateDue(ctx context.Context) (GenerateResult, error) {
	result := GenerateResult{Invoices: []uint{}}
	now := s.now()

	var templates []models.RecurringInvoice
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND next_run_at <= ?", true, now).
		Find(&templates).Error
	if err != nil {
		return result, fmt.Errorf("load due recurring invoices: %w", err)
	}

	log := logger.WithComponent("recurring")
	for _, tmpl := range templates {
		runAt := tmpl.NextRunAt
		for !runAt.IsZero() && !runAt.After(now) {
			invoice, err := s.invoices.Create(ctx, CreateInvoiceInput{
				UserID:      tmpl.UserID,
				ApartmentID: tmpl.ApartmentID,
				Type:        tmpl.ChargeType,
				Amount:      tmpl.Amount,
				DueDate:     runAt.AddDate(0, 0, tmpl.DueAfterDays),
				Description: tmpl.Description,
			})
			if err != nil {
				result.Failed++
				log.Error().Err(err).Uint("template_id", tmpl.ID).Msg("failed to generate invoice")
				break
			}
			result.Created++
			result.Invoices = append(result.Invoices, invoice.ID)

			next, err := tmpl.NextRun(runAt)
			if err != nil {
				return result, err
			}
			runAt = next

			updates := map[string]interface{}{"next_run_at": runAt}
			if runAt.IsZero() {
				updates["is_active"] = false
			}
			if err := s.db.WithContext(ctx).Model(&models.RecurringInvoice{}).Where("id = ?", tmpl.ID).Updates(updates).Error; err != nil {
				return result, fmt.Errorf("advance recurring invoice %d: %w", tmpl.ID, err)
			}
		}
	}
	return result, nil
}
