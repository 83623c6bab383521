package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

const (
	defaultInvoicePageSize     = 50
	defaultTransactionPageSize = 10
	maxPageSize                = 100

	invoiceNumberAttempts = 3

	invoiceCachePrefix = "invoices:"
	statsCacheKey      = invoiceCachePrefix + "stats"
	statsCacheTTL      = 30 * time.Second
	revenueCacheTTL    = 5 * time.Minute
)

// InvoiceService owns the invoice lifecycle outside of payment: the overdue
// sweep, listings, reporting and creation.
type InvoiceService struct {
	db    *gorm.DB
	cache *RedisCache
	now   func() time.Time
}

func NewInvoiceService(db *gorm.DB, cache *RedisCache) *InvoiceService {
	return &InvoiceService{
		db:    db,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source, mainly for tests
func (s *InvoiceService) SetClock(now func() time.Time) {
	s.now = now
}

// InvoiceFilter selects a page of invoices
type InvoiceFilter struct {
	Status string
	Page   int
	Limit  int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type InvoicePage struct {
	Invoices   []models.Invoice `json:"invoices"`
	Pagination Pagination       `json:"pagination"`
}

type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   Pagination           `json:"pagination"`
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
}

func validateStatusFilter(status string) error {
	switch models.InvoiceStatus(status) {
	case "", models.InvoiceStatusPending, models.InvoiceStatusPaid, models.InvoiceStatusOverdue:
		return nil
	}
	return newValidationError("status", "unknown invoice status")
}

// SweepOverdue moves every pending invoice whose due date has passed to
// overdue and returns how many rows changed. Paid invoices never match.
func (s *InvoiceService) SweepOverdue(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceStatusPending, s.now()).
		Update("status", models.InvoiceStatusOverdue)
	if result.Error != nil {
		return 0, fmt.Errorf("sweep overdue invoices: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log := logger.WithComponent("invoices")
		log.Info().Int64("count", result.RowsAffected).Msg("marked invoices overdue")
		s.invalidateCache(ctx)
	}
	return result.RowsAffected, nil
}

// ListForUser returns a resident's invoices, most distant due date first
func (s *InvoiceService) ListForUser(ctx context.Context, userID uint, filter InvoiceFilter) (*InvoicePage, error) {
	if err := validateStatusFilter(filter.Status); err != nil {
		return nil, err
	}
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, defaultInvoicePageSize)

	query := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	invoices := []models.Invoice{}
	err := query.
		Order("due_date DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return &InvoicePage{Invoices: invoices, Pagination: newPagination(page, limit, total)}, nil
}

// ListAll returns invoices of every resident with user and apartment loaded
func (s *InvoiceService) ListAll(ctx context.Context, filter InvoiceFilter) (*InvoicePage, error) {
	if err := validateStatusFilter(filter.Status); err != nil {
		return nil, err
	}
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, defaultInvoicePageSize)

	query := s.db.WithContext(ctx).Model(&models.Invoice{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	invoices := []models.Invoice{}
	err := query.
		Preload("User").
		Preload("Apartment").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return &InvoicePage{Invoices: invoices, Pagination: newPagination(page, limit, total)}, nil
}

// Get loads one invoice with its user and apartment
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).Preload("User").Preload("Apartment").First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice %d: %w", id, err)
	}
	return &invoice, nil
}

type InvoiceStats struct {
	TotalInvoices   int64 `json:"total_invoices"`
	PaidInvoices    int64 `json:"paid_invoices"`
	PendingInvoices int64 `json:"pending_invoices"`
	OverdueInvoices int64 `json:"overdue_invoices"`
	TotalAmount     int64 `json:"total_amount"`
	PaidAmount      int64 `json:"paid_amount"`
	PendingAmount   int64 `json:"pending_amount"`
	OverdueAmount   int64 `json:"overdue_amount"`
}

// Stats counts and sums invoices per status
func (s *InvoiceService) Stats(ctx context.Context) (*InvoiceStats, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}

	stats, err := GetOrSet(s.cache, ctx, statsCacheKey, statsCacheTTL, func() (InvoiceStats, error) {
		return s.computeStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *InvoiceService) computeStats(ctx context.Context) (InvoiceStats, error) {
	var rows []struct {
		Status string
		Count  int64
		Amount int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return InvoiceStats{}, fmt.Errorf("aggregate invoice stats: %w", err)
	}

	var stats InvoiceStats
	for _, row := range rows {
		stats.TotalInvoices += row.Count
		stats.TotalAmount += row.Amount
		switch models.InvoiceStatus(row.Status) {
		case models.InvoiceStatusPaid:
			stats.PaidInvoices, stats.PaidAmount = row.Count, row.Amount
		case models.InvoiceStatusPending:
			stats.PendingInvoices, stats.PendingAmount = row.Count, row.Amount
		case models.InvoiceStatusOverdue:
			stats.OverdueInvoices, stats.OverdueAmount = row.Count, row.Amount
		}
	}
	return stats, nil
}

// RevenueFilter bounds the paid date: From inclusive, To exclusive
type RevenueFilter struct {
	From *time.Time
	To   *time.Time
}

type MonthlyRevenue struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Total int64 `json:"total"`
	Count int   `json:"count"`
}

// RevenueSummary always satisfies Total == RentRevenue + UtilityRevenue + ServiceRevenue
type RevenueSummary struct {
	Total          int64            `json:"total"`
	RentRevenue    int64            `json:"rent_revenue"`
	UtilityRevenue int64            `json:"utility_revenue"`
	ServiceRevenue int64            `json:"service_revenue"`
	Monthly        []MonthlyRevenue `json:"monthly"`
}

// Revenue summarizes paid invoices by category and by month of payment
func (s *InvoiceService) Revenue(ctx context.Context, filter RevenueFilter) (*RevenueSummary, error) {
	key := revenueCacheKey(filter)
	summary, err := GetOrSet(s.cache, ctx, key, revenueCacheTTL, func() (RevenueSummary, error) {
		return s.computeRevenue(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func revenueCacheKey(filter RevenueFilter) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return invoiceCachePrefix + "revenue:" + bound(filter.From) + ":" + bound(filter.To)
}

func (s *InvoiceService) computeRevenue(ctx context.Context, filter RevenueFilter) (RevenueSummary, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("type", "amount", "paid_date").
		Where("status = ?", models.InvoiceStatusPaid)
	if filter.From != nil {
		query = query.Where("paid_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("paid_date < ?", filter.To.UTC())
	}

	var paid []models.Invoice
	if err := query.Find(&paid).Error; err != nil {
		return RevenueSummary{}, fmt.Errorf("load paid invoices: %w", err)
	}

	summary := RevenueSummary{Monthly: []MonthlyRevenue{}}
	months := map[[2]int]*MonthlyRevenue{}
	for _, inv := range paid {
		summary.Total += inv.Amount
		switch inv.Type {
		case models.InvoiceCategoryRent:
			summary.RentRevenue += inv.Amount
		case models.InvoiceCategoryUtilities:
			summary.UtilityRevenue += inv.Amount
		default:
			summary.ServiceRevenue += inv.Amount
		}

		if inv.PaidDate == nil {
			continue
		}
		paidAt := inv.PaidDate.UTC()
		k := [2]int{paidAt.Year(), int(paidAt.Month())}
		m, ok := months[k]
		if !ok {
			m = &MonthlyRevenue{Year: k[0], Month: k[1]}
			months[k] = m
		}
		m.Total += inv.Amount
		m.Count++
	}

	for _, m := range months {
		summary.Monthly = append(summary.Monthly, *m)
	}
	sort.Slice(summary.Monthly, func(i, j int) bool {
		a, b := summary.Monthly[i], summary.Monthly[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})
	return summary, nil
}

// CreateInvoiceInput is what an administrator submits to bill a resident
type CreateInvoiceInput struct {
	UserID      uint
	ApartmentID uint
	Type        string
	Amount      int64
	DueDate     time.Time
	Description string
}

func (in CreateInvoiceInput) validate() (models.InvoiceType, error) {
	if in.UserID == 0 {
		return 0, newValidationError("user_id", "is required")
	}
	if in.ApartmentID == 0 {
		return 0, newValidationError("apartment_id", "is required")
	}
	typ, err := models.ParseInvoiceType(in.Type)
	if err != nil {
		return 0, newValidationError("type", "must be one of RENT, ELECTRICITY, WATER, INTERNET, SERVICE, REPAIR, PARKING, OTHER")
	}
	if in.Amount <= 0 {
		return 0, newValidationError("amount", "must be a positive integer")
	}
	if in.DueDate.IsZero() {
		return 0, newValidationError("due_date", "is required")
	}
	return typ, nil
}

// Create inserts a pending invoice with a freshly allocated number. The number
// comes from a per-month sequence row locked for the duration of the insert;
// a unique violation (e.g. a number inserted by hand) is retried.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	typ, err := in.validate()
	if err != nil {
		return nil, err
	}

	log := logger.WithComponent("invoices")
	var invoice models.Invoice
	for attempt := 1; attempt <= invoiceNumberAttempts; attempt++ {
		now := s.now()
		invoice = models.Invoice{
			UserID:      in.UserID,
			ApartmentID: in.ApartmentID,
			Type:        typ.Category(),
			ChargeType:  typ.String(),
			Amount:      in.Amount,
			IssueDate:   now,
			DueDate:     in.DueDate.UTC(),
			Status:      models.InvoiceStatusPending,
			Description: strings.TrimSpace(in.Description),
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := nextInvoiceNumber(tx, now)
			if err != nil {
				return err
			}
			invoice.InvoiceNumber = number

			if err := tx.Create(&invoice).Error; err != nil {
				return err
			}

			return EnqueueEvent(tx, models.EventInvoiceCreated, invoice.ID, InvoiceEvent{
				InvoiceID:     invoice.ID,
				InvoiceNumber: invoice.InvoiceNumber,
				UserID:        invoice.UserID,
				Type:          string(invoice.Type),
				Amount:        invoice.Amount,
				Status:        string(invoice.Status),
				DueDate:       &invoice.DueDate,
			})
		})
		if err == nil {
			break
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("create invoice: %w", err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("invoice number collision, retrying")
	}
	if err != nil {
		return nil, fmt.Errorf("create invoice after %d attempts: %w", invoiceNumberAttempts, err)
	}

	s.invalidateCache(ctx)
	log.Info().
		Uint("invoice_id", invoice.ID).
		Str("invoice_number", invoice.InvoiceNumber).
		Str("type", invoice.ChargeType).
		Msg("invoice created")
	return &invoice, nil
}

// nextInvoiceNumber allocates INV-YYYYMM-NNNNNN from the month's sequence row.
func nextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	yearMonth := now.Format("200601")

	seed := models.InvoiceSequence{YearMonth: yearMonth}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return "", fmt.Errorf("seed invoice sequence: %w", err)
	}

	var seq models.InvoiceSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year_month = ?", yearMonth).
		First(&seq).Error
	if err != nil {
		return "", fmt.Errorf("lock invoice sequence: %w", err)
	}

	seq.LastValue++
	if err := tx.Model(&seq).Update("last_value", seq.LastValue).Error; err != nil {
		return "", fmt.Errorf("advance invoice sequence: %w", err)
	}

	return fmt.Sprintf("INV-%s-%06d", yearMonth, seq.LastValue), nil
}

// ListTransactions returns a resident's payments, newest first
func (s *InvoiceService) ListTransactions(ctx context.Context, userID uint, page, limit int) (*TransactionPage, error) {
	page, limit = normalizePage(page, limit, defaultTransactionPageSize)

	query := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	transactions := []models.Transaction{}
	err := query.
		Preload("Invoice").
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &TransactionPage{Transactions: transactions, Pagination: newPagination(page, limit, total)}, nil
}

func (s *InvoiceService) invalidateCache(ctx context.Context) {
	invalidateInvoiceCache(ctx, s.cache)
}

func invalidateInvoiceCache(ctx context.Context, cache *RedisCache) {
	if err := cache.DeletePrefix(ctx, invoiceCachePrefix); err != nil {
		log := logger.WithComponent("invoices")
		log.Warn().Err(err).Msg("failed to invalidate invoice cache")
	}
}
