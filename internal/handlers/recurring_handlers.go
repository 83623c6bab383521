package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"apartment_app_echo/internal/services"
)

type RecurringInvoiceHandler struct {
	recurring *services.RecurringInvoiceService
}

func NewRecurringInvoiceHandler(recurring *services.RecurringInvoiceService) *RecurringInvoiceHandler {
	return &RecurringInvoiceHandler{recurring: recurring}
}

func (h *RecurringInvoiceHandler) List(c echo.Context) error {
	list, err := h.recurring.List(c.Request().Context())
	if err != nil {
		return serviceError(c, err, msgErrRecurring)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":            true,
		"recurring_invoices": list,
	})
}

type createRecurringRequest struct {
	UserID       uint   `json:"user_id"`
	ApartmentID  uint   `json:"apartment_id"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description"`
	StartDate    string `json:"start_date"`
	RRule        string `json:"rrule"`
	DueAfterDays int    `json:"due_after_days"`
}

// Create registers a schedule such as "FREQ=MONTHLY;BYMONTHDAY=1"
func (h *RecurringInvoiceHandler) Create(c echo.Context) error {
	var req createRecurringRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	var start time.Time
	if req.StartDate != "" {
		d, err := parseDate(req.StartDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidDate)
		}
		start = d
	}

	rec, err := h.recurring.Create(c.Request().Context(), services.CreateRecurringInput{
		UserID:       req.UserID,
		ApartmentID:  req.ApartmentID,
		Type:         req.Type,
		Amount:       req.Amount,
		Description:  req.Description,
		StartDate:    start,
		RRule:        req.RRule,
		DueAfterDays: req.DueAfterDays,
	})
	if err != nil {
		return serviceError(c, err, msgErrRecurring)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":           true,
		"recurring_invoice": rec,
	})
}
