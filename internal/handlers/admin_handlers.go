package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"apartment_app_echo/internal/services"
)

const dateLayout = "2006-01-02"

type AdminInvoiceHandler struct {
	invoices *services.InvoiceService
}

func NewAdminInvoiceHandler(invoices *services.InvoiceService) *AdminInvoiceHandler {
	return &AdminInvoiceHandler{invoices: invoices}
}

func (h *AdminInvoiceHandler) ListInvoices(c echo.Context) error {
	page, err := h.invoices.ListAll(c.Request().Context(), services.InvoiceFilter{
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		return serviceError(c, err, msgErrListInvoices)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"invoices":   page.Invoices,
		"pagination": page.Pagination,
	})
}

func (h *AdminInvoiceHandler) Stats(c echo.Context) error {
	stats, err := h.invoices.Stats(c.Request().Context())
	if err != nil {
		return serviceError(c, err, msgErrStats)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// Revenue reports paid revenue, optionally bounded by start_date and
// end_date (both YYYY-MM-DD, both inclusive).
func (h *AdminInvoiceHandler) Revenue(c echo.Context) error {
	var filter services.RevenueFilter

	if v := c.QueryParam("start_date"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidDate)
		}
		filter.From = &from
	}
	if v := c.QueryParam("end_date"); v != "" {
		end, err := time.Parse(dateLayout, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidDate)
		}
		to := end.AddDate(0, 0, 1)
		filter.To = &to
	}

	revenue, err := h.invoices.Revenue(c.Request().Context(), filter)
	if err != nil {
		return serviceError(c, err, msgErrRevenue)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"revenue": revenue,
	})
}

type createInvoiceRequest struct {
	UserID      uint   `json:"user_id"`
	ApartmentID uint   `json:"apartment_id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	DueDate     string `json:"due_date"`
	Description string `json:"description"`
}

// parseDate accepts a bare date or a full RFC 3339 timestamp
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (h *AdminInvoiceHandler) CreateInvoice(c echo.Context) error {
	var req createInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	var due time.Time
	if req.DueDate != "" {
		d, err := parseDate(req.DueDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidDate)
		}
		due = d
	}

	invoice, err := h.invoices.Create(c.Request().Context(), services.CreateInvoiceInput{
		UserID:      req.UserID,
		ApartmentID: req.ApartmentID,
		Type:        req.Type,
		Amount:      req.Amount,
		DueDate:     due,
		Description: req.Description,
	})
	if err != nil {
		return serviceError(c, err, msgErrCreateInvoice)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": msgInvoiceCreated,
		"invoice": invoice,
	})
}
