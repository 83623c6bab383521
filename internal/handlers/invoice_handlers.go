package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"apartment_app_echo/internal/services"
)

// InvoiceHandler serves the resident side of billing: listing, viewing and
// paying one's own invoices.
type InvoiceHandler struct {
	invoices *services.InvoiceService
	payments *services.PaymentService
}

func NewInvoiceHandler(invoices *services.InvoiceService, payments *services.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, payments: payments}
}

// ListInvoices returns the caller's invoices, newest due date first
func (h *InvoiceHandler) ListInvoices(c echo.Context) error {
	page, err := h.invoices.ListForUser(c.Request().Context(), getUintFromContext(c, "userID"), services.InvoiceFilter{
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

// GetInvoice is visible to its owner and to administrators
func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	invoice, err := h.invoices.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, msgErrGetInvoice)
	}
	if invoice.UserID != getUintFromContext(c, "userID") && !isAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, msgNoInvoiceAccess)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"invoice": invoice,
	})
}

func (h *InvoiceHandler) DownloadPDF(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	invoice, err := h.invoices.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, msgErrPDF)
	}
	if invoice.UserID != getUintFromContext(c, "userID") && !isAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, msgNoInvoiceAccess)
	}

	pdf, err := services.RenderInvoicePDF(invoice)
	if err != nil {
		return serviceError(c, err, msgErrPDF)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, invoice.InvoiceNumber))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *InvoiceHandler) ListTransactions(c echo.Context) error {
	page, err := h.invoices.ListTransactions(c.Request().Context(), getUintFromContext(c, "userID"),
		queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return serviceError(c, err, msgErrTransactions)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":      true,
		"transactions": page.Transactions,
		"pagination":   page.Pagination,
	})
}

type paymentURLRequest struct {
	PaymentGateway string `json:"payment_gateway"`
	ReturnURL      string `json:"return_url"`
}

// CreatePaymentURL starts the mock payment flow for an invoice
func (h *InvoiceHandler) CreatePaymentURL(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req paymentURLRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	session, err := h.payments.InitiatePayment(c.Request().Context(), services.InitiatePaymentInput{
		UserID:    getUintFromContext(c, "userID"),
		InvoiceID: id,
		Gateway:   req.PaymentGateway,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		return serviceError(c, err, msgErrPaymentURL)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"payment_url":      session.PaymentURL,
			"qr_code_url":      session.QRCodeURL,
			"transaction_code": session.TransactionCode,
			"payment_gateway":  session.PaymentGateway,
			"expires_at":       session.ExpiresAt,
		},
	})
}

type confirmPaymentRequest struct {
	PaymentGateway  string `json:"payment_gateway"`
	TransactionCode string `json:"transaction_code"`
}

// ConfirmPayment marks the invoice paid. An Idempotency-Key header makes
// retries of the same request return the original result.
func (h *InvoiceHandler) ConfirmPayment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req confirmPaymentRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
		}
	}

	result, err := h.payments.ConfirmPayment(c.Request().Context(), services.ConfirmPaymentInput{
		UserID:          getUintFromContext(c, "userID"),
		InvoiceID:       id,
		Gateway:         req.PaymentGateway,
		TransactionCode: req.TransactionCode,
		IdempotencyKey:  strings.TrimSpace(c.Request().Header.Get("Idempotency-Key")),
	})
	if err != nil {
		return serviceError(c, err, msgErrConfirmPayment)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": msgPaymentSuccess,
		"invoice": map[string]interface{}{
			"id":        result.InvoiceID,
			"status":    result.InvoiceStatus,
			"paid_date": result.PaidDate,
		},
		"transaction": map[string]interface{}{
			"id":               result.TransactionID,
			"transaction_code": result.TransactionCode,
		},
	})
}
