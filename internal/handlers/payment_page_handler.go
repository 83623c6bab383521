package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/services"
	"apartment_app_echo/internal/views"
)

// PaymentPageHandler renders the mock gateway page a payment URL points at
type PaymentPageHandler struct {
	invoices *services.InvoiceService
	payments *services.PaymentService
	appURL   string
}

func NewPaymentPageHandler(invoices *services.InvoiceService, payments *services.PaymentService, appURL string) *PaymentPageHandler {
	return &PaymentPageHandler{invoices: invoices, payments: payments, appURL: appURL}
}

func (h *PaymentPageHandler) Show(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	invoice, err := h.invoices.Get(ctx, id)
	if err != nil {
		return serviceError(c, err, msgErrGetInvoice)
	}
	userID := getUintFromContext(c, "userID")
	if invoice.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, msgNotInvoiceOwner)
	}

	returnURL := sameSiteURL(c.QueryParam("returnUrl"), h.appURL)

	props := views.PaymentPageProps{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		Description:   invoice.Description,
		Amount:        services.FormatCurrency(invoice.Amount),
		DueDate:       services.FormatDate(invoice.DueDate),
		StatusLabel:   services.StatusLabel(string(invoice.Status)),
		ReturnURL:     returnURL,
		AlreadyPaid:   invoice.Status == models.InvoiceStatusPaid,
	}

	if !props.AlreadyPaid {
		session, err := h.payments.InitiatePayment(ctx, services.InitiatePaymentInput{
			UserID:    userID,
			InvoiceID: invoice.ID,
			Gateway:   c.QueryParam("gateway"),
			ReturnURL: returnURL,
		})
		if err != nil {
			return serviceError(c, err, msgErrPaymentURL)
		}
		props.Gateway = session.PaymentGateway
		props.TransactionCode = session.TransactionCode
		props.QRCodeURL = session.QRCodeURL
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return views.PaymentPage(props).Render(ctx, c.Response())
}

// sameSiteURL keeps raw only when it is a local path or an absolute URL on
// the app's own origin; anything else falls back to the invoice list.
func sameSiteURL(raw, appURL string) string {
	fallback := strings.TrimSuffix(appURL, "/") + "/resident/invoices"

	// browsers read '\' as '/' and drop tabs and newlines
	if raw == "" || strings.Contains(raw, `\`) || strings.IndexFunc(raw, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0 {
		return fallback
	}
	target, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	if target.Scheme == "" && target.Host == "" {
		if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
			return raw
		}
		return fallback
	}

	app, err := url.Parse(appURL)
	if err != nil || app.Host == "" {
		return fallback
	}
	if target.User != nil || !strings.EqualFold(target.Scheme, app.Scheme) || !strings.EqualFold(target.Host, app.Host) {
		return fallback
	}
	return raw
}
