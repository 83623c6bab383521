package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	authMiddleware "apartment_app_echo/internal/middleware"
)

// Handlers groups every HTTP handler so the server and tests share one route table
type Handlers struct {
	Auth        *AuthHandler
	Invoices    *InvoiceHandler
	Admin       *AdminInvoiceHandler
	Recurring   *RecurringInvoiceHandler
	Users       *UserHandler
	Preferences *UserPreferenceHandler
	Uploads     *UploadHandler
	PaymentPage *PaymentPageHandler
}

// Register mounts all routes; requireAuth resolves the caller for everything
// except login, logout and the health check.
func (hs *Handlers) Register(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/auth/login", hs.Auth.HandleLogin)
	e.POST("/auth/logout", hs.Auth.HandleLogout)

	e.GET("/payment/:id", hs.PaymentPage.Show, requireAuth)

	api := e.Group("/api", requireAuth)

	api.GET("/invoices", hs.Invoices.ListInvoices)
	api.GET("/invoices/:id", hs.Invoices.GetInvoice)
	api.GET("/invoices/:id/pdf", hs.Invoices.DownloadPDF)
	api.POST("/invoices/:id/payment-url", hs.Invoices.CreatePaymentURL)
	api.POST("/invoices/:id/confirm-payment", hs.Invoices.ConfirmPayment)
	api.GET("/transactions", hs.Invoices.ListTransactions)

	api.GET("/me/notification-preference", hs.Preferences.GetUserPreference)
	api.PUT("/me/notification-preference", hs.Preferences.UpdateUserPreference)

	upload := api.Group("/upload", echomw.BodyLimit("10M"))
	upload.POST("", hs.Uploads.Upload)
	upload.POST("/image", hs.Uploads.UploadImage)

	admin := api.Group("/admin", authMiddleware.RequireAdmin())
	admin.GET("/invoices", hs.Admin.ListInvoices)
	admin.POST("/invoices", hs.Admin.CreateInvoice)
	admin.GET("/invoices/stats", hs.Admin.Stats)
	admin.GET("/invoices/revenue", hs.Admin.Revenue)
	admin.GET("/recurring-invoices", hs.Recurring.List)
	admin.POST("/recurring-invoices", hs.Recurring.Create)
	admin.GET("/users", hs.Users.ListUsers)
	admin.GET("/apartments", hs.Users.ListApartments)
}
