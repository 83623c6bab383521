package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"apartment_app_echo/internal/app"
	"apartment_app_echo/internal/config"
	"apartment_app_echo/internal/handlers"
	"apartment_app_echo/internal/logger"
	authMiddleware "apartment_app_echo/internal/middleware"
	"apartment_app_echo/internal/services"
)

func main() {
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Firebase is optional locally; every authenticated route answers 401 without it
	authClient, err := services.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Warn().Err(err).Msg("Firebase initialization failed, auth features will not work")
	}

	storage, err := application.Storage(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload storage")
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l := logger.WithComponent("http")
			l.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.UploadBackend == "local" {
		e.Static("/uploads", cfg.UploadDir)
	}

	hs := &handlers.Handlers{
		Invoices:    handlers.NewInvoiceHandler(application.Invoices, application.Payments),
		Admin:       handlers.NewAdminInvoiceHandler(application.Invoices),
		Recurring:   handlers.NewRecurringInvoiceHandler(application.Recurring),
		Users:       handlers.NewUserHandler(application.DB, application.Cache),
		Preferences: handlers.NewUserPreferenceHandler(application.DB),
		Uploads:     handlers.NewUploadHandler(services.NewUploadService(application.DB, storage)),
		PaymentPage: handlers.NewPaymentPageHandler(application.Invoices, application.Payments, cfg.AppURL),
	}

	// keep the interfaces nil when Firebase is missing
	var verifier authMiddleware.TokenVerifier
	var issuer handlers.SessionIssuer
	if authClient != nil {
		verifier = authClient
		issuer = authClient
	}
	hs.Auth = handlers.NewAuthHandler(issuer, cfg.IsProduction())
	hs.Register(e, authMiddleware.RequireAuth(verifier, application.DB))

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
