// Package app wires configuration into the services shared by the server,
// the worker and the admin CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"apartment_app_echo/internal/config"
	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/services"
	"apartment_app_echo/internal/tasks"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *services.RedisCache

	Invoices  *services.InvoiceService
	Payments  *services.PaymentService
	Recurring *services.RecurringInvoiceService
	Notifier  *services.Notifier
	Relay     *services.OutboxRelay
	Email     *services.EmailService
	Whatsapp  *services.WahaService

	closers []io.Closer
}

// New connects to the database, migrates it and builds the services. Redis
// and RabbitMQ are optional: without them caching is skipped and outbox
// events are written to the log.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.WithComponent("app")

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	a := &App{Config: cfg, DB: db}

	if cfg.RedisURL != "" {
		cache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		} else {
			a.Cache = cache
			a.closers = append(a.closers, cache)
		}
	}

	var publisher services.Publisher = services.LogPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := services.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, outbox events will be logged only")
		} else {
			publisher = rabbit
			a.closers = append(a.closers, rabbit)
		}
	}

	a.Invoices = services.NewInvoiceService(db, a.Cache)
	a.Payments = services.NewPaymentService(db, a.Cache, services.PaymentConfig{
		AppURL:         cfg.AppURL,
		QRServiceURL:   cfg.QRServiceURL,
		DefaultGateway: cfg.DefaultPaymentGateway,
	})
	a.Recurring = services.NewRecurringInvoiceService(db, a.Invoices)
	a.Relay = services.NewOutboxRelay(db, publisher)

	a.Email = services.NewEmailService(cfg.SMTP)
	a.Whatsapp = services.NewWahaService(cfg.WahaBaseURL, cfg.WahaAPIKey, cfg.WhatsappCountryCode)

	var email services.EmailSender
	if a.Email.Configured() {
		email = a.Email
	} else {
		log.Warn().Msg("SMTP not configured, email reminders disabled")
	}
	var whatsapp services.WhatsappSender
	if cfg.WahaBaseURL != "" {
		whatsapp = a.Whatsapp
	}
	a.Notifier = services.NewNotifier(db, email, whatsapp)

	return a, nil
}

// Storage returns the upload backend selected by UPLOAD_BACKEND
func (a *App) Storage(ctx context.Context) (services.Storage, error) {
	if a.Config.UploadBackend == "minio" {
		return services.NewMinioStorage(ctx, a.Config.Minio)
	}
	return services.NewLocalStorage(a.Config.UploadDir), nil
}

// TaskEnv exposes the services to background task handlers
func (a *App) TaskEnv() *tasks.Env {
	return &tasks.Env{
		DB:        a.DB,
		Invoices:  a.Invoices,
		Recurring: a.Recurring,
		Notifier:  a.Notifier,
		Relay:     a.Relay,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (a *App) Close() {
	log := logger.WithComponent("app")
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close resource")
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
