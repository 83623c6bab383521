package services

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

// InitDB opens the Postgres connection pool. Query logs go through zerolog.
func InitDB(dsn string) (*gorm.DB, error) {
	zl := logger.WithComponent("gorm")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(&zl, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.Exec(`SET TIME ZONE 'UTC'`).Error; err != nil {
		zl.Warn().Err(err).Msg("failed to set session time zone")
	}

	zl.Info().Msg("Database connection established")
	return db, nil
}

// AutoMigrate creates or updates the schema for every persisted model
func AutoMigrate(db *gorm.DB) error {
	log := logger.WithComponent("migrate")
	log.Info().Msg("Running database migrations...")

	err := db.AutoMigrate(
		&models.Apartment{},
		&models.User{},
		&models.UserNotifPreference{},
		&models.Invoice{},
		&models.InvoiceSequence{},
		&models.Transaction{},
		&models.PaymentSession{},
		&models.OutboxEvent{},
		&models.Image{},
		&models.RecurringInvoice{},
		&models.ScheduledTask{},
		&models.ScheduledTaskHistory{},
	)
	if err != nil {
		return err
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
