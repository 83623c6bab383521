// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/services"
)

// NewDB returns a migrated, private SQLite database. A single connection
// keeps the in-memory database alive and serializes transactions.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, services.AutoMigrate(db))
	return db
}

func CreateApartment(t *testing.T, db *gorm.DB, number string) *models.Apartment {
	t.Helper()
	apt := &models.Apartment{ApartmentNumber: number, Building: "A", Floor: 1}
	require.NoError(t, db.Create(apt).Error)
	return apt
}

func CreateUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:        name,
		Email:       fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Phone:       "0912345678",
		Role:        role,
		FirebaseUID: uuid.NewString(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateInvoice inserts inv as given, filling a unique number when empty
func CreateInvoice(t *testing.T, db *gorm.DB, inv models.Invoice) *models.Invoice {
	t.Helper()
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = "TEST-" + uuid.NewString()[:12]
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusPending
	}
	if inv.Type == "" {
		inv.Type = models.InvoiceCategoryRent
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = time.Now().UTC()
	}
	require.NoError(t, db.Create(&inv).Error)
	return &inv
}
