package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentSession is the mock payment reference handed to the client before confirmation
type PaymentSession struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	InvoiceID       uint      `gorm:"index" json:"invoice_id"`
	UserID          uint      `gorm:"index" json:"user_id"`
	PaymentGateway  string    `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	TransactionCode string    `gorm:"type:varchar(100);index" json:"transaction_code"`
	PaymentURL      string    `gorm:"type:text" json:"payment_url"`
	QRCodeURL       string    `gorm:"type:text" json:"qr_code_url"`
	Amount          int64     `json:"amount"`
	ExpiresAt       time.Time `json:"expires_at"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
}

func (s PaymentSession) Usable(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
