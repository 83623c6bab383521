package models

import (
	"time"

	"gorm.io/gorm"
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction records a completed payment. Rows are written once and never updated.
type Transaction struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// at most one completed transaction per invoice
	InvoiceID       uint              `gorm:"uniqueIndex:idx_transactions_invoice_completed,where:status = 'completed'" json:"invoice_id"`
	UserID          uint              `gorm:"index" json:"user_id"`
	PaymentGateway  string            `gorm:"type:varchar(50)" json:"payment_gateway"`
	TransactionCode string            `gorm:"type:varchar(100);index" json:"transaction_code"`
	AmountPaid      int64             `json:"amount_paid"`
	Status          TransactionStatus `gorm:"type:varchar(20)" json:"status"`
	PaymentDate     time.Time         `json:"payment_date"`

	Invoice *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}
