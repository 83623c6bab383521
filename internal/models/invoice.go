package models

import (
	"time"

	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice is a billable obligation of a resident for one apartment.
// Status is paid exactly when PaidDate is set.
type Invoice struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	InvoiceNumber string          `gorm:"type:varchar(32);uniqueIndex" json:"invoice_number"`
	UserID        uint            `gorm:"index" json:"user_id"`
	ApartmentID   uint            `gorm:"index" json:"apartment_id"`
	Type          InvoiceCategory `gorm:"type:varchar(20);index" json:"type"`
	ChargeType    string          `gorm:"type:varchar(20)" json:"charge_type"`
	Amount        int64           `json:"amount"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `gorm:"index:idx_invoices_status_due,priority:2" json:"due_date"`
	PaidDate      *time.Time      `gorm:"index" json:"paid_date"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);default:'pending';index:idx_invoices_status_due,priority:1" json:"status"`
	Description   string          `gorm:"type:text" json:"description"`

	LastReminderAt *time.Time `json:"last_reminder_at,omitempty"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Apartment *Apartment `gorm:"foreignKey:ApartmentID" json:"apartment,omitempty"`
}

// IsAwaitingPayment reports whether the invoice can still be paid.
func (i Invoice) IsAwaitingPayment() bool {
	return i.Status == InvoiceStatusPending || i.Status == InvoiceStatusOverdue
}
