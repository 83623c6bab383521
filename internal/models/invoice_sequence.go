package models

import "time"

// InvoiceSequence holds the last invoice number handed out for a month (YYYYMM).
type InvoiceSequence struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	YearMonth string `gorm:"type:varchar(6);uniqueIndex" json:"year_month"`
	LastValue int64  `json:"last_value"`
}
