package models

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

// RecurringInvoice is a template the worker turns into invoices on an RRULE schedule
type RecurringInvoice struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID       uint      `gorm:"index" json:"user_id"`
	ApartmentID  uint      `json:"apartment_id"`
	ChargeType   string    `gorm:"type:varchar(20)" json:"charge_type"`
	Amount       int64     `json:"amount"`
	Description  string    `gorm:"type:text" json:"description"`
	StartDate    time.Time `json:"start_date"`
	RRule        string    `gorm:"type:text" json:"rrule"` // RFC 5545, e.g. FREQ=MONTHLY;BYMONTHDAY=1
	DueAfterDays int       `gorm:"default:10" json:"due_after_days"`
	NextRunAt    time.Time `gorm:"index" json:"next_run_at"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Apartment *Apartment `gorm:"foreignKey:ApartmentID" json:"apartment,omitempty"`
}

// NextRun returns the first occurrence strictly after the given time, or the
// zero time when the rule is exhausted.
func (r RecurringInvoice) NextRun(after time.Time) (time.Time, error) {
	rule, err := rrule.StrToRRule(r.RRule)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid rrule %q: %w", r.RRule, err)
	}
	rule.DTStart(r.StartDate)
	return rule.After(after, false), nil
}
