package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole distinguishes building staff from residents
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleResident UserRole = "resident"
)

// User is a resident or administrator, linked to a Firebase identity
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string   `gorm:"type:varchar(255)" json:"name"`
	Phone       string   `gorm:"type:varchar(50)" json:"phone"`
	Email       string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Role        UserRole `gorm:"type:varchar(20);default:'resident'" json:"role"`
	FirebaseUID string   `gorm:"type:varchar(128);uniqueIndex" json:"-"`

	ApartmentID *uint      `gorm:"index" json:"apartment_id,omitempty"`
	Apartment   *Apartment `gorm:"foreignKey:ApartmentID" json:"apartment,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
