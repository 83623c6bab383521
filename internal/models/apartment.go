package models

import (
	"time"

	"gorm.io/gorm"
)

type Apartment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ApartmentNumber string `gorm:"type:varchar(20);index" json:"apartment_number"`
	Building        string `gorm:"type:varchar(50)" json:"building"`
	Floor           int    `json:"floor"`
}
