package models

import (
	"time"

	"gorm.io/gorm"
)

// Image is an uploaded file and where it can be fetched from
type Image struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	URL         string `gorm:"type:text" json:"url"`
	ObjectKey   string `gorm:"type:varchar(255);index" json:"object_key"`
	Category    string `gorm:"type:varchar(50)" json:"category"`
	ContentType string `gorm:"type:varchar(50)" json:"content_type"`
	Size        int64  `json:"size"`
	UserID      uint   `gorm:"index" json:"user_id"`
}
