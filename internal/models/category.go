package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Slug      string    `gorm:"size:140;uniqueIndex;not null" json:"slug"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
