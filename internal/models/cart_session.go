package models

import (
	"time"

	"gorm.io/datatypes"
)

// CartSession backs the database cart store.
type CartSession struct {
	SessionID string         `gorm:"primaryKey;size:64"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"index"`
}
