package models

import "time"

type Customer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"not null" json:"phone"`
	OIDCID       *string   `gorm:"column:oidc_id;uniqueIndex" json:"-"` // OpenID Connect identifier
	PasswordHash string    `json:"-"`
	IsStaff      bool      `gorm:"not null" json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}
