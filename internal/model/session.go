package model

import "time"

type Session struct {
	ID        string `gorm:"primaryKey"`
	AccountID string `gorm:"index;not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
}
