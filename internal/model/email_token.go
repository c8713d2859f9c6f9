package model

import "time"

// EmailToken is a one-time passcode challenge sent by email
type EmailToken struct {
	ID         int    `gorm:"primaryKey;autoIncrement"`
	AccountID  string `gorm:"index;not null"`
	SecretHash string `gorm:"not null"` // argon2id PHC string
	Attempts   int
	Used       bool
	UsedAt     *time.Time
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
