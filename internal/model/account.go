package model

import "time"

// Account is the authentication identity an email maps to. It exists before
// the first login completes; ExpiresAt is cleared once a session is created.
type Account struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	ExpiresAt *time.Time

	EmailTokens []EmailToken `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Sessions    []Session    `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}
