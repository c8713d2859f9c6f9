package model

import "time"

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Avatar    string    `json:"avatar"`
	AccountID string    `gorm:"index;not null" json:"accountId"`
	CreatedAt time.Time `json:"createdAt"`
}
