// Package model defines database models
package model

import (
	"time"

	"github.com/jvincentbasto/my-space/pkg/filetype"
)

// File is the metadata record of an uploaded object. Type and Extension are
// derived from Name once at upload and never edited on their own.
type File struct {
	ID          string        `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"not null" json:"name"`
	Type        filetype.Type `gorm:"index;not null" json:"type"`
	Extension   string        `json:"extension"`
	Size        int64         `json:"size"`
	Owner       string        `gorm:"index;not null" json:"owner"`
	AccountID   string        `json:"accountId"`
	Users       StringSlice   `json:"users"` // Emails the file is shared with
	URL         string        `json:"url"`
	BucketField string        `gorm:"uniqueIndex;not null" json:"bucketField"` // Object store key
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// SharedWith reports whether email is in the viewer list
func (f *File) SharedWith(email string) bool {
	for _, u := range f.Users {
		if u == email {
			return true
		}
	}

	return false
}
