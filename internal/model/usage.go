package model

import (
	"time"

	"github.com/jvincentbasto/my-space/pkg/filetype"
)

// UsageBucket is the storage used by one file type
type UsageBucket struct {
	Size       int64     `json:"size"`
	LatestDate time.Time `json:"latestDate,omitzero"`
}

// Usage is derived from a user's files and never stored
type Usage struct {
	Document UsageBucket `json:"document"`
	Image    UsageBucket `json:"image"`
	Video    UsageBucket `json:"video"`
	Audio    UsageBucket `json:"audio"`
	Other    UsageBucket `json:"other"`
	Used     int64       `json:"used"`
	All      int64       `json:"all"`
}

// Bucket returns the bucket for t. Unknown types land in Other.
func (u *Usage) Bucket(t filetype.Type) *UsageBucket {
	switch t {
	case filetype.Document:
		return &u.Document
	case filetype.Image:
		return &u.Image
	case filetype.Video:
		return &u.Video
	case filetype.Audio:
		return &u.Audio
	default:
		return &u.Other
	}
}
