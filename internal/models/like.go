package models

import (
	"time"
)

// Like represents a single user's endorsement of one image.
// The combination of ImageID and UserID must be unique; the composite
// index is the storage-level guard against double-likes under races.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageID   uint      `gorm:"not null;uniqueIndex:idx_image_user" json:"image_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_image_user" json:"user_id"`
	CreatedAt time.Time `json:"liked_date"`
}
