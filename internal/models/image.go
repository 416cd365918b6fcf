// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Image represents a gallery entry wrapping metadata and a reference to
// stored image bytes. CreatorID and CreatedAt are set once at creation and
// never change afterwards; LikeCount is a denormalized cache of the number
// of Like rows for this image.
type Image struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	ImagePath   string    `gorm:"not null" json:"image_path"`
	CreatorID   string    `gorm:"not null;index" json:"creator_id"`
	LikeCount   int       `gorm:"not null;default:0" json:"like_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Likes []Like `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"likes,omitempty"`
}
