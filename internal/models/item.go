package models

import (
	"time"

	"gorm.io/gorm"
)

// Item represents a single bucket-list entry.
type Item struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Location     string     `json:"location,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Note         string     `gorm:"type:text" json:"note,omitempty"`
	IsExperience bool       `json:"is_experience"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user"`
	Photo        *Photo     `gorm:"foreignKey:ItemID" json:"photo,omitempty"`
	// LikesCount is not persisted; computed at query time from the likes table
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this item (computed)
	Liked bool `gorm:"->" json:"liked"`
	// LikedBy is populated only on detail reads
	LikedBy   []User         `gorm:"-" json:"liked_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
