package models

import "time"

// Like represents a user's like on an item.
// The combination of UserID and ItemID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_item" json:"user_id"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_user_item" json:"item_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user"`
	Item Item `gorm:"foreignKey:ItemID" json:"item"`
}
