// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Authentication is session based:
// SessionToken authorizes API requests until SessionExpiresAt, and
// UpdateToken lets a client rotate an expired session without re-entering
// credentials. All three artifacts are replaced together on renewal.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"unique;not null" json:"email"`
	Password         string         `gorm:"not null" json:"-"`
	SessionToken     string         `gorm:"uniqueIndex;size:64" json:"-"`
	SessionExpiresAt time.Time      `json:"-"`
	UpdateToken      string         `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Items            []Item         `gorm:"foreignKey:UserID" json:"items,omitempty"`
}

// SessionActive reports whether the user's session token is still valid at now.
func (u *User) SessionActive(now time.Time) bool {
	return u.SessionToken != "" && now.Before(u.SessionExpiresAt)
}
