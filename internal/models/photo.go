package models

import "time"

// Photo is the metadata record for an uploaded image. The binary lives in
// object storage under "{Salt}.{Extension}"; rows are immutable after creation.
type Photo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BaseURL   string    `gorm:"not null" json:"base_url"`
	Salt      string    `gorm:"uniqueIndex;size:16;not null" json:"salt"`
	Extension string    `gorm:"not null" json:"extension"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	ItemID    *uint     `gorm:"index" json:"item_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// URL returns the full public location of the stored image.
func (p *Photo) URL() string {
	return p.BaseURL + "/" + p.Salt + "." + p.Extension
}
