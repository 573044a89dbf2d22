package models

import (
	"time"

	"gorm.io/gorm"
)

type AuctionImage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuctionID uint           `gorm:"not null;index" json:"auction_id"`
	URL       string         `gorm:"size:512;not null" json:"url"`
	PublicID  string         `gorm:"size:255" json:"-"` // Cloudinary public ID for deletion
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AuctionImage) TableName() string {
	return "auction_images"
}
