package models

import (
	"time"

	"gavel/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Auction struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	SellerID          uint            `gorm:"not null;index" json:"seller_id"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	BaselinePrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"baseline_price"`
	StartTime         time.Time       `gorm:"not null" json:"start_time"`
	EndTime           time.Time       `gorm:"not null;index" json:"end_time"` // minute-truncated
	Status            string          `gorm:"size:16;not null;index" json:"status"`
	ForceClosedBy     *uint           `json:"force_closed_by"`
	ForceClosedReason string          `gorm:"size:255" json:"force_closed_reason"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	Seller User           `gorm:"foreignKey:SellerID" json:"-"`
	Bids   []Bid          `gorm:"foreignKey:AuctionID" json:"bids,omitempty"`
	Images []AuctionImage `gorm:"foreignKey:AuctionID" json:"images,omitempty"`
}

func (Auction) TableName() string {
	return "auctions"
}

func (a *Auction) IsActive() bool { return a.Status == domain.AuctionStatusActive }

// ForceClosed reports whether the auction was ended by an administrator rather
// than by expiry settlement. Only force-closed Ended auctions may be removed.
func (a *Auction) ForceClosed() bool { return a.ForceClosedBy != nil }
