package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bid is one bidder's standing offer on one auction. At most one row exists
// per (auction, bidder); a second placement raises Amount in place. CreatedAt
// is the settlement tie-break key, so it keeps the time of the first placement.
type Bid struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AuctionID    uint            `gorm:"not null;index:idx_bids_auction_bidder,unique" json:"auction_id"`
	BidderID     uint            `gorm:"not null;index:idx_bids_auction_bidder,unique" json:"bidder_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	IsWinningBid bool            `gorm:"not null;default:false" json:"is_winning_bid"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	Auction Auction `gorm:"foreignKey:AuctionID" json:"-"`
	Bidder  User    `gorm:"foreignKey:BidderID" json:"-"`
}

func (Bid) TableName() string {
	return "bids"
}
