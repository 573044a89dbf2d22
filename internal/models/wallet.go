package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a bidder's funds. FrozenBalance is the portion of Balance
// reserved against standing bids; Balance - FrozenBalance is available for new
// reservations. Both fields are mutated only by the ledger package.
type Wallet struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	FrozenBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"frozen_balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	User         User                `gorm:"foreignKey:UserID" json:"-"`
	Transactions []WalletTransaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// Available returns the balance not reserved against bids.
func (w *Wallet) Available() decimal.Decimal {
	return w.Balance.Sub(w.FrozenBalance)
}
