package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletTransaction is an append-only ledger entry. Rows are created inside the
// same commit as the wallet mutation they record and are never updated or
// deleted; the wallet's balance pair can be reconstructed from them.
type WalletTransaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	WalletID  uint            `gorm:"not null;index" json:"wallet_id"`
	BidID     *uint           `gorm:"index" json:"bid_id"` // nil when not caused by a bid
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Kind      string          `gorm:"size:16;not null;index" json:"kind"` // FREEZE, UNFREEZE, DEBIT, CREDIT
	Reference string          `gorm:"size:64" json:"reference"`
	CreatedAt time.Time       `json:"created_at"`

	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
