package repository

import (
	"context"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) Users() UserStore                 { return &userRepo{db: s.db} }
func (s *gormStore) Wallets() WalletStore             { return &walletRepo{db: s.db} }
func (s *gormStore) Auctions() AuctionStore           { return &auctionRepo{db: s.db} }
func (s *gormStore) Bids() BidStore                   { return &bidRepo{db: s.db} }
func (s *gormStore) Transactions() TransactionStore   { return &transactionRepo{db: s.db} }
func (s *gormStore) Notifications() NotificationStore { return &notificationRepo{db: s.db} }

type gormDB struct {
	gormStore
}

// NewDB wraps a gorm connection in the Store/unit-of-work interfaces.
func NewDB(db *gorm.DB) DB {
	return &gormDB{gormStore{db: db}}
}

func (d *gormDB) Atomic(ctx context.Context, fn func(Store) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
