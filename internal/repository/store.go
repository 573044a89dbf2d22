package repository

import (
	"context"
	"time"

	"gavel/internal/models"
)

// Store is the set of persistence operations the services run against. A Store
// handed to an Atomic callback is bound to that transaction; the DB itself is
// also a Store for plain reads.
type Store interface {
	Users() UserStore
	Wallets() WalletStore
	Auctions() AuctionStore
	Bids() BidStore
	Transactions() TransactionStore
	Notifications() NotificationStore
}

// DB adds the unit of work. Every business operation (one bid placement, one
// auction's settlement, one force-close, one ban) runs inside exactly one
// Atomic call: either every mutation commits or none do.
type DB interface {
	Store
	Atomic(ctx context.Context, fn func(Store) error) error
}

type UserStore interface {
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Create(u *models.User) error
	Update(u *models.User) error
	SoftDelete(id uint) error
}

type WalletStore interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	// GetByUserIDForUpdate takes a row lock so concurrent placements by the
	// same bidder cannot observe a stale available balance.
	GetByUserIDForUpdate(userID uint) (*models.Wallet, error)
	GetOrCreate(userID uint) (*models.Wallet, error)
	Update(w *models.Wallet) error
}

type AuctionStore interface {
	GetByID(id uint) (*models.Auction, error)
	// GetWithBids loads the auction together with its live bids and images.
	GetWithBids(id uint) (*models.Auction, error)
	// ListDue returns Active auctions whose end time has passed.
	ListDue(now time.Time) ([]models.Auction, error)
	ListBySeller(sellerID uint) ([]models.Auction, error)
	List(status string, page, limit int) ([]models.Auction, int64, error)
	Create(a *models.Auction) error
	Update(a *models.Auction) error
	SoftDelete(id uint) error
	// HardDelete permanently removes the auction and its images and bids.
	HardDelete(id uint) error
	AddImage(img *models.AuctionImage) error
}

type BidStore interface {
	GetByAuctionAndBidder(auctionID, bidderID uint) (*models.Bid, error)
	ListByAuction(auctionID uint) ([]models.Bid, error)
	ListByBidder(bidderID uint) ([]models.Bid, error)
	Create(b *models.Bid) error
	Update(b *models.Bid) error
	SoftDelete(id uint) error
}

type TransactionStore interface {
	Create(t *models.WalletTransaction) error
	ListByWallet(walletID uint, limit, offset int) ([]models.WalletTransaction, int64, error)
}

type NotificationStore interface {
	Create(n *models.Notification) error
	ListByUser(userID uint, limit, offset int) ([]models.Notification, error)
	MarkRead(id, userID uint) error
}
