package service

import (
	"testing"
	"time"

	"gavel/internal/domain"
	"gavel/internal/models"
	"gavel/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestDB() *repository.MemoryDB { return repository.NewMemoryDB() }

// recordingPublisher captures Publish calls for assertions.
type recordingPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	UserID uint
	Topic  string
	Data   map[string]interface{}
}

func (r *recordingPublisher) Publish(userID uint, topic string, data map[string]interface{}) {
	r.events = append(r.events, publishedEvent{UserID: userID, Topic: topic, Data: data})
}

func (r *recordingPublisher) forTopic(topic string) []publishedEvent {
	var out []publishedEvent
	for _, e := range r.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

func seedUser(t *testing.T, db *repository.MemoryDB, username, role string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, db.Users().Create(u))
	return u
}

// seedBidder creates a bidder with a funded wallet.
func seedBidder(t *testing.T, db *repository.MemoryDB, username string, balance int64) *models.User {
	t.Helper()
	u := seedUser(t, db, username, domain.RoleBidder)
	w, err := db.Wallets().GetOrCreate(u.ID)
	require.NoError(t, err)
	w.Balance = decimal.NewFromInt(balance)
	require.NoError(t, db.Wallets().Update(w))
	return u
}

func seedAuction(t *testing.T, db *repository.MemoryDB, sellerID uint, baseline int64, status string, endTime time.Time) *models.Auction {
	t.Helper()
	a := &models.Auction{
		SellerID:      sellerID,
		Name:          "vintage clock",
		BaselinePrice: decimal.NewFromInt(baseline),
		StartTime:     endTime.Add(-24 * time.Hour),
		EndTime:       endTime,
		Status:        status,
	}
	require.NoError(t, db.Auctions().Create(a))
	return a
}

// seedBid places a bid row and freezes its amount, bypassing the service so
// tests can control CreatedAt for tie-break scenarios.
func seedBid(t *testing.T, db *repository.MemoryDB, auctionID, bidderID uint, amount int64, placedAt time.Time) *models.Bid {
	t.Helper()
	b := &models.Bid{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: placedAt,
	}
	require.NoError(t, db.Bids().Create(b))
	w, err := db.Wallets().GetByUserID(bidderID)
	require.NoError(t, err)
	w.FrozenBalance = w.FrozenBalance.Add(b.Amount)
	require.NoError(t, db.Wallets().Update(w))
	return b
}

func wallet(t *testing.T, db *repository.MemoryDB, userID uint) *models.Wallet {
	t.Helper()
	w, err := db.Wallets().GetByUserID(userID)
	require.NoError(t, err)
	return w
}

func transactionsByKind(t *testing.T, db *repository.MemoryDB, walletID uint) map[string][]models.WalletTransaction {
	t.Helper()
	txs, _, err := db.Transactions().ListByWallet(walletID, 0, 0)
	require.NoError(t, err)
	byKind := make(map[string][]models.WalletTransaction)
	for _, tx := range txs {
		byKind[tx.Kind] = append(byKind[tx.Kind], tx)
	}
	return byKind
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
