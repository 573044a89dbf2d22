package service

import (
	"context"
	"testing"
	"time"

	"gavel/internal/apperrors"
	"gavel/internal/domain"
	"gavel/internal/models"

	"github.com/stretchr/testify/require"
)

func TestSettleNoBids(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(-time.Minute))
	pub := &recordingPublisher{}
	svc := NewSettlementService(db, pub)

	settled, err := svc.RunBatch(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	got, err := db.Auctions().GetByID(auction.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuctionStatusEnded, got.Status)

	// No ledger activity at all: the seller never even gets a wallet.
	_, err = db.Wallets().GetByUserID(seller.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	events := pub.forTopic(domain.TopicEndAuction)
	require.Len(t, events, 1)
	require.Equal(t, seller.ID, events[0].UserID)
	require.Nil(t, events[0].Data["winner_id"])
	require.Nil(t, events[0].Data["winning_price"])
}

func TestSettleSingleBidPaysOwnAmount(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	bidder := seedBidder(t, db, "alice", 1000)
	auction := seedAuction(t, db, seller.ID, 150, domain.AuctionStatusActive, time.Now().Add(-time.Minute))
	bid := seedBid(t, db, auction.ID, bidder.ID, 200, time.Now().Add(-time.Hour))
	pub := &recordingPublisher{}

	settled, err := NewSettlementService(db, pub).RunBatch(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	// No second price exists; the sole bidder pays their own 200.
	w := wallet(t, db, bidder.ID)
	require.True(t, w.Balance.Equal(dec(800)))
	require.True(t, w.FrozenBalance.IsZero())

	sellerWallet := wallet(t, db, seller.ID)
	require.True(t, sellerWallet.Balance.Equal(dec(200)))

	got, err := db.Bids().GetByAuctionAndBidder(auction.ID, bidder.ID)
	require.NoError(t, err)
	require.True(t, got.IsWinningBid)
	require.Equal(t, bid.ID, got.ID)

	events := pub.forTopic(domain.TopicEndAuction)
	require.Len(t, events, 2) // seller and the bidder
	require.Equal(t, bidder.ID, events[0].Data["winner_id"])
	require.Equal(t, "200", events[0].Data["winning_price"])
}

func TestSettleSecondPrice(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	a := seedBidder(t, db, "a", 1000)
	b := seedBidder(t, db, "b", 1000)
	c := seedBidder(t, db, "c", 1000)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(-time.Minute))
	now := time.Now().Add(-time.Hour)
	seedBid(t, db, auction.ID, a.ID, 350, now)
	seedBid(t, db, auction.ID, b.ID, 250, now.Add(time.Minute))
	seedBid(t, db, auction.ID, c.ID, 200, now.Add(2*time.Minute))

	settled, err := NewSettlementService(db, &recordingPublisher{}).RunBatch(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	// Winner pays the second-highest amount.
	winner := wallet(t, db, a.ID)
	require.True(t, winner.Balance.Equal(dec(750)))
	require.True(t, winner.FrozenBalance.IsZero())

	// Losers get their full reservation back.
	for _, loser := range []uint{b.ID, c.ID} {
		w := wallet(t, db, loser)
		require.True(t, w.Balance.Equal(dec(1000)))
		require.True(t, w.FrozenBalance.IsZero())
	}

	// Seller receives exactly what the winner paid.
	require.True(t, wallet(t, db, seller.ID).Balance.Equal(dec(250)))

	winning, err := db.Bids().GetByAuctionAndBidder(auction.ID, a.ID)
	require.NoError(t, err)
	require.True(t, winning.IsWinningBid)
	losing, err := db.Bids().GetByAuctionAndBidder(auction.ID, b.ID)
	require.NoError(t, err)
	require.False(t, losing.IsWinningBid)
}

func TestSettleTieGoesToEarliestBid(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	early := seedBidder(t, db, "early", 1000)
	late := seedBidder(t, db, "late", 1000)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(-time.Minute))
	base := time.Now().Add(-time.Hour)
	// Insert the later bid first so winning cannot come from insertion order.
	seedBid(t, db, auction.ID, late.ID, 300, base.Add(time.Minute))
	seedBid(t, db, auction.ID, early.ID, 300, base)

	settled, err := NewSettlementService(db, &recordingPublisher{}).RunBatch(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	won, err := db.Bids().GetByAuctionAndBidder(auction.ID, early.ID)
	require.NoError(t, err)
	require.True(t, won.IsWinningBid)

	// Tied second price equals the winning amount.
	require.True(t, wallet(t, db, early.ID).Balance.Equal(dec(700)))
	require.True(t, wallet(t, db, late.ID).Balance.Equal(dec(1000)))
	require.True(t, wallet(t, db, seller.ID).Balance.Equal(dec(300)))
}

func TestSettleConservation(t *testing.T) {
	// Total money across all wallets is unchanged by settlement.
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	a := seedBidder(t, db, "a", 500)
	b := seedBidder(t, db, "b", 700)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(-time.Minute))
	now := time.Now().Add(-time.Hour)
	seedBid(t, db, auction.ID, a.ID, 400, now)
	seedBid(t, db, auction.ID, b.ID, 300, now.Add(time.Second))

	_, err := NewSettlementService(db, &recordingPublisher{}).RunBatch(context.Background(), time.Now())
	require.NoError(t, err)

	total := wallet(t, db, a.ID).Balance.
		Add(wallet(t, db, b.ID).Balance).
		Add(wallet(t, db, seller.ID).Balance)
	require.True(t, total.Equal(dec(1200)))
	require.True(t, wallet(t, db, a.ID).FrozenBalance.IsZero())
	require.True(t, wallet(t, db, b.ID).FrozenBalance.IsZero())
}

func TestSettleSkipsAuctionsNotYetDue(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	due := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(-time.Minute))
	open := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(time.Hour))

	settled, err := NewSettlementService(db, &recordingPublisher{}).RunBatch(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	gotDue, err := db.Auctions().GetByID(due.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuctionStatusEnded, gotDue.Status)
	gotOpen, err := db.Auctions().GetByID(open.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuctionStatusActive, gotOpen.Status)
}

func TestSettleFailureIsolation(t *testing.T) {
	// One broken auction must not abort the batch, and its own mutations must
	// roll back so it can be retried.
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	good := seedBidder(t, db, "good", 1000)
	ghost := seedUser(t, db, "ghost", domain.RoleBidder) // bidder without a wallet

	broken := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(-2*time.Minute))
	healthy := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(-time.Minute))
	now := time.Now().Add(-time.Hour)
	require.NoError(t, db.Bids().Create(&models.Bid{AuctionID: broken.ID, BidderID: ghost.ID, Amount: dec(500), CreatedAt: now}))
	seedBid(t, db, healthy.ID, good.ID, 200, now)

	settled, err := NewSettlementService(db, &recordingPublisher{}).RunBatch(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	gotBroken, err := db.Auctions().GetByID(broken.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuctionStatusActive, gotBroken.Status)

	gotHealthy, err := db.Auctions().GetByID(healthy.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuctionStatusEnded, gotHealthy.Status)
	require.True(t, wallet(t, db, good.ID).Balance.Equal(dec(800)))
}

func TestSettleSkipsAuctionClosedMidBatch(t *testing.T) {
	// Force-closed between listing and settling: the batch must not settle it
	// a second time.
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(-time.Minute))
	pub := &recordingPublisher{}
	svc := NewSettlementService(db, pub)

	auction.Status = domain.AuctionStatusEnded
	require.NoError(t, db.Auctions().Update(auction))

	out, err := svc.settleOne(context.Background(), auction.ID)
	require.NoError(t, err)
	require.True(t, out.skipped)
	require.Empty(t, pub.events)
}
