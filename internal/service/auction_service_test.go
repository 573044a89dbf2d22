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

func TestCreateAuction(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	svc := NewAuctionService(db)

	start := time.Now().Add(time.Hour)
	auction, err := svc.Create(context.Background(), seller.ID, CreateAuctionInput{
		Name:          "vintage clock",
		BaselinePrice: dec(100),
		StartTime:     start,
		EndTime:       start.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, domain.AuctionStatusActive, auction.Status)
	require.Equal(t, seller.ID, auction.SellerID)
	// Times are truncated to the minute.
	require.Zero(t, auction.EndTime.Second())
	require.Zero(t, auction.EndTime.Nanosecond())
}

func TestCreateAuctionValidation(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	bidder := seedBidder(t, db, "alice", 1000)
	svc := NewAuctionService(db)
	start := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		userID  uint
		input   CreateAuctionInput
		wantErr error
	}{
		{
			"bidder cannot sell",
			bidder.ID,
			CreateAuctionInput{Name: "x", BaselinePrice: dec(100), StartTime: start, EndTime: start.Add(time.Hour)},
			apperrors.ErrForbidden,
		},
		{
			"empty name",
			seller.ID,
			CreateAuctionInput{Name: "  ", BaselinePrice: dec(100), StartTime: start, EndTime: start.Add(time.Hour)},
			apperrors.ErrValidation,
		},
		{
			"non-positive baseline",
			seller.ID,
			CreateAuctionInput{Name: "x", BaselinePrice: dec(0), StartTime: start, EndTime: start.Add(time.Hour)},
			apperrors.ErrValidation,
		},
		{
			"end before start",
			seller.ID,
			CreateAuctionInput{Name: "x", BaselinePrice: dec(100), StartTime: start, EndTime: start.Add(-time.Hour)},
			apperrors.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.userID, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPauseAndResume(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(time.Hour))
	svc := NewAuctionService(db)

	require.NoError(t, svc.Pause(context.Background(), auction.ID, seller.ID))
	got, err := db.Auctions().GetByID(auction.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuctionStatusPaused, got.Status)

	// Pausing again conflicts.
	require.ErrorIs(t, svc.Pause(context.Background(), auction.ID, seller.ID), apperrors.ErrStateConflict)

	start := time.Now().Add(time.Hour)
	require.NoError(t, svc.Resume(context.Background(), auction.ID, seller.ID, start, start.Add(2*time.Hour)))
	got, err = db.Auctions().GetByID(auction.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AuctionStatusActive, got.Status)
}

func TestPauseRejectedOnceBidsExist(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	bidder := seedBidder(t, db, "alice", 1000)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(time.Hour))
	seedBid(t, db, auction.ID, bidder.ID, 150, time.Now())

	err := NewAuctionService(db).Pause(context.Background(), auction.ID, seller.ID)
	require.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestPauseRequiresOwnership(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	other := seedUser(t, db, "other", domain.RoleSeller)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(time.Hour))

	err := NewAuctionService(db).Pause(context.Background(), auction.ID, other.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestResumeRequiresFutureWindow(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusPaused, time.Now().Add(time.Hour))
	svc := NewAuctionService(db)

	past := time.Now().Add(-2 * time.Hour)
	err := svc.Resume(context.Background(), auction.ID, seller.ID, past, past.Add(time.Hour))
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateLockedOnceBidsExist(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	bidder := seedBidder(t, db, "alice", 1000)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(time.Hour))
	svc := NewAuctionService(db)

	name := "rarer clock"
	require.NoError(t, svc.Update(context.Background(), auction.ID, seller.ID, UpdateAuctionInput{Name: &name}))
	got, err := db.Auctions().GetByID(auction.ID)
	require.NoError(t, err)
	require.Equal(t, "rarer clock", got.Name)

	seedBid(t, db, auction.ID, bidder.ID, 150, time.Now())

	price := dec(500)
	err = svc.Update(context.Background(), auction.ID, seller.ID, UpdateAuctionInput{BaselinePrice: &price})
	require.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestDeleteGuards(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	bidder := seedBidder(t, db, "alice", 1000)
	svc := NewAuctionService(db)
	future := time.Now().Add(time.Hour)

	t.Run("paused with no bids is removed", func(t *testing.T) {
		auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusPaused, future)
		_, err := svc.Delete(context.Background(), auction.ID, seller.ID)
		require.NoError(t, err)
		_, err = db.Auctions().GetByID(auction.ID)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("paused with bids is retained", func(t *testing.T) {
		auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusPaused, future)
		seedBid(t, db, auction.ID, bidder.ID, 150, time.Now())
		_, err := svc.Delete(context.Background(), auction.ID, seller.ID)
		require.ErrorIs(t, err, apperrors.ErrStateConflict)
	})

	t.Run("active is retained", func(t *testing.T) {
		auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, future)
		_, err := svc.Delete(context.Background(), auction.ID, seller.ID)
		require.ErrorIs(t, err, apperrors.ErrStateConflict)
	})

	t.Run("ended by settlement is retained", func(t *testing.T) {
		auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusEnded, future)
		_, err := svc.Delete(context.Background(), auction.ID, seller.ID)
		require.ErrorIs(t, err, apperrors.ErrStateConflict)
	})

	t.Run("force-closed may be removed by an administrator", func(t *testing.T) {
		auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusEnded, future)
		auction.ForceClosedBy = &admin.ID
		auction.ForceClosedReason = "listing violation"
		require.NoError(t, db.Auctions().Update(auction))

		_, err := svc.Delete(context.Background(), auction.ID, admin.ID)
		require.NoError(t, err)
		_, err = db.Auctions().GetByID(auction.ID)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("only owner or administrator", func(t *testing.T) {
		auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusPaused, future)
		_, err := svc.Delete(context.Background(), auction.ID, bidder.ID)
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestDeleteReturnsImagePublicIDs(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusPaused, time.Now().Add(time.Hour))
	svc := NewAuctionService(db)

	require.NoError(t, db.Auctions().AddImage(&models.AuctionImage{
		AuctionID: auction.ID, URL: "https://img.example/1.jpg", PublicID: "gavel/auctions/1/img_a",
	}))
	require.NoError(t, db.Auctions().AddImage(&models.AuctionImage{
		AuctionID: auction.ID, URL: "https://img.example/2.jpg", PublicID: "gavel/auctions/1/img_b",
	}))

	publicIDs, err := svc.Delete(context.Background(), auction.ID, seller.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"gavel/auctions/1/img_a", "gavel/auctions/1/img_b"}, publicIDs)
	_, err = db.Auctions().GetByID(auction.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddImageLockedOnceBidsExist(t *testing.T) {
	db := newTestDB()
	seller := seedUser(t, db, "seller", domain.RoleSeller)
	bidder := seedBidder(t, db, "alice", 1000)
	auction := seedAuction(t, db, seller.ID, 100, domain.AuctionStatusActive, time.Now().Add(time.Hour))
	svc := NewAuctionService(db)

	require.NoError(t, svc.AddImage(context.Background(), auction.ID, seller.ID, "https://img.example/1.jpg", "pub-1"))
	got, err := db.Auctions().GetWithBids(auction.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)

	seedBid(t, db, auction.ID, bidder.ID, 150, time.Now())
	err = svc.AddImage(context.Background(), auction.ID, seller.ID, "https://img.example/2.jpg", "pub-2")
	require.ErrorIs(t, err, apperrors.ErrStateConflict)
}
