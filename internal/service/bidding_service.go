package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gavel/internal/apperrors"
	"gavel/internal/domain"
	"gavel/internal/ledger"
	"gavel/internal/models"
	"gavel/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BiddingService implements the fund-reservation protocol: a bid moves money
// from available to frozen on the bidder's wallet, and a second placement by
// the same bidder raises the existing bid, freezing only the difference.
type BiddingService struct {
	db  repository.DB
	pub Publisher
}

func NewBiddingService(db repository.DB, pub Publisher) *BiddingService {
	return &BiddingService{db: db, pub: pub}
}

// PlaceBid validates and records a bid, reserving funds atomically.
// Validation order, first failure wins: auction exists, bidder is not the
// seller, bidder is not an administrator, auction is Active, amount meets the
// baseline price, funds cover the reservation.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID uint, amount decimal.Decimal) (uint, error) {
	if auctionID == 0 || bidderID == 0 {
		return 0, fmt.Errorf("missing auction or bidder id: %w", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return 0, fmt.Errorf("non-positive bid amount: %w", apperrors.ErrValidation)
	}

	var (
		bidID      uint
		sellerID   uint
		bidderName string
		placedAt   time.Time
	)
	err := s.db.Atomic(ctx, func(store repository.Store) error {
		auction, err := store.Auctions().GetByID(auctionID)
		if err != nil {
			return err
		}
		bidder, err := store.Users().GetByID(bidderID)
		if err != nil {
			return err
		}
		if bidder.ID == auction.SellerID {
			return fmt.Errorf("seller cannot bid on own auction: %w", apperrors.ErrForbidden)
		}
		if bidder.IsAdmin() {
			return fmt.Errorf("administrators cannot bid: %w", apperrors.ErrForbidden)
		}
		if bidder.Banned {
			return fmt.Errorf("user %d is banned: %w", bidderID, apperrors.ErrForbidden)
		}
		if !auction.IsActive() {
			return fmt.Errorf("auction %d is %s: %w", auctionID, auction.Status, apperrors.ErrStateConflict)
		}
		if amount.LessThan(auction.BaselinePrice) {
			return fmt.Errorf("bid %s below baseline price %s: %w",
				amount, auction.BaselinePrice, apperrors.ErrValidation)
		}

		wallet, err := store.Wallets().GetByUserIDForUpdate(bidderID)
		if err != nil {
			return err
		}
		lgr := ledger.New(store)

		existing, err := store.Bids().GetByAuctionAndBidder(auctionID, bidderID)
		switch {
		case err == nil:
			// Raise: freeze only the difference; bids never decrease.
			if amount.LessThanOrEqual(existing.Amount) {
				return fmt.Errorf("bid %s does not raise current bid %s: %w",
					amount, existing.Amount, apperrors.ErrValidation)
			}
			delta := amount.Sub(existing.Amount)
			if wallet.Available().LessThan(delta) {
				return fmt.Errorf("available %s cannot cover raise of %s: %w",
					wallet.Available(), delta, apperrors.ErrInsufficientFunds)
			}
			if err := lgr.Reserve(wallet, delta, &existing.ID); err != nil {
				return err
			}
			existing.Amount = amount
			if err := store.Bids().Update(existing); err != nil {
				return err
			}
			bidID, placedAt = existing.ID, existing.CreatedAt
		case errors.Is(err, apperrors.ErrNotFound):
			if wallet.Available().LessThan(amount) {
				return fmt.Errorf("available %s cannot cover bid of %s: %w",
					wallet.Available(), amount, apperrors.ErrInsufficientFunds)
			}
			bid := &models.Bid{AuctionID: auctionID, BidderID: bidderID, Amount: amount}
			if err := store.Bids().Create(bid); err != nil {
				return err
			}
			if err := lgr.Reserve(wallet, amount, &bid.ID); err != nil {
				return err
			}
			bidID, placedAt = bid.ID, bid.CreatedAt
		default:
			return err
		}

		sellerID, bidderName = auction.SellerID, bidder.Username
		return nil
	})
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"auction_id": auctionID,
		"bid_id":     bidID,
		"bidder_id":  bidderID,
		"amount":     amount.String(),
	}).Info("bid placed")
	s.pub.Publish(sellerID, domain.TopicNewBid, map[string]interface{}{
		"auction_id":  auctionID,
		"bid_id":      bidID,
		"bidder_name": bidderName,
		"placed_at":   placedAt,
	})
	return bidID, nil
}

// ListForAuction returns the live bids on an auction, highest first.
func (s *BiddingService) ListForAuction(auctionID uint) ([]models.Bid, error) {
	return s.db.Bids().ListByAuction(auctionID)
}
