package service

import (
	"context"
	"fmt"
	"strings"

	"gavel/internal/apperrors"
	"gavel/internal/domain"
	"gavel/internal/ledger"
	"gavel/internal/repository"

	"github.com/sirupsen/logrus"
)

// AdminService implements the administrative overrides: force-close (full
// refund, no winner) and the ban cascade. Both reuse the ledger primitives so
// refund arithmetic never diverges from settlement.
type AdminService struct {
	db  repository.DB
	pub Publisher
}

func NewAdminService(db repository.DB, pub Publisher) *AdminService {
	return &AdminService{db: db, pub: pub}
}

// ForceClose ends an Active auction with no winner. Every bid is fully
// released, no money changes ownership, and the auction carries a force-close
// marker that later permits permanent deletion.
func (s *AdminService) ForceClose(ctx context.Context, auctionID, adminID uint, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("force-close reason is required: %w", apperrors.ErrValidation)
	}

	var refunded []uint
	err := s.db.Atomic(ctx, func(store repository.Store) error {
		admin, err := store.Users().GetByID(adminID)
		if err != nil {
			return err
		}
		if !admin.IsAdmin() {
			return fmt.Errorf("user %d is not an administrator: %w", adminID, apperrors.ErrForbidden)
		}
		auction, err := store.Auctions().GetWithBids(auctionID)
		if err != nil {
			return err
		}
		if !auction.IsActive() {
			return fmt.Errorf("auction %d is %s: %w", auctionID, auction.Status, apperrors.ErrStateConflict)
		}

		lgr := ledger.New(store)
		for i := range auction.Bids {
			bid := &auction.Bids[i]
			wallet, err := store.Wallets().GetByUserIDForUpdate(bid.BidderID)
			if err != nil {
				return err
			}
			if err := lgr.Release(wallet, bid.Amount, &bid.ID); err != nil {
				return err
			}
			if err := store.Bids().SoftDelete(bid.ID); err != nil {
				return err
			}
			refunded = append(refunded, bid.BidderID)
		}

		auction.Status = domain.AuctionStatusEnded
		auction.ForceClosedBy = &adminID
		auction.ForceClosedReason = reason
		return store.Auctions().Update(auction)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"auction_id": auctionID,
		"admin_id":   adminID,
		"refunds":    len(refunded),
	}).Info("auction force-closed")
	data := map[string]interface{}{
		"auction_id":    auctionID,
		"winner_id":     nil,
		"winning_price": nil,
		"reason":        reason,
	}
	for _, bidderID := range refunded {
		s.pub.Publish(bidderID, domain.TopicEndAuction, data)
	}
	return nil
}

// BanUser removes a user from the marketplace as one saga: their standing
// bids are released and deleted, and every auction they sold is unwound with
// each counterparty bidder fully refunded. Auctions already Ended stay in
// place as audit history.
func (s *AdminService) BanUser(ctx context.Context, userID, adminID uint, reason string) error {
	var (
		refundedBidders []uint
		bannedName      string
	)
	err := s.db.Atomic(ctx, func(store repository.Store) error {
		admin, err := store.Users().GetByID(adminID)
		if err != nil {
			return err
		}
		if !admin.IsAdmin() {
			return fmt.Errorf("user %d is not an administrator: %w", adminID, apperrors.ErrForbidden)
		}
		target, err := store.Users().GetByID(userID)
		if err != nil {
			return err
		}
		if target.IsAdmin() {
			return fmt.Errorf("administrators cannot be banned: %w", apperrors.ErrForbidden)
		}
		if target.Banned {
			return fmt.Errorf("user %d is already banned: %w", userID, apperrors.ErrStateConflict)
		}
		bannedName = target.Username
		lgr := ledger.New(store)

		// Read phase: collect everything affected before mutating.
		ownBids, err := store.Bids().ListByBidder(userID)
		if err != nil {
			return err
		}
		soldAuctions, err := store.Auctions().ListBySeller(userID)
		if err != nil {
			return err
		}

		// The banned user's own reservations. Bids on Ended auctions were
		// already settled or refunded, so only live auctions carry frozen funds.
		for i := range ownBids {
			bid := &ownBids[i]
			auction, err := store.Auctions().GetByID(bid.AuctionID)
			if err != nil {
				return err
			}
			if auction.Status == domain.AuctionStatusEnded {
				continue
			}
			wallet, err := store.Wallets().GetByUserIDForUpdate(userID)
			if err != nil {
				return err
			}
			if err := lgr.Release(wallet, bid.Amount, &bid.ID); err != nil {
				return err
			}
			if err := store.Bids().SoftDelete(bid.ID); err != nil {
				return err
			}
		}

		// The banned user's auctions: refund every bidder, then drop the auction.
		for i := range soldAuctions {
			auction, err := store.Auctions().GetWithBids(soldAuctions[i].ID)
			if err != nil {
				return err
			}
			if auction.Status == domain.AuctionStatusEnded {
				continue
			}
			for j := range auction.Bids {
				bid := &auction.Bids[j]
				wallet, err := store.Wallets().GetByUserIDForUpdate(bid.BidderID)
				if err != nil {
					return err
				}
				if err := lgr.Release(wallet, bid.Amount, &bid.ID); err != nil {
					return err
				}
				if err := store.Bids().SoftDelete(bid.ID); err != nil {
					return err
				}
				refundedBidders = append(refundedBidders, bid.BidderID)
			}
			if err := store.Auctions().SoftDelete(auction.ID); err != nil {
				return err
			}
		}

		target.Banned = true
		return store.Users().Update(target)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"admin_id": adminID,
		"refunds":  len(refundedBidders),
	}).Info("user banned")
	s.pub.Publish(userID, domain.TopicBanUser, map[string]interface{}{
		"user_id": userID,
		"reason":  reason,
	})
	for _, bidderID := range refundedBidders {
		s.pub.Publish(bidderID, domain.TopicEndAuction, map[string]interface{}{
			"winner_id":     nil,
			"winning_price": nil,
			"reason":        fmt.Sprintf("seller %s was banned", bannedName),
		})
	}
	return nil
}
