package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gavel/internal/domain"
	"gavel/internal/ledger"
	"gavel/internal/models"
	"gavel/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SettlementService closes expired auctions. Each auction settles inside its
// own atomic commit under a second-price rule:
//
//	no bids   - auction ends, no ledger activity
//	one bid   - winner pays their own amount
//	multiple  - highest bid wins, pays the second-highest amount; ties go to
//	            the earlier bid; every loser is fully refunded
//
// A failure settling one auction never aborts the rest of the batch; the
// auction stays Active and is retried on the next run.
type SettlementService struct {
	db  repository.DB
	pub Publisher
}

func NewSettlementService(db repository.DB, pub Publisher) *SettlementService {
	return &SettlementService{db: db, pub: pub}
}

// settlementOutcome carries what to publish once a settlement has committed.
type settlementOutcome struct {
	auctionID    uint
	sellerID     uint
	winnerID     uint // 0 when no winner
	winningPrice decimal.Decimal
	bidderIDs    []uint
	skipped      bool
}

// RunBatch settles every Active auction whose end time is at or before now and
// returns how many were settled. The caller injects now so the batch can be
// driven without a real scheduler.
func (s *SettlementService) RunBatch(ctx context.Context, now time.Time) (int, error) {
	due, err := s.db.Auctions().ListDue(now)
	if err != nil {
		return 0, fmt.Errorf("settlement: list due auctions: %w", err)
	}

	settled := 0
	for _, auction := range due {
		outcome, err := s.settleOne(ctx, auction.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{"auction_id": auction.ID}).
				WithError(err).Error("settlement failed, auction left active for retry")
			continue
		}
		if outcome.skipped {
			continue
		}
		settled++
		s.publishEnd(outcome)
	}
	logrus.WithFields(logrus.Fields{"due": len(due), "settled": settled}).Info("settlement batch finished")
	return settled, nil
}

func (s *SettlementService) settleOne(ctx context.Context, auctionID uint) (settlementOutcome, error) {
	var out settlementOutcome
	err := s.db.Atomic(ctx, func(store repository.Store) error {
		auction, err := store.Auctions().GetWithBids(auctionID)
		if err != nil {
			return err
		}
		if !auction.IsActive() {
			// Already closed between listing and settling.
			out.skipped = true
			return nil
		}

		out.auctionID, out.sellerID = auction.ID, auction.SellerID
		bids := sortBidsForSettlement(auction.Bids)
		for i := range bids {
			out.bidderIDs = append(out.bidderIDs, bids[i].BidderID)
		}
		lgr := ledger.New(store)

		switch len(bids) {
		case 0:
			// Nothing reserved, nothing to move.
		case 1:
			// Sole bidder pays their own amount; no second price exists.
			if err := s.settleWinner(store, lgr, &bids[0], bids[0].Amount); err != nil {
				return err
			}
			if err := s.creditSeller(store, lgr, auction.SellerID, bids[0].Amount, &bids[0].ID); err != nil {
				return err
			}
			out.winnerID, out.winningPrice = bids[0].BidderID, bids[0].Amount
		default:
			winner, secondPrice := &bids[0], bids[1].Amount
			if err := s.settleWinner(store, lgr, winner, secondPrice); err != nil {
				return err
			}
			if err := s.creditSeller(store, lgr, auction.SellerID, secondPrice, &winner.ID); err != nil {
				return err
			}
			for i := 1; i < len(bids); i++ {
				loser := &bids[i]
				wallet, err := store.Wallets().GetByUserIDForUpdate(loser.BidderID)
				if err != nil {
					return err
				}
				if err := lgr.Release(wallet, loser.Amount, &loser.ID); err != nil {
					return err
				}
			}
			out.winnerID, out.winningPrice = winner.BidderID, secondPrice
		}

		auction.Status = domain.AuctionStatusEnded
		return store.Auctions().Update(auction)
	})
	return out, err
}

// settleWinner releases the winner's full reservation and debits the
// settlement price. The release must come first so the debit never dips into
// frozen funds.
func (s *SettlementService) settleWinner(store repository.Store, lgr *ledger.Ledger, winner *models.Bid, price decimal.Decimal) error {
	wallet, err := store.Wallets().GetByUserIDForUpdate(winner.BidderID)
	if err != nil {
		return err
	}
	if err := lgr.Release(wallet, winner.Amount, &winner.ID); err != nil {
		return err
	}
	if err := lgr.SettleDebit(wallet, price, &winner.ID); err != nil {
		return err
	}
	winner.IsWinningBid = true
	return store.Bids().Update(winner)
}

func (s *SettlementService) creditSeller(store repository.Store, lgr *ledger.Ledger, sellerID uint, price decimal.Decimal, bidID *uint) error {
	// Sellers get a wallet lazily; they never reserve funds themselves.
	wallet, err := store.Wallets().GetOrCreate(sellerID)
	if err != nil {
		return err
	}
	return lgr.SettleCredit(wallet, price, bidID)
}

func (s *SettlementService) publishEnd(out settlementOutcome) {
	data := map[string]interface{}{
		"auction_id": out.auctionID,
		"winner_id":  nil,
	}
	if out.winnerID != 0 {
		data["winner_id"] = out.winnerID
		data["winning_price"] = out.winningPrice.String()
	} else {
		data["winning_price"] = nil
	}
	s.pub.Publish(out.sellerID, domain.TopicEndAuction, data)
	for _, bidderID := range out.bidderIDs {
		s.pub.Publish(bidderID, domain.TopicEndAuction, data)
	}
}

// sortBidsForSettlement orders bids by amount descending, breaking equal
// amounts by earliest placement. Index 0 is the winner; index 1 carries the
// second price.
func sortBidsForSettlement(bids []models.Bid) []models.Bid {
	sorted := make([]models.Bid, len(bids))
	copy(sorted, bids)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Amount.Equal(sorted[j].Amount) {
			return sorted[i].Amount.GreaterThan(sorted[j].Amount)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}
