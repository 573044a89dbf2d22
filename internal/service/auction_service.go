package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gavel/internal/apperrors"
	"gavel/internal/domain"
	"gavel/internal/models"
	"gavel/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AuctionService owns the auction lifecycle: Active <-> Paused while no bids
// exist, Ended via settlement or force-close, and the guards on updating and
// deleting. Terms bidders relied on cannot change once a bid exists.
type AuctionService struct {
	db repository.DB
}

func NewAuctionService(db repository.DB) *AuctionService {
	return &AuctionService{db: db}
}

type CreateAuctionInput struct {
	Name          string
	Description   string
	BaselinePrice decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
}

func (s *AuctionService) Create(ctx context.Context, sellerID uint, in CreateAuctionInput) (*models.Auction, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("auction name is required: %w", apperrors.ErrValidation)
	}
	if !in.BaselinePrice.IsPositive() {
		return nil, fmt.Errorf("baseline price must be positive: %w", apperrors.ErrValidation)
	}
	start, end := in.StartTime.Truncate(time.Minute), in.EndTime.Truncate(time.Minute)
	if !end.After(start) {
		return nil, fmt.Errorf("end time must be after start time: %w", apperrors.ErrValidation)
	}

	var auction *models.Auction
	err := s.db.Atomic(ctx, func(store repository.Store) error {
		seller, err := store.Users().GetByID(sellerID)
		if err != nil {
			return err
		}
		if !seller.IsSeller() {
			return fmt.Errorf("only sellers can create auctions: %w", apperrors.ErrForbidden)
		}
		auction = &models.Auction{
			SellerID:      sellerID,
			Name:          in.Name,
			Description:   in.Description,
			BaselinePrice: in.BaselinePrice,
			StartTime:     start,
			EndTime:       end,
			Status:        domain.AuctionStatusActive,
		}
		return store.Auctions().Create(auction)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"auction_id": auction.ID, "seller_id": sellerID}).Info("auction created")
	return auction, nil
}

// Pause stops an Active auction that has no bids yet.
func (s *AuctionService) Pause(ctx context.Context, auctionID, userID uint) error {
	return s.db.Atomic(ctx, func(store repository.Store) error {
		auction, err := s.ownedAuction(store, auctionID, userID)
		if err != nil {
			return err
		}
		if !auction.IsActive() {
			return fmt.Errorf("auction %d is %s, not ACTIVE: %w", auctionID, auction.Status, apperrors.ErrStateConflict)
		}
		bids, err := store.Bids().ListByAuction(auctionID)
		if err != nil {
			return err
		}
		if len(bids) > 0 {
			return fmt.Errorf("auction %d already has bids: %w", auctionID, apperrors.ErrStateConflict)
		}
		auction.Status = domain.AuctionStatusPaused
		return store.Auctions().Update(auction)
	})
}

// Resume reactivates a Paused auction with a fresh window. Both times must be
// in the future and are truncated to the minute.
func (s *AuctionService) Resume(ctx context.Context, auctionID, userID uint, startTime, endTime time.Time) error {
	start, end := startTime.Truncate(time.Minute), endTime.Truncate(time.Minute)
	now := time.Now()
	if start.Before(now) || end.Before(now) {
		return fmt.Errorf("resume times must be in the future: %w", apperrors.ErrValidation)
	}
	if !end.After(start) {
		return fmt.Errorf("end time must be after start time: %w", apperrors.ErrValidation)
	}
	return s.db.Atomic(ctx, func(store repository.Store) error {
		auction, err := s.ownedAuction(store, auctionID, userID)
		if err != nil {
			return err
		}
		if auction.Status != domain.AuctionStatusPaused {
			return fmt.Errorf("auction %d is %s, not PAUSED: %w", auctionID, auction.Status, apperrors.ErrStateConflict)
		}
		auction.StartTime = start
		auction.EndTime = end
		auction.Status = domain.AuctionStatusActive
		return store.Auctions().Update(auction)
	})
}

type UpdateAuctionInput struct {
	Name          *string
	Description   *string
	BaselinePrice *decimal.Decimal
}

// Update edits name/description/price. Rejected once the auction has a bid so
// terms cannot shift under bidders holding reservations.
func (s *AuctionService) Update(ctx context.Context, auctionID, userID uint, in UpdateAuctionInput) error {
	return s.db.Atomic(ctx, func(store repository.Store) error {
		auction, err := s.ownedAuction(store, auctionID, userID)
		if err != nil {
			return err
		}
		if auction.Status == domain.AuctionStatusEnded {
			return fmt.Errorf("auction %d has ended: %w", auctionID, apperrors.ErrStateConflict)
		}
		bids, err := store.Bids().ListByAuction(auctionID)
		if err != nil {
			return err
		}
		if len(bids) > 0 {
			return fmt.Errorf("auction %d has bids, terms are locked: %w", auctionID, apperrors.ErrStateConflict)
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return fmt.Errorf("auction name is required: %w", apperrors.ErrValidation)
			}
			auction.Name = *in.Name
		}
		if in.Description != nil {
			auction.Description = *in.Description
		}
		if in.BaselinePrice != nil {
			if !in.BaselinePrice.IsPositive() {
				return fmt.Errorf("baseline price must be positive: %w", apperrors.ErrValidation)
			}
			auction.BaselinePrice = *in.BaselinePrice
		}
		return store.Auctions().Update(auction)
	})
}

// Delete permanently removes an auction. Allowed only for a Paused auction
// with no bids, or an Ended auction that was force-closed; auctions ended by
// normal settlement remain auditable. The returned public IDs identify the
// remote image assets the caller should clean up after the commit.
func (s *AuctionService) Delete(ctx context.Context, auctionID, userID uint) ([]string, error) {
	var publicIDs []string
	err := s.db.Atomic(ctx, func(store repository.Store) error {
		user, err := store.Users().GetByID(userID)
		if err != nil {
			return err
		}
		auction, err := store.Auctions().GetWithBids(auctionID)
		if err != nil {
			return err
		}
		if auction.SellerID != userID && !user.IsAdmin() {
			return fmt.Errorf("user %d does not own auction %d: %w", userID, auctionID, apperrors.ErrForbidden)
		}
		switch auction.Status {
		case domain.AuctionStatusPaused:
			if len(auction.Bids) > 0 {
				return fmt.Errorf("paused auction %d has bids: %w", auctionID, apperrors.ErrStateConflict)
			}
		case domain.AuctionStatusEnded:
			if !auction.ForceClosed() {
				return fmt.Errorf("auction %d ended by settlement and is retained: %w",
					auctionID, apperrors.ErrStateConflict)
			}
		default:
			return fmt.Errorf("auction %d is %s: %w", auctionID, auction.Status, apperrors.ErrStateConflict)
		}
		for _, img := range auction.Images {
			if img.PublicID != "" {
				publicIDs = append(publicIDs, img.PublicID)
			}
		}
		return store.Auctions().HardDelete(auctionID)
	})
	if err != nil {
		return nil, err
	}
	return publicIDs, nil
}

// AddImage attaches an uploaded image. Locked down with the other term
// mutations once a bid exists.
func (s *AuctionService) AddImage(ctx context.Context, auctionID, userID uint, url, publicID string) error {
	return s.db.Atomic(ctx, func(store repository.Store) error {
		auction, err := s.ownedAuction(store, auctionID, userID)
		if err != nil {
			return err
		}
		if auction.Status == domain.AuctionStatusEnded {
			return fmt.Errorf("auction %d has ended: %w", auctionID, apperrors.ErrStateConflict)
		}
		bids, err := store.Bids().ListByAuction(auctionID)
		if err != nil {
			return err
		}
		if len(bids) > 0 {
			return fmt.Errorf("auction %d has bids, terms are locked: %w", auctionID, apperrors.ErrStateConflict)
		}
		return store.Auctions().AddImage(&models.AuctionImage{
			AuctionID: auctionID,
			URL:       url,
			PublicID:  publicID,
		})
	})
}

func (s *AuctionService) Get(auctionID uint) (*models.Auction, error) {
	return s.db.Auctions().GetWithBids(auctionID)
}

func (s *AuctionService) List(status string, page, limit int) ([]models.Auction, int64, error) {
	return s.db.Auctions().List(status, page, limit)
}

func (s *AuctionService) ownedAuction(store repository.Store, auctionID, userID uint) (*models.Auction, error) {
	auction, err := store.Auctions().GetByID(auctionID)
	if err != nil {
		return nil, err
	}
	if auction.SellerID != userID {
		return nil, fmt.Errorf("user %d does not own auction %d: %w", userID, auctionID, apperrors.ErrForbidden)
	}
	return auction, nil
}
