package repository

import (
	"errors"
	"fmt"

	"gavel/internal/apperrors"
	"gavel/internal/models"

	"gorm.io/gorm"
)

type bidRepo struct {
	db *gorm.DB
}

func (r *bidRepo) GetByAuctionAndBidder(auctionID, bidderID uint) (*models.Bid, error) {
	var b models.Bid
	err := r.db.Where("auction_id = ? AND bidder_id = ?", auctionID, bidderID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bid on auction %d by user %d: %w", auctionID, bidderID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &b, nil
}

func (r *bidRepo) ListByAuction(auctionID uint) ([]models.Bid, error) {
	var list []models.Bid
	err := r.db.Where("auction_id = ?", auctionID).Order("amount DESC, created_at ASC").Find(&list).Error
	return list, err
}

func (r *bidRepo) ListByBidder(bidderID uint) ([]models.Bid, error) {
	var list []models.Bid
	err := r.db.Where("bidder_id = ?", bidderID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *bidRepo) Create(b *models.Bid) error {
	return r.db.Create(b).Error
}

func (r *bidRepo) Update(b *models.Bid) error {
	return r.db.Save(b).Error
}

func (r *bidRepo) SoftDelete(id uint) error {
	return r.db.Delete(&models.Bid{}, id).Error
}
