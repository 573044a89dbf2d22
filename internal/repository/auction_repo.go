package repository

import (
	"errors"
	"fmt"
	"time"

	"gavel/internal/apperrors"
	"gavel/internal/domain"
	"gavel/internal/models"

	"gorm.io/gorm"
)

type auctionRepo struct {
	db *gorm.DB
}

func (r *auctionRepo) GetByID(id uint) (*models.Auction, error) {
	var a models.Auction
	if err := r.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("auction %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

func (r *auctionRepo) GetWithBids(id uint) (*models.Auction, error) {
	var a models.Auction
	err := r.db.Preload("Bids").Preload("Images").First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("auction %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

// ListDue returns every Active auction whose end time has passed, bids included.
// The settlement batch settles each one in its own transaction.
func (r *auctionRepo) ListDue(now time.Time) ([]models.Auction, error) {
	var list []models.Auction
	err := r.db.Preload("Bids").
		Where("status = ? AND end_time <= ?", domain.AuctionStatusActive, now).
		Order("end_time ASC").
		Find(&list).Error
	return list, err
}

func (r *auctionRepo) ListBySeller(sellerID uint) ([]models.Auction, error) {
	var list []models.Auction
	err := r.db.Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *auctionRepo) List(status string, page, limit int) ([]models.Auction, int64, error) {
	q := r.db.Model(&models.Auction{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	q.Count(&total)
	var list []models.Auction
	err := q.Preload("Images").Order("end_time ASC").
		Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *auctionRepo) Create(a *models.Auction) error {
	return r.db.Create(a).Error
}

func (r *auctionRepo) Update(a *models.Auction) error {
	return r.db.Save(a).Error
}

func (r *auctionRepo) SoftDelete(id uint) error {
	return r.db.Delete(&models.Auction{}, id).Error
}

// HardDelete permanently removes an auction with its bids and images. Callers
// enforce the lifecycle rules; normally settled auctions stay auditable.
func (r *auctionRepo) HardDelete(id uint) error {
	if err := r.db.Unscoped().Where("auction_id = ?", id).Delete(&models.Bid{}).Error; err != nil {
		return err
	}
	if err := r.db.Unscoped().Where("auction_id = ?", id).Delete(&models.AuctionImage{}).Error; err != nil {
		return err
	}
	return r.db.Unscoped().Delete(&models.Auction{}, id).Error
}

func (r *auctionRepo) AddImage(img *models.AuctionImage) error {
	return r.db.Create(img).Error
}
