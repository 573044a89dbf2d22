package repository

import (
	"gavel/internal/domain"
	"gavel/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalSellers      int64 `json:"total_sellers"`
	TotalBidders      int64 `json:"total_bidders"`
	ActiveAuctions    int64 `json:"active_auctions"`
	EndedAuctions     int64 `json:"ended_auctions"`
	TotalBids         int64 `json:"total_bids"`
	TotalTransactions int64 `json:"total_transactions"`
}

// AdminRepository serves the read-only admin dashboard. It sits outside the
// Store interface because nothing here participates in a unit of work.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.User{}).Where("role = ?", domain.RoleSeller).Count(&s.TotalSellers)
	r.db.Model(&models.User{}).Where("role = ?", domain.RoleBidder).Count(&s.TotalBidders)
	r.db.Model(&models.Auction{}).Where("status = ?", domain.AuctionStatusActive).Count(&s.ActiveAuctions)
	r.db.Model(&models.Auction{}).Where("status = ?", domain.AuctionStatusEnded).Count(&s.EndedAuctions)
	r.db.Model(&models.Bid{}).Count(&s.TotalBids)
	r.db.Model(&models.WalletTransaction{}).Count(&s.TotalTransactions)
	return &s, nil
}

// ListUsers returns users with search, role filter, and pagination.
func (r *AdminRepository) ListUsers(search, role string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		q = q.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	q.Count(&total)
	var users []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, err
}

// ListTransactions returns ledger entries with optional kind filter.
func (r *AdminRepository) ListTransactions(kind string, page, limit int) ([]models.WalletTransaction, int64, error) {
	q := r.db.Model(&models.WalletTransaction{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var total int64
	q.Count(&total)
	var list []models.WalletTransaction
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
