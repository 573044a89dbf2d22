package repository

import (
	"gavel/internal/models"

	"gorm.io/gorm"
)

type transactionRepo struct {
	db *gorm.DB
}

// Create appends a ledger entry. There is deliberately no update or delete:
// wallet transactions are the audit trail.
func (r *transactionRepo) Create(t *models.WalletTransaction) error {
	return r.db.Create(t).Error
}

func (r *transactionRepo) ListByWallet(walletID uint, limit, offset int) ([]models.WalletTransaction, int64, error) {
	q := r.db.Model(&models.WalletTransaction{}).Where("wallet_id = ?", walletID)
	var total int64
	q.Count(&total)
	var list []models.WalletTransaction
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
