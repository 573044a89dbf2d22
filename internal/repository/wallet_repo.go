package repository

import (
	"errors"
	"fmt"

	"gavel/internal/apperrors"
	"gavel/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepo struct {
	db *gorm.DB
}

func (r *walletRepo) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("wallet for user %d: %w", userID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &w, nil
}

// GetByUserIDForUpdate locks the wallet row for the duration of the enclosing
// transaction. Two placements by the same bidder serialize here instead of
// racing on the funds check.
func (r *walletRepo) GetByUserIDForUpdate(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("wallet for user %d: %w", userID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &w, nil
}

func (r *walletRepo) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	w = &models.Wallet{UserID: userID, Balance: decimal.Zero, FrozenBalance: decimal.Zero}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (r *walletRepo) Update(w *models.Wallet) error {
	return r.db.Save(w).Error
}
