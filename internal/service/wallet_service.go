package service

import (
	"context"
	"fmt"

	"gavel/internal/apperrors"
	"gavel/internal/ledger"
	"gavel/internal/models"
	"gavel/internal/repository"

	"github.com/shopspring/decimal"
)

// WalletService exposes balance reads, deposits and ledger history. Deposits
// go through the ledger's Credit so even top-ups land in the audit trail.
type WalletService struct {
	db repository.DB
}

func NewWalletService(db repository.DB) *WalletService {
	return &WalletService{db: db}
}

func (s *WalletService) GetBalance(userID uint) (*models.Wallet, error) {
	return s.db.Wallets().GetOrCreate(userID)
}

func (s *WalletService) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deposit amount must be positive: %w", apperrors.ErrValidation)
	}
	var wallet *models.Wallet
	err := s.db.Atomic(ctx, func(store repository.Store) error {
		if _, err := store.Wallets().GetOrCreate(userID); err != nil {
			return err
		}
		w, err := store.Wallets().GetByUserIDForUpdate(userID)
		if err != nil {
			return err
		}
		if err := ledger.New(store).SettleCredit(w, amount, nil); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *WalletService) History(userID uint, limit, offset int) ([]models.WalletTransaction, int64, error) {
	wallet, err := s.db.Wallets().GetByUserID(userID)
	if err != nil {
		return nil, 0, err
	}
	return s.db.Transactions().ListByWallet(wallet.ID, limit, offset)
}
