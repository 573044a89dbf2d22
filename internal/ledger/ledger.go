// Package ledger owns every mutation of a wallet's balance pair. Each of the
// four operations adjusts Balance/FrozenBalance, appends one immutable
// WalletTransaction, and must be called from inside the single atomic commit
// of the business operation that caused it. No other code may assign to
// Balance or FrozenBalance.
package ledger

import (
	"fmt"

	"gavel/internal/apperrors"
	"gavel/internal/domain"
	"gavel/internal/models"
	"gavel/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ledger struct {
	store repository.Store
}

// New binds a ledger to a store, typically the transaction-scoped Store inside
// an Atomic callback.
func New(store repository.Store) *Ledger {
	return &Ledger{store: store}
}

// Reserve freezes amount against a new or raised bid. Balance is unchanged.
func (l *Ledger) Reserve(w *models.Wallet, amount decimal.Decimal, bidID *uint) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	frozen := w.FrozenBalance.Add(amount)
	if frozen.GreaterThan(w.Balance) {
		return fmt.Errorf("reserve %s on wallet %d: frozen would exceed balance: %w",
			amount, w.ID, apperrors.ErrLedgerInvariant)
	}
	w.FrozenBalance = frozen
	return l.apply(w, amount, domain.TxKindFreeze, bidID)
}

// Release unfreezes amount for a losing, cancelled or refunded bid.
func (l *Ledger) Release(w *models.Wallet, amount decimal.Decimal, bidID *uint) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	frozen := w.FrozenBalance.Sub(amount)
	if frozen.IsNegative() {
		return fmt.Errorf("release %s on wallet %d: frozen would go negative: %w",
			amount, w.ID, apperrors.ErrLedgerInvariant)
	}
	w.FrozenBalance = frozen
	return l.apply(w, amount, domain.TxKindUnfreeze, bidID)
}

// SettleDebit charges the winner the settlement price. The amount must already
// have been released by a prior Release on the same wallet.
func (l *Ledger) SettleDebit(w *models.Wallet, amount decimal.Decimal, bidID *uint) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	balance := w.Balance.Sub(amount)
	if balance.IsNegative() || w.FrozenBalance.GreaterThan(balance) {
		return fmt.Errorf("debit %s on wallet %d: %w", amount, w.ID, apperrors.ErrLedgerInvariant)
	}
	w.Balance = balance
	return l.apply(w, amount, domain.TxKindDebit, bidID)
}

// SettleCredit pays the seller the settlement price.
func (l *Ledger) SettleCredit(w *models.Wallet, amount decimal.Decimal, bidID *uint) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	w.Balance = w.Balance.Add(amount)
	return l.apply(w, amount, domain.TxKindCredit, bidID)
}

func (l *Ledger) apply(w *models.Wallet, amount decimal.Decimal, kind string, bidID *uint) error {
	if err := l.store.Wallets().Update(w); err != nil {
		return fmt.Errorf("ledger: update wallet %d: %w", w.ID, err)
	}
	tx := &models.WalletTransaction{
		WalletID:  w.ID,
		BidID:     bidID,
		Amount:    amount,
		Kind:      kind,
		Reference: uuid.NewString(),
	}
	if err := l.store.Transactions().Create(tx); err != nil {
		return fmt.Errorf("ledger: append %s transaction for wallet %d: %w", kind, w.ID, err)
	}
	return nil
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("ledger amount must be positive, got %s: %w", amount, apperrors.ErrValidation)
	}
	return nil
}
