package ledger

import (
	"testing"

	"gavel/internal/apperrors"
	"gavel/internal/domain"
	"gavel/internal/models"
	"gavel/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newWallet(t *testing.T, db *repository.MemoryDB, balance, frozen int64) *models.Wallet {
	t.Helper()
	w, err := db.Wallets().GetOrCreate(1)
	require.NoError(t, err)
	w.Balance = decimal.NewFromInt(balance)
	w.FrozenBalance = decimal.NewFromInt(frozen)
	require.NoError(t, db.Wallets().Update(w))
	return w
}

func lastTransaction(t *testing.T, db *repository.MemoryDB, walletID uint) models.WalletTransaction {
	t.Helper()
	txs, _, err := db.Transactions().ListByWallet(walletID, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	return txs[len(txs)-1]
}

func TestReserve(t *testing.T) {
	db := repository.NewMemoryDB()
	w := newWallet(t, db, 500, 100)
	bidID := uint(7)

	err := New(db).Reserve(w, decimal.NewFromInt(150), &bidID)
	require.NoError(t, err)

	require.True(t, w.Balance.Equal(decimal.NewFromInt(500)))
	require.True(t, w.FrozenBalance.Equal(decimal.NewFromInt(250)))
	require.True(t, w.Available().Equal(decimal.NewFromInt(250)))

	tx := lastTransaction(t, db, w.ID)
	require.Equal(t, domain.TxKindFreeze, tx.Kind)
	require.True(t, tx.Amount.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, tx.BidID)
	require.Equal(t, bidID, *tx.BidID)
	require.NotEmpty(t, tx.Reference)
}

func TestReserveExceedingBalance(t *testing.T) {
	db := repository.NewMemoryDB()
	w := newWallet(t, db, 500, 400)

	err := New(db).Reserve(w, decimal.NewFromInt(101), nil)
	require.ErrorIs(t, err, apperrors.ErrLedgerInvariant)

	// The wallet and the ledger stay untouched on a rejected reservation.
	stored, getErr := db.Wallets().GetByUserID(1)
	require.NoError(t, getErr)
	require.True(t, stored.FrozenBalance.Equal(decimal.NewFromInt(400)))
	txs, _, err := db.Transactions().ListByWallet(w.ID, 0, 0)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestRelease(t *testing.T) {
	db := repository.NewMemoryDB()
	w := newWallet(t, db, 500, 300)

	err := New(db).Release(w, decimal.NewFromInt(300), nil)
	require.NoError(t, err)

	require.True(t, w.Balance.Equal(decimal.NewFromInt(500)))
	require.True(t, w.FrozenBalance.IsZero())
	require.Equal(t, domain.TxKindUnfreeze, lastTransaction(t, db, w.ID).Kind)
}

func TestReleaseBelowZero(t *testing.T) {
	db := repository.NewMemoryDB()
	w := newWallet(t, db, 500, 100)

	err := New(db).Release(w, decimal.NewFromInt(101), nil)
	require.ErrorIs(t, err, apperrors.ErrLedgerInvariant)
}

func TestSettleDebit(t *testing.T) {
	db := repository.NewMemoryDB()
	w := newWallet(t, db, 500, 0)

	err := New(db).SettleDebit(w, decimal.NewFromInt(250), nil)
	require.NoError(t, err)

	require.True(t, w.Balance.Equal(decimal.NewFromInt(250)))
	require.True(t, w.FrozenBalance.IsZero())
	require.Equal(t, domain.TxKindDebit, lastTransaction(t, db, w.ID).Kind)
}

func TestSettleDebitGuards(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		frozen  int64
		amount  int64
	}{
		{"balance would go negative", 200, 0, 201},
		{"frozen would exceed balance", 500, 300, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := repository.NewMemoryDB()
			w := newWallet(t, db, tt.balance, tt.frozen)
			err := New(db).SettleDebit(w, decimal.NewFromInt(tt.amount), nil)
			require.ErrorIs(t, err, apperrors.ErrLedgerInvariant)
		})
	}
}

func TestSettleCredit(t *testing.T) {
	db := repository.NewMemoryDB()
	w := newWallet(t, db, 100, 0)

	err := New(db).SettleCredit(w, decimal.NewFromInt(250), nil)
	require.NoError(t, err)

	require.True(t, w.Balance.Equal(decimal.NewFromInt(350)))
	tx := lastTransaction(t, db, w.ID)
	require.Equal(t, domain.TxKindCredit, tx.Kind)
	require.Nil(t, tx.BidID)
}

func TestNonPositiveAmounts(t *testing.T) {
	db := repository.NewMemoryDB()
	w := newWallet(t, db, 500, 0)
	lgr := New(db)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		require.ErrorIs(t, lgr.Reserve(w, amount, nil), apperrors.ErrValidation)
		require.ErrorIs(t, lgr.Release(w, amount, nil), apperrors.ErrValidation)
		require.ErrorIs(t, lgr.SettleDebit(w, amount, nil), apperrors.ErrValidation)
		require.ErrorIs(t, lgr.SettleCredit(w, amount, nil), apperrors.ErrValidation)
	}
}

func TestEveryMutationAppendsOneEntry(t *testing.T) {
	db := repository.NewMemoryDB()
	w := newWallet(t, db, 1000, 0)
	lgr := New(db)

	require.NoError(t, lgr.Reserve(w, decimal.NewFromInt(300), nil))
	require.NoError(t, lgr.Release(w, decimal.NewFromInt(300), nil))
	require.NoError(t, lgr.SettleDebit(w, decimal.NewFromInt(200), nil))
	require.NoError(t, lgr.SettleCredit(w, decimal.NewFromInt(50), nil))

	txs, total, err := db.Transactions().ListByWallet(w.ID, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	kinds := make([]string, 0, len(txs))
	for _, tx := range txs {
		kinds = append(kinds, tx.Kind)
	}
	require.Equal(t, []string{
		domain.TxKindFreeze, domain.TxKindUnfreeze, domain.TxKindDebit, domain.TxKindCredit,
	}, kinds)
	require.True(t, w.Balance.Equal(decimal.NewFromInt(850)))
}
