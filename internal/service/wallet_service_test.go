package service

import (
	"context"
	"testing"

	"gavel/internal/apperrors"
	"gavel/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestDeposit(t *testing.T) {
	db := newTestDB()
	bidder := seedUser(t, db, "alice", domain.RoleBidder)
	svc := NewWalletService(db)

	// First deposit creates the wallet.
	w, err := svc.Deposit(context.Background(), bidder.ID, dec(500))
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(dec(500)))
	require.True(t, w.FrozenBalance.IsZero())

	w, err = svc.Deposit(context.Background(), bidder.ID, dec(250))
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(dec(750)))

	// Deposits land in the ledger as credits without a bid.
	credits := transactionsByKind(t, db, w.ID)[domain.TxKindCredit]
	require.Len(t, credits, 2)
	require.Nil(t, credits[0].BidID)
}

func TestDepositRejectsNonPositive(t *testing.T) {
	db := newTestDB()
	bidder := seedUser(t, db, "alice", domain.RoleBidder)
	svc := NewWalletService(db)

	_, err := svc.Deposit(context.Background(), bidder.ID, dec(0))
	require.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.Deposit(context.Background(), bidder.ID, dec(-10))
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGetBalanceCreatesWalletLazily(t *testing.T) {
	db := newTestDB()
	bidder := seedUser(t, db, "alice", domain.RoleBidder)

	w, err := NewWalletService(db).GetBalance(bidder.ID)
	require.NoError(t, err)
	require.True(t, w.Balance.IsZero())
	require.True(t, w.FrozenBalance.IsZero())
}

func TestHistoryPagination(t *testing.T) {
	db := newTestDB()
	bidder := seedUser(t, db, "alice", domain.RoleBidder)
	svc := NewWalletService(db)
	for i := 0; i < 5; i++ {
		_, err := svc.Deposit(context.Background(), bidder.ID, dec(10))
		require.NoError(t, err)
	}

	page, total, err := svc.History(bidder.ID, 2, 0)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, page, 2)

	rest, _, err := svc.History(bidder.ID, 10, 4)
	require.NoError(t, err)
	require.Len(t, rest, 1)
}

func TestHistoryUnknownUser(t *testing.T) {
	db := newTestDB()
	_, _, err := NewWalletService(db).History(42, 10, 0)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
