package apperrors

import "errors"

// Sentinel errors classifying every failure the engine returns. Callers match
// with errors.Is; services wrap them with context via fmt.Errorf and %w.
var (
	// ErrValidation covers missing or malformed input, rejected before any mutation.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound covers absent auctions, users and wallets.
	ErrNotFound = errors.New("not found")
	// ErrStateConflict covers operations illegal in the current lifecycle state.
	ErrStateConflict = errors.New("state conflict")
	// ErrInsufficientFunds is returned when available balance cannot cover a reservation.
	ErrInsufficientFunds = errors.New("insufficient available balance")
	// ErrForbidden covers authorization failures (seller bidding on own auction,
	// administrators bidding, non-owners mutating an auction).
	ErrForbidden = errors.New("forbidden")
	// ErrLedgerInvariant signals a wallet update that would break
	// 0 <= frozenBalance <= balance. Unreachable if callers order ledger
	// operations correctly.
	ErrLedgerInvariant = errors.New("wallet invariant violation")
)
