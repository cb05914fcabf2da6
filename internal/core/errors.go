package core

import (
	"errors"

	"PayLedger/internal/ledger"
	"PayLedger/internal/store"
)

// ErrDuplicateTx rejects a deposit/withdrawal whose TxID was already
// observed (or collided with a dedup false positive).
var ErrDuplicateTx = errors.New("duplicate transaction id")

// rejectReason maps a precondition failure to its log/metrics label.
func rejectReason(err error) string {
	var (
		insufficient *ledger.InsufficientFundsError
		mismatch     *store.ClientMismatchError
	)
	switch {
	case errors.Is(err, ErrDuplicateTx), errors.Is(err, store.ErrDepositExists):
		return "duplicate_tx"
	case errors.Is(err, ledger.ErrAccountLocked):
		return "account_locked"
	case errors.As(err, &insufficient):
		return "insufficient_funds"
	case errors.Is(err, store.ErrDepositNotFound):
		return "unknown_tx"
	case errors.As(err, &mismatch):
		return "client_mismatch"
	case errors.Is(err, store.ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, ledger.ErrAccountNotFound):
		return "account_not_found"
	default:
		return "internal"
	}
}
