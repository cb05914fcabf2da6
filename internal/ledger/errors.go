package ledger

import (
	"errors"
	"fmt"

	"PayLedger/internal/money"
)

var (
	// ErrAccountLocked rejects credits/debits on a frozen account.
	ErrAccountLocked = errors.New("account locked")

	// ErrAccountNotFound guards dispute-family lookups that reference a
	// client with no account. A stored deposit always implies an account,
	// so hitting this indicates an upstream inconsistency.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientHeld guards Release/Seize; held funds never go
	// negative.
	ErrInsufficientHeld = errors.New("insufficient held funds")
)

// InsufficientFundsError rejects a withdrawal exceeding available funds.
type InsufficientFundsError struct {
	Client    uint16
	Available money.Amount
	Requested money.Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for client %d: available %s, requested %s",
		e.Client, e.Available, e.Requested)
}
