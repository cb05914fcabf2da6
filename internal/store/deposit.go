package store

import (
	"errors"
	"fmt"

	"PayLedger/internal/money"
)

// DepositState is the dispute lifecycle position of a stored deposit.
// The four states are a closed sum; transitions are total functions on
// (state, operation) and anything not listed below is illegal.
type DepositState uint8

const (
	DepositClear DepositState = iota
	DepositDisputed
	DepositResolved
	DepositChargedBack
)

func (s DepositState) String() string {
	switch s {
	case DepositClear:
		return "clear"
	case DepositDisputed:
		return "disputed"
	case DepositResolved:
		return "resolved"
	case DepositChargedBack:
		return "charged_back"
	default:
		return "unknown"
	}
}

// ErrIllegalTransition is the kind every TransitionError unwraps to.
var ErrIllegalTransition = errors.New("illegal deposit state transition")

// TransitionError reports a dispute-family operation applied in a state
// that forbids it.
type TransitionError struct {
	Op    string
	State DepositState
}

func (e *TransitionError) Error() string {
	switch {
	case e.Op == "dispute" && e.State == DepositDisputed:
		return "deposit is already under dispute"
	case e.Op == "resolve" && e.State == DepositResolved:
		return "deposit has already been resolved"
	case e.Op == "chargeback" && e.State == DepositChargedBack:
		return "deposit has already been charged back"
	default:
		return fmt.Sprintf("cannot %s a %s deposit", e.Op, e.State)
	}
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// ClientMismatchError reports a dispute-family event whose client differs
// from the stored deposit's owner.
type ClientMismatchError struct {
	Tx       uint32
	Expected uint16
	Found    uint16
}

func (e *ClientMismatchError) Error() string {
	return fmt.Sprintf("client mismatch for transaction %d: expected %d, found %d",
		e.Tx, e.Expected, e.Found)
}

// StoredDeposit is the disputable record kept per accepted deposit.
type StoredDeposit struct {
	Client uint16
	Amount money.Amount
	State  DepositState
}

// NewStoredDeposit returns a record in the initial Clear state.
func NewStoredDeposit(client uint16, amount money.Amount) StoredDeposit {
	return StoredDeposit{Client: client, Amount: amount, State: DepositClear}
}

// EnsureClientMatches verifies the disputer owns the deposit.
func (d *StoredDeposit) EnsureClientMatches(tx uint32, client uint16) error {
	if client != d.Client {
		return &ClientMismatchError{Tx: tx, Expected: d.Client, Found: client}
	}
	return nil
}

// MarkDisputed performs Clear -> Disputed.
func (d *StoredDeposit) MarkDisputed() error {
	if d.State != DepositClear {
		return &TransitionError{Op: "dispute", State: d.State}
	}
	d.State = DepositDisputed
	return nil
}

// MarkResolved performs Disputed -> Resolved. Resolved is terminal:
// re-disputing after resolution is forbidden to break dispute loops.
func (d *StoredDeposit) MarkResolved() error {
	if d.State != DepositDisputed {
		return &TransitionError{Op: "resolve", State: d.State}
	}
	d.State = DepositResolved
	return nil
}

// MarkChargedBack performs Disputed -> ChargedBack. Terminal; the caller
// locks the account and detaches the record.
func (d *StoredDeposit) MarkChargedBack() error {
	if d.State != DepositDisputed {
		return &TransitionError{Op: "chargeback", State: d.State}
	}
	d.State = DepositChargedBack
	return nil
}
