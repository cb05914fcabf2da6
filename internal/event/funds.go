package event

import "PayLedger/internal/money"

// Deposit credits funds to a client account and creates a disputable record
type Deposit struct {
	Client uint16
	Tx     uint32
	Amount money.Amount
}

func (d *Deposit) ClientID() uint16 {
	return d.Client
}

func (d *Deposit) TxID() uint32 {
	return d.Tx
}

func (d *Deposit) EventType() EventType {
	return EventTypeDeposit
}

// Withdrawal debits funds from a client account
type Withdrawal struct {
	Client uint16
	Tx     uint32
	Amount money.Amount
}

func (w *Withdrawal) ClientID() uint16 {
	return w.Client
}

func (w *Withdrawal) TxID() uint32 {
	return w.Tx
}

func (w *Withdrawal) EventType() EventType {
	return EventTypeWithdrawal
}
