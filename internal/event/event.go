package event

// EventType discriminator for stream events
type EventType int32

const (
	EventTypeUnknown EventType = iota
	EventTypeDeposit
	EventTypeWithdrawal
	EventTypeDispute
	EventTypeResolve
	EventTypeChargeback
)

// Event is the interface all stream events implement
type Event interface {
	// ClientID returns the owning client
	ClientID() uint16

	// TxID returns the transaction id. For deposits and withdrawals this is
	// a fresh system-wide id; for dispute-family events it references a
	// previously stored deposit.
	TxID() uint32

	// EventType returns the discriminator
	EventType() EventType
}

// Dedupes reports whether events of this type consume a fresh TxID and
// must pass the replay filter. Dispute-family events are references, not
// new transactions, and never consult the filter.
func (et EventType) Dedupes() bool {
	return et == EventTypeDeposit || et == EventTypeWithdrawal
}

func (et EventType) String() string {
	switch et {
	case EventTypeDeposit:
		return "Deposit"
	case EventTypeWithdrawal:
		return "Withdrawal"
	case EventTypeDispute:
		return "Dispute"
	case EventTypeResolve:
		return "Resolve"
	case EventTypeChargeback:
		return "Chargeback"
	default:
		return "Unknown"
	}
}
