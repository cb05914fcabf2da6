package store

import (
	"context"
	"errors"
)

var (
	// ErrDepositNotFound reports a dispute-family reference to a TxID with
	// no stored deposit.
	ErrDepositNotFound = errors.New("stored deposit not found")

	// ErrDepositExists guards Insert's precondition: the TxID must be
	// fresh. Upstream dedup makes this unreachable in normal operation.
	ErrDepositExists = errors.New("stored deposit already present")
)

// DepositStore is the capability workers use to keep disputable deposits.
// Backends are exchangeable without touching callers: lookups are O(1)
// amortized, TxIDs never alias across clients (global uniqueness is
// enforced upstream), and access within one worker is sequential.
//
// Mutation is read-modify-write: Get a copy, apply the state transition,
// Update it back. Memory scales with deposit count in the default backend;
// operators swap in Redis or Postgres for unbounded workloads.
type DepositStore interface {
	// Insert adds a newly cleared deposit. The TxID must not be present.
	Insert(ctx context.Context, txID uint32, dep StoredDeposit) error

	// Get returns a copy of the record, reporting presence.
	Get(ctx context.Context, txID uint32) (StoredDeposit, bool, error)

	// Update writes back a mutated record for an existing TxID.
	Update(ctx context.Context, txID uint32, dep StoredDeposit) error

	// Remove detaches the record, returning it if present. Used on
	// chargeback finalization: the funds have left the disputable pool.
	Remove(ctx context.Context, txID uint32) (StoredDeposit, bool, error)
}
