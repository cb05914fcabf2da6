package ledger

import (
	"fmt"
	"sort"

	"PayLedger/internal/money"
)

// Account is the per-client balance pair plus lock flag. Total is derived
// as available + held, so the balance identity available + held == total
// holds at every observable point.
type Account struct {
	client    uint16
	available money.Amount
	held      money.Amount
	locked    bool
}

func NewAccount(client uint16) *Account {
	return &Account{client: client}
}

func (a *Account) Client() uint16          { return a.client }
func (a *Account) Available() money.Amount { return a.available }
func (a *Account) Held() money.Amount      { return a.held }
func (a *Account) Locked() bool            { return a.locked }

// Total returns the net ledger balance.
func (a *Account) Total() money.Amount {
	return a.available.Add(a.held)
}

// Credit adds amount to available funds.
func (a *Account) Credit(amount money.Amount) {
	a.available = a.available.Add(amount)
}

// Debit removes amount from available funds. Requires an unlocked account
// and sufficient available balance.
func (a *Account) Debit(amount money.Amount) error {
	if a.locked {
		return fmt.Errorf("debit client %d: %w", a.client, ErrAccountLocked)
	}
	if a.available.LessThan(amount) {
		return &InsufficientFundsError{
			Client:    a.client,
			Available: a.available,
			Requested: amount,
		}
	}
	a.available = a.available.Sub(amount)
	return nil
}

// Hold moves amount from available into held. Available may go negative:
// if a client deposited 100, withdrew 80, and the deposit is then disputed,
// the full 100 is held and available becomes -80. The client owes that
// amount (clawback).
func (a *Account) Hold(amount money.Amount) {
	a.available = a.available.Sub(amount)
	a.held = a.held.Add(amount)
}

// Release returns held funds to available. Requires held >= amount.
func (a *Account) Release(amount money.Amount) error {
	if a.held.LessThan(amount) {
		return fmt.Errorf("release %s with held %s: %w", amount, a.held, ErrInsufficientHeld)
	}
	a.held = a.held.Sub(amount)
	a.available = a.available.Add(amount)
	return nil
}

// Seize removes held funds from the ledger entirely and freezes the
// account. Requires held >= amount.
func (a *Account) Seize(amount money.Amount) error {
	if a.held.LessThan(amount) {
		return fmt.Errorf("seize %s with held %s: %w", amount, a.held, ErrInsufficientHeld)
	}
	a.held = a.held.Sub(amount)
	a.locked = true
	return nil
}

// Snapshot is the externally visible state of one account.
type Snapshot struct {
	Client    uint16
	Available money.Amount
	Held      money.Amount
	Total     money.Amount
	Locked    bool
}

func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		Client:    a.client,
		Available: a.available,
		Held:      a.held,
		Total:     a.Total(),
		Locked:    a.locked,
	}
}

// AccountMap is one shard's client table. Accounts are created lazily on
// first reference and never destroyed.
type AccountMap struct {
	clients map[uint16]*Account
}

func NewAccountMap() *AccountMap {
	return &AccountMap{clients: make(map[uint16]*Account)}
}

func (m *AccountMap) Len() int {
	return len(m.clients)
}

func (m *AccountMap) GetOrCreate(client uint16) *Account {
	acct, ok := m.clients[client]
	if !ok {
		acct = NewAccount(client)
		m.clients[client] = acct
	}
	return acct
}

func (m *AccountMap) Get(client uint16) (*Account, bool) {
	acct, ok := m.clients[client]
	return acct, ok
}

// Merge absorbs another shard's table. Shards partition clients, so keys
// never collide.
func (m *AccountMap) Merge(other *AccountMap) {
	for client, acct := range other.clients {
		m.clients[client] = acct
	}
}

// Snapshots returns all account states sorted by client id.
func (m *AccountMap) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(m.clients))
	for _, acct := range m.clients {
		out = append(out, acct.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}
