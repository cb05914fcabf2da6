package store_test

import (
	"errors"
	"testing"

	"PayLedger/internal/money"
	"PayLedger/internal/store"
)

// ============================================================================
// Test: dispute state machine
// ============================================================================

func newDeposit() store.StoredDeposit {
	return store.NewStoredDeposit(1, money.MustParse("100"))
}

func TestStoredDeposit_InitialStateClear(t *testing.T) {
	dep := newDeposit()
	if dep.State != store.DepositClear {
		t.Errorf("initial state: got %v, want clear", dep.State)
	}
}

func TestStoredDeposit_DisputeResolve(t *testing.T) {
	dep := newDeposit()

	if err := dep.MarkDisputed(); err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if dep.State != store.DepositDisputed {
		t.Fatalf("state: got %v, want disputed", dep.State)
	}

	if err := dep.MarkResolved(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if dep.State != store.DepositResolved {
		t.Fatalf("state: got %v, want resolved", dep.State)
	}
}

func TestStoredDeposit_DisputeChargeback(t *testing.T) {
	dep := newDeposit()

	if err := dep.MarkDisputed(); err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if err := dep.MarkChargedBack(); err != nil {
		t.Fatalf("chargeback: %v", err)
	}
	if dep.State != store.DepositChargedBack {
		t.Fatalf("state: got %v, want charged_back", dep.State)
	}
}

func TestStoredDeposit_IllegalTransitions(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*store.StoredDeposit)
		op    func(*store.StoredDeposit) error
	}{
		{"resolve undisputed", func(*store.StoredDeposit) {}, (*store.StoredDeposit).MarkResolved},
		{"chargeback undisputed", func(*store.StoredDeposit) {}, (*store.StoredDeposit).MarkChargedBack},
		{"double dispute", func(d *store.StoredDeposit) { d.MarkDisputed() }, (*store.StoredDeposit).MarkDisputed},
		{"dispute resolved", func(d *store.StoredDeposit) { d.MarkDisputed(); d.MarkResolved() }, (*store.StoredDeposit).MarkDisputed},
		{"resolve twice", func(d *store.StoredDeposit) { d.MarkDisputed(); d.MarkResolved() }, (*store.StoredDeposit).MarkResolved},
		{"chargeback resolved", func(d *store.StoredDeposit) { d.MarkDisputed(); d.MarkResolved() }, (*store.StoredDeposit).MarkChargedBack},
		{"dispute charged back", func(d *store.StoredDeposit) { d.MarkDisputed(); d.MarkChargedBack() }, (*store.StoredDeposit).MarkDisputed},
		{"resolve charged back", func(d *store.StoredDeposit) { d.MarkDisputed(); d.MarkChargedBack() }, (*store.StoredDeposit).MarkResolved},
		{"chargeback twice", func(d *store.StoredDeposit) { d.MarkDisputed(); d.MarkChargedBack() }, (*store.StoredDeposit).MarkChargedBack},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dep := newDeposit()
			c.setup(&dep)
			before := dep.State

			err := c.op(&dep)

			if !errors.Is(err, store.ErrIllegalTransition) {
				t.Fatalf("want ErrIllegalTransition, got %v", err)
			}
			var te *store.TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("want TransitionError, got %T", err)
			}
			if dep.State != before {
				t.Errorf("state changed on illegal transition: %v -> %v", before, dep.State)
			}
		})
	}
}

func TestStoredDeposit_EnsureClientMatches(t *testing.T) {
	dep := newDeposit()

	if err := dep.EnsureClientMatches(42, 1); err != nil {
		t.Fatalf("matching client: %v", err)
	}

	err := dep.EnsureClientMatches(42, 2)
	var mismatch *store.ClientMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("want ClientMismatchError, got %v", err)
	}
	if mismatch.Tx != 42 || mismatch.Expected != 1 || mismatch.Found != 2 {
		t.Errorf("mismatch fields: %+v", mismatch)
	}
}
