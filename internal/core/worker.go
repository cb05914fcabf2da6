package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"PayLedger/internal/dedup"
	"PayLedger/internal/event"
	"PayLedger/internal/ledger"
	"PayLedger/internal/observability"
	"PayLedger/internal/store"
)

// Worker is one shard's single-threaded event processor. It exclusively
// owns its account table, deposit store partition and replay filter; no
// state is shared across workers while input flows.
type Worker struct {
	shard    int
	accounts *ledger.AccountMap
	deposits store.DepositStore
	filter   *dedup.TxFilter
	inbox    <-chan event.Event
	log      zerolog.Logger
	metrics  *observability.Metrics
}

func NewWorker(
	shard int,
	inbox <-chan event.Event,
	deposits store.DepositStore,
	filter *dedup.TxFilter,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *Worker {
	return &Worker{
		shard:    shard,
		accounts: ledger.NewAccountMap(),
		deposits: deposits,
		filter:   filter,
		inbox:    inbox,
		log:      log.With().Int("shard", shard).Logger(),
		metrics:  metrics,
	}
}

// Accounts exposes the shard's table for the post-join snapshot. Callers
// must not touch it before Run returns.
func (w *Worker) Accounts() *ledger.AccountMap {
	return w.accounts
}

// Run consumes the inbox until the router closes it. Every precondition
// failure is logged and the event dropped; nothing on the event path stops
// the worker.
func (w *Worker) Run(ctx context.Context) {
	shardLabel := strconv.Itoa(w.shard)

	for evt := range w.inbox {
		start := time.Now()
		eventType := evt.EventType().String()

		if err := w.apply(ctx, evt); err != nil {
			reason := rejectReason(err)
			w.log.Warn().
				Err(err).
				Str("event_type", eventType).
				Uint16("client", evt.ClientID()).
				Uint32("tx", evt.TxID()).
				Str("reason", reason).
				Msg("event dropped")
			if w.metrics != nil {
				w.metrics.EventsRejected.WithLabelValues(eventType, reason).Inc()
			}
			continue
		}

		if w.metrics != nil {
			w.metrics.EventsApplied.WithLabelValues(eventType).Inc()
			w.metrics.EventDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
			w.metrics.InboxDepth.WithLabelValues(shardLabel).Set(float64(len(w.inbox)))
		}
	}
}

func (w *Worker) apply(ctx context.Context, evt event.Event) error {
	switch e := evt.(type) {
	case *event.Deposit:
		return w.applyDeposit(ctx, e)
	case *event.Withdrawal:
		return w.applyWithdrawal(ctx, e)
	case *event.Dispute:
		return w.applyDispute(ctx, e)
	case *event.Resolve:
		return w.applyResolve(ctx, e)
	case *event.Chargeback:
		return w.applyChargeback(ctx, e)
	default:
		return fmt.Errorf("unhandled event type %T", evt)
	}
}

// applyDeposit credits the account and stores a Clear disputable record.
// The account is created even when the deposit is rejected, so the client
// still appears in the output snapshot.
func (w *Worker) applyDeposit(ctx context.Context, e *event.Deposit) error {
	acct := w.accounts.GetOrCreate(e.Client)
	if acct.Locked() {
		return fmt.Errorf("deposit tx %d: %w", e.Tx, ledger.ErrAccountLocked)
	}
	if err := w.observeTx(e.Tx); err != nil {
		return err
	}
	// Exact presence check behind the probabilistic filter: a deposit TxID
	// must also be absent from the store.
	if _, ok, err := w.deposits.Get(ctx, e.Tx); err != nil {
		return fmt.Errorf("deposit tx %d: %w", e.Tx, err)
	} else if ok {
		return fmt.Errorf("deposit tx %d: %w", e.Tx, ErrDuplicateTx)
	}

	if err := w.deposits.Insert(ctx, e.Tx, store.NewStoredDeposit(e.Client, e.Amount)); err != nil {
		return fmt.Errorf("deposit tx %d: %w", e.Tx, err)
	}
	acct.Credit(e.Amount)
	return nil
}

func (w *Worker) applyWithdrawal(_ context.Context, e *event.Withdrawal) error {
	acct := w.accounts.GetOrCreate(e.Client)
	if acct.Locked() {
		return fmt.Errorf("withdrawal tx %d: %w", e.Tx, ledger.ErrAccountLocked)
	}
	if err := w.observeTx(e.Tx); err != nil {
		return err
	}
	if err := acct.Debit(e.Amount); err != nil {
		return fmt.Errorf("withdrawal tx %d: %w", e.Tx, err)
	}
	return nil
}

// applyDispute holds the deposit amount. The hold ignores the current
// available balance: a deposit-withdraw-dispute sequence legitimately
// drives available negative (clawback).
func (w *Worker) applyDispute(ctx context.Context, e *event.Dispute) error {
	dep, acct, err := w.lookupDisputed(ctx, e.Tx, e.Client)
	if err != nil {
		return fmt.Errorf("dispute tx %d: %w", e.Tx, err)
	}

	if err := dep.MarkDisputed(); err != nil {
		return fmt.Errorf("dispute tx %d: %w", e.Tx, err)
	}
	if err := w.deposits.Update(ctx, e.Tx, dep); err != nil {
		return fmt.Errorf("dispute tx %d: %w", e.Tx, err)
	}
	acct.Hold(dep.Amount)
	return nil
}

func (w *Worker) applyResolve(ctx context.Context, e *event.Resolve) error {
	dep, acct, err := w.lookupDisputed(ctx, e.Tx, e.Client)
	if err != nil {
		return fmt.Errorf("resolve tx %d: %w", e.Tx, err)
	}

	if err := dep.MarkResolved(); err != nil {
		return fmt.Errorf("resolve tx %d: %w", e.Tx, err)
	}
	if err := w.deposits.Update(ctx, e.Tx, dep); err != nil {
		return fmt.Errorf("resolve tx %d: %w", e.Tx, err)
	}
	if err := acct.Release(dep.Amount); err != nil {
		return fmt.Errorf("resolve tx %d: %w", e.Tx, err)
	}
	return nil
}

// applyChargeback seizes the held funds, locks the account, and detaches
// the record: the funds have left the disputable pool and re-dispute must
// be impossible.
func (w *Worker) applyChargeback(ctx context.Context, e *event.Chargeback) error {
	dep, acct, err := w.lookupDisputed(ctx, e.Tx, e.Client)
	if err != nil {
		return fmt.Errorf("chargeback tx %d: %w", e.Tx, err)
	}

	if err := dep.MarkChargedBack(); err != nil {
		return fmt.Errorf("chargeback tx %d: %w", e.Tx, err)
	}
	if _, _, err := w.deposits.Remove(ctx, e.Tx); err != nil {
		return fmt.Errorf("chargeback tx %d: %w", e.Tx, err)
	}
	if err := acct.Seize(dep.Amount); err != nil {
		return fmt.Errorf("chargeback tx %d: %w", e.Tx, err)
	}
	return nil
}

// lookupDisputed fetches the referenced deposit and its owning account for
// a dispute-family event. The lock gate is deliberately absent here:
// dispute closure stays possible on frozen accounts.
func (w *Worker) lookupDisputed(ctx context.Context, tx uint32, client uint16) (store.StoredDeposit, *ledger.Account, error) {
	dep, ok, err := w.deposits.Get(ctx, tx)
	if err != nil {
		return store.StoredDeposit{}, nil, err
	}
	if !ok {
		return store.StoredDeposit{}, nil, store.ErrDepositNotFound
	}
	if err := dep.EnsureClientMatches(tx, client); err != nil {
		return store.StoredDeposit{}, nil, err
	}
	acct, ok := w.accounts.Get(client)
	if !ok {
		// A stored deposit implies the depositor's account exists.
		return store.StoredDeposit{}, nil, ledger.ErrAccountNotFound
	}
	return dep, acct, nil
}

// observeTx runs the replay filter for fresh-TxID event kinds.
func (w *Worker) observeTx(tx uint32) error {
	if w.filter.ObserveAndCheck(tx) == dedup.ProbablySeen {
		if w.metrics != nil {
			w.metrics.DedupDropped.Inc()
		}
		return fmt.Errorf("tx %d: %w", tx, ErrDuplicateTx)
	}
	return nil
}
