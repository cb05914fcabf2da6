package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"PayLedger/internal/dedup"
	"PayLedger/internal/event"
	"PayLedger/internal/ledger"
	"PayLedger/internal/observability"
	"PayLedger/internal/store"
)

// Source is any pull-based event stream. Next returns io.EOF when the
// input is drained; any other error is a fatal stream failure. Per-row
// failures never surface here; sources warn and skip them.
type Source interface {
	Next(ctx context.Context) (event.Event, error)
}

// StoreFactory builds one shard's DepositStore.
type StoreFactory func(shard int) store.DepositStore

// Config sizes the worker pool.
type Config struct {
	// Shards is the worker count (>= 1).
	Shards int

	// InboxSize bounds each worker inbox; a full inbox blocks the reader.
	InboxSize int

	// DedupExpectedTxs and DedupFPRate size each worker's replay filter.
	DedupExpectedTxs uint
	DedupFPRate      float64
}

func DefaultConfig() Config {
	return Config{
		Shards:           4,
		InboxSize:        1024,
		DedupExpectedTxs: dedup.DefaultExpectedTxs,
		DedupFPRate:      dedup.DefaultFPRate,
	}
}

func (c Config) withDefaults() Config {
	if c.Shards < 1 {
		c.Shards = 4
	}
	if c.InboxSize < 1 {
		c.InboxSize = 1024
	}
	if c.DedupExpectedTxs == 0 {
		c.DedupExpectedTxs = dedup.DefaultExpectedTxs
	}
	if c.DedupFPRate <= 0 {
		c.DedupFPRate = dedup.DefaultFPRate
	}
	return c
}

// Engine wires one reader, N shard workers and the post-drain snapshot
// join. It holds no state across runs; every Run starts empty.
type Engine struct {
	cfg      Config
	newStore StoreFactory
	log      zerolog.Logger
	metrics  *observability.Metrics
}

func NewEngine(cfg Config, newStore StoreFactory, log zerolog.Logger, metrics *observability.Metrics) *Engine {
	if newStore == nil {
		newStore = func(int) store.DepositStore { return store.NewMemoryStore() }
	}
	return &Engine{
		cfg:      cfg.withDefaults(),
		newStore: newStore,
		log:      log,
		metrics:  metrics,
	}
}

// Run pumps the source through the router until it drains, joins the
// workers, and returns the merged account snapshot sorted by client id.
// Account contents are deterministic for a given input and shard count.
// Replay filters are per shard, so a TxID reused by clients on different
// shards is not compared; when TxIDs are unique across clients the
// contents are the same for every shard count. Only per-client ordering
// is guaranteed.
func (e *Engine) Run(ctx context.Context, src Source) ([]ledger.Snapshot, error) {
	router := NewRouter(e.cfg.Shards, e.cfg.InboxSize)

	// Each shard sees roughly 1/N of the stream; size its filter to match.
	perShard := e.cfg.DedupExpectedTxs / uint(e.cfg.Shards)
	if perShard == 0 {
		perShard = 1
	}

	workers := make([]*Worker, e.cfg.Shards)
	var wg sync.WaitGroup
	for i := range workers {
		filter := dedup.NewTxFilter(perShard, e.cfg.DedupFPRate)
		workers[i] = NewWorker(i, router.Inbox(i), e.newStore(i), filter, e.log, e.metrics)
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(workers[i])
	}

	e.log.Info().
		Int("shards", e.cfg.Shards).
		Msg("processing started")

	var routed int64
	var readErr error
	for {
		evt, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Fatal stream failure. Already-enqueued events still drain:
			// the inboxes are closed below and workers finish them.
			readErr = fmt.Errorf("input stream: %w", err)
			break
		}
		router.Route(evt)
		routed++
	}

	router.Close()
	wg.Wait()

	if readErr != nil {
		return nil, readErr
	}

	start := time.Now()
	merged := ledger.NewAccountMap()
	for _, w := range workers {
		merged.Merge(w.Accounts())
	}
	snapshots := merged.Snapshots()

	if e.metrics != nil {
		e.metrics.SnapshotAccounts.Set(float64(len(snapshots)))
		e.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	}

	e.log.Info().
		Int64("events_routed", routed).
		Int("accounts", len(snapshots)).
		Msg("processing complete")

	return snapshots, nil
}
