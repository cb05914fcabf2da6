package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"PayLedger/internal/money"
)

// PostgresStore keeps disputable deposits in a relational backend. One
// table serves all workers: TxIDs are globally unique, so shards never
// touch each other's rows and per-worker access stays sequential.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the deposits table if missing. The engine is
// stateless across runs; rows from a previous run are cleared.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS payledger`,
		`CREATE TABLE IF NOT EXISTS payledger.deposits (
			tx_id   BIGINT PRIMARY KEY,
			client  INTEGER NOT NULL,
			amount  TEXT NOT NULL,
			state   SMALLINT NOT NULL
		)`,
		`TRUNCATE payledger.deposits`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure deposits schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, txID uint32, dep StoredDeposit) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO payledger.deposits (tx_id, client, amount, state)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (tx_id) DO NOTHING`,
		int64(txID), int32(dep.Client), dep.Amount.String(), int16(dep.State),
	)
	if err != nil {
		return fmt.Errorf("postgres insert tx %d: %w", txID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres insert tx %d: %w", txID, err)
	}
	if n == 0 {
		return fmt.Errorf("insert tx %d: %w", txID, ErrDepositExists)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, txID uint32) (StoredDeposit, bool, error) {
	var (
		client int32
		amount string
		state  int16
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT client, amount, state FROM payledger.deposits WHERE tx_id = $1`,
		int64(txID),
	).Scan(&client, &amount, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredDeposit{}, false, nil
	}
	if err != nil {
		return StoredDeposit{}, false, fmt.Errorf("postgres get tx %d: %w", txID, err)
	}
	amt, err := money.Parse(amount)
	if err != nil {
		return StoredDeposit{}, false, fmt.Errorf("postgres get tx %d: %w", txID, err)
	}
	return StoredDeposit{
		Client: uint16(client),
		Amount: amt,
		State:  DepositState(state),
	}, true, nil
}

func (s *PostgresStore) Update(ctx context.Context, txID uint32, dep StoredDeposit) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payledger.deposits SET client = $2, amount = $3, state = $4 WHERE tx_id = $1`,
		int64(txID), int32(dep.Client), dep.Amount.String(), int16(dep.State),
	)
	if err != nil {
		return fmt.Errorf("postgres update tx %d: %w", txID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres update tx %d: %w", txID, err)
	}
	if n == 0 {
		return fmt.Errorf("update tx %d: %w", txID, ErrDepositNotFound)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, txID uint32) (StoredDeposit, bool, error) {
	var (
		client int32
		amount string
		state  int16
	)
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM payledger.deposits WHERE tx_id = $1
		 RETURNING client, amount, state`,
		int64(txID),
	).Scan(&client, &amount, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredDeposit{}, false, nil
	}
	if err != nil {
		return StoredDeposit{}, false, fmt.Errorf("postgres remove tx %d: %w", txID, err)
	}
	amt, err := money.Parse(amount)
	if err != nil {
		return StoredDeposit{}, false, fmt.Errorf("postgres remove tx %d: %w", txID, err)
	}
	return StoredDeposit{
		Client: uint16(client),
		Amount: amt,
		State:  DepositState(state),
	}, true, nil
}
