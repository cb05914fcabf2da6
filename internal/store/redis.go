package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"PayLedger/internal/money"
)

const defaultRedisPrefix = "payledger:deposits:"

// RedisStore keeps disputable deposits in an external key-value backend,
// freeing worker memory for unbounded workloads. Records are JSON under
// <prefix><txID>. The engine is stateless across runs, so callers pass a
// run-scoped prefix to keep concurrent runs from aliasing.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

type redisDeposit struct {
	Client uint16 `json:"client"`
	Amount string `json:"amount"`
	State  uint8  `json:"state"`
}

func (s *RedisStore) key(txID uint32) string {
	return fmt.Sprintf("%s%d", s.prefix, txID)
}

func encodeDeposit(dep StoredDeposit) ([]byte, error) {
	return json.Marshal(redisDeposit{
		Client: dep.Client,
		Amount: dep.Amount.String(),
		State:  uint8(dep.State),
	})
}

func decodeDeposit(data []byte) (StoredDeposit, error) {
	var rd redisDeposit
	if err := json.Unmarshal(data, &rd); err != nil {
		return StoredDeposit{}, fmt.Errorf("decode deposit record: %w", err)
	}
	amount, err := money.Parse(rd.Amount)
	if err != nil {
		return StoredDeposit{}, fmt.Errorf("decode deposit amount: %w", err)
	}
	return StoredDeposit{
		Client: rd.Client,
		Amount: amount,
		State:  DepositState(rd.State),
	}, nil
}

func (s *RedisStore) Insert(ctx context.Context, txID uint32, dep StoredDeposit) error {
	data, err := encodeDeposit(dep)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key(txID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis insert tx %d: %w", txID, err)
	}
	if !ok {
		return fmt.Errorf("insert tx %d: %w", txID, ErrDepositExists)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, txID uint32) (StoredDeposit, bool, error) {
	data, err := s.client.Get(ctx, s.key(txID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return StoredDeposit{}, false, nil
	}
	if err != nil {
		return StoredDeposit{}, false, fmt.Errorf("redis get tx %d: %w", txID, err)
	}
	dep, err := decodeDeposit(data)
	if err != nil {
		return StoredDeposit{}, false, err
	}
	return dep, true, nil
}

func (s *RedisStore) Update(ctx context.Context, txID uint32, dep StoredDeposit) error {
	data, err := encodeDeposit(dep)
	if err != nil {
		return err
	}
	// XX: only overwrite an existing record.
	ok, err := s.client.SetXX(ctx, s.key(txID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis update tx %d: %w", txID, err)
	}
	if !ok {
		return fmt.Errorf("update tx %d: %w", txID, ErrDepositNotFound)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, txID uint32) (StoredDeposit, bool, error) {
	data, err := s.client.GetDel(ctx, s.key(txID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return StoredDeposit{}, false, nil
	}
	if err != nil {
		return StoredDeposit{}, false, fmt.Errorf("redis remove tx %d: %w", txID, err)
	}
	dep, err := decodeDeposit(data)
	if err != nil {
		return StoredDeposit{}, false, err
	}
	return dep, true, nil
}
