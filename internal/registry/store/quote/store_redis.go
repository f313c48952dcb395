package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tns/internal/registry/models"
	"tns/internal/registry/oracle"
	"tns/pkg/domain"
	"tns/pkg/platform/sentinel"
)

const keyPrefix = "tns:quote:"

// RedisStore keeps quote accounts in Redis. Every key carries a TTL so a
// crashed process cannot leak accounts past the staleness window.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: models.MaxPriceStaleness}
}

func quoteKey(addr domain.Address) string {
	return keyPrefix + addr.String()
}

func (s *RedisStore) Put(ctx context.Context, addr domain.Address, q *oracle.Quote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	ok, err := s.client.SetNX(ctx, quoteKey(addr), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("put quote: %w", err)
	}
	if !ok {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, addr domain.Address) (*oracle.Quote, error) {
	payload, err := s.client.Get(ctx, quoteKey(addr)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	var q oracle.Quote
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, fmt.Errorf("unmarshal quote: %w", err)
	}
	return &q, nil
}

func (s *RedisStore) Delete(ctx context.Context, addr domain.Address) error {
	n, err := s.client.Del(ctx, quoteKey(addr)).Result()
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
