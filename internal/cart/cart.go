// Package cart stores buyers' carts in redis. The order saga clears the
// cart as a best-effort side effect after an order is committed.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cartTTL = 30 * 24 * time.Hour

type Item struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type Store interface {
	Get(ctx context.Context, userID string) ([]Item, error)
	Put(ctx context.Context, userID string, items []Item) error
	Clear(ctx context.Context, userID string) error
}

type redisStore struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (s *redisStore) Get(ctx context.Context, userID string) ([]Item, error) {
	val, err := s.rdb.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (s *redisStore) Put(ctx context.Context, userID string, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.rdb.Set(ctx, cartKey(userID), data, cartTTL).Err()
}

func (s *redisStore) Clear(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, cartKey(userID)).Err()
}
