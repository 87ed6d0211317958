package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cart:"

// RedisStore keeps each cart as a JSON string with a sliding TTL.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Raw, error) {
	data, err := s.Client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Raw{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", sessionID, err)
	}
	return decodeRaw(data), nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.Client.Set(ctx, redisKeyPrefix+sessionID, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", sessionID, err)
	}
	return nil
}
