package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "burnstop/internal/pkg/errors"
	"burnstop/internal/platform/config"
)

// Store wraps Redis as a document store: JSON values under structured string
// keys, plus sorted sets for the reminder index. Reads distinguish genuine
// absence (nil, nil) from backend failure (ErrStoreUnavailable) so callers
// never report an unreachable store as "not found".
type Store struct {
	client *redis.Client
}

func New(cfg config.RedisConfig) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Store{client: client}
}

// NewWithClient is used by tests to back the store with miniredis.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// GetJSON unmarshals the record at key into out. Returns (false, nil) when
// the key does not exist.
func (s *Store) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: get %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) SetJSON(ctx context.Context, key string, value interface{}) error {
	return s.SetJSONTTL(ctx, key, value, 0)
}

func (s *Store) SetJSONTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	return n > 0, nil
}

// ZAdd upserts member with the given score; an existing member's score is
// replaced, never duplicated.
func (s *Store) ZAdd(ctx context.Context, key, member string, score float64) error {
	if err := s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("%w: zadd %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	return nil
}

func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := s.client.ZRem(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("%w: zrem %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	return nil
}

type ScoredMember struct {
	Member string
	Score  float64
}

// ZRangeByScore returns members with min <= score <= max, ascending by score.
func (s *Store) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]ScoredMember, error) {
	res, err := s.client.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min: fmt.Sprintf("%f", min),
		Max: fmt.Sprintf("%f", max),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: zrangebyscore %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	members := make([]ScoredMember, 0, len(res))
	for _, z := range res {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		members = append(members, ScoredMember{Member: member, Score: z.Score})
	}
	return members, nil
}

func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: keys %s: %v", apperrors.ErrStoreUnavailable, pattern, err)
	}
	return keys, nil
}
