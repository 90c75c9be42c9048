package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session's results in one hash with a TTL
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedisStore creates a Redis backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, keyPrefix: "smartplate:session"}
}

func (s *RedisStore) key(sid string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, sid)
}

func (s *RedisStore) SetResults(ctx context.Context, sid string, p *ResultsPayload) error {
	key := s.key(sid)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			KeyTargets, string(p.Targets),
			KeyRecommendations, string(p.Recommendations),
			keyResultID, p.ResultID,
			keyCreatedAt, p.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return errors.Wrap(err, "store session results")
}

func (s *RedisStore) GetPayload(ctx context.Context, sid string) (*ResultsPayload, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sid)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "load session results")
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	p := &ResultsPayload{
		ResultID:        fields[keyResultID],
		Targets:         json.RawMessage(fields[KeyTargets]),
		Recommendations: json.RawMessage(fields[KeyRecommendations]),
	}
	if raw := fields[keyCreatedAt]; raw != "" {
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, errors.Wrapf(ErrMalformedPayload, "%s: %v", keyCreatedAt, err)
		}
	}
	return p, nil
}
