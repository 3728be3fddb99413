package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fixerhub/models"

	"github.com/go-redis/redis/v8"
)

const (
	contextPrefix = "chat:ctx:"
	maxTurns      = 10
)

// RedisContextStore keeps the last turns of each session in a Redis list.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, sessionID string) ([]models.ChatTurn, error) {
	raw, err := s.client.LRange(ctx, contextPrefix+sessionID, 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chat context: %w", err)
	}
	turns := make([]models.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var t models.ChatTurn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisContextStore) Append(ctx context.Context, sessionID string, turns ...models.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	key := contextPrefix + sessionID
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode chat turn: %w", err)
		}
		values = append(values, b)
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -maxTurns, -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save chat context: %w", err)
	}
	return nil
}
