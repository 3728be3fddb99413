package user

import (
	"context"
	"fmt"
	"time"

	"fixerhub/apperrors"
	"fixerhub/utils"

	"github.com/go-redis/redis/v8"
)

const tokenPrefix = "token:"

// RedisTokenStore keeps hashed single-use tokens in Redis.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func tokenKey(purpose, token string) string {
	return tokenPrefix + purpose + ":" + utils.HashToken(token)
}

func (s *RedisTokenStore) Save(ctx context.Context, purpose, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(purpose, token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("store %s token: %w", purpose, err)
	}
	return nil
}

func (s *RedisTokenStore) Consume(ctx context.Context, purpose, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, tokenKey(purpose, token)).Result()
	if err == redis.Nil {
		return "", apperrors.Validation("token is invalid or has expired")
	}
	if err != nil {
		return "", fmt.Errorf("read %s token: %w", purpose, err)
	}
	return userID, nil
}
